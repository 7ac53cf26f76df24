package gatewaytest

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"slices"
	"strconv"
)

// table is one back end collection with insertion order and auto-increment keys.
type table[T any] struct {
	items  map[int]T
	order  []int
	next   int
	setKey func(*T, int)
}

func newTable[T any](setKey func(*T, int)) *table[T] {
	return &table[T]{items: map[int]T{}, next: 1, setKey: setKey}
}

func (t *table[T]) put(key int, rec T) {
	if _, exists := t.items[key]; !exists {
		t.order = append(t.order, key)
	}
	t.items[key] = rec
	if key >= t.next {
		t.next = key + 1
	}
}

func (t *table[T]) insert(rec T) T {
	key := t.next
	t.setKey(&rec, key)
	t.put(key, rec)
	return rec
}

func (t *table[T]) remove(key int) {
	delete(t.items, key)
	t.order = slices.DeleteFunc(t.order, func(k int) bool { return k == key })
}

func (t *table[T]) list(skip, limit int) []T {
	out := []T{}
	for i := skip; i < len(t.order) && len(out) < limit; i++ {
		out = append(out, t.items[t.order[i]])
	}
	return out
}

func pathKey(w http.ResponseWriter, r *http.Request) (int, bool) {
	key, err := strconv.Atoi(r.PathValue("key"))
	if err != nil {
		http.Error(w, `{"detail":"bad key"}`, http.StatusUnprocessableEntity)
		return 0, false
	}
	return key, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, `{"detail":"bad body"}`, http.StatusUnprocessableEntity)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func readCloser(body json.RawMessage) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(body))
}
