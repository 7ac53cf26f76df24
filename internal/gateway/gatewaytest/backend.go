// Package gatewaytest provides an in-memory stand-in for the food-routing
// back end, served over httptest, for tests that exercise the gateway.
package gatewaytest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"sync"
	"testing"
	"time"

	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/models"
)

// Backend mimics the REST surface of the back end: list with skip/limit,
// create, update and delete for volunteers, drivers and routes.
type Backend struct {
	server *httptest.Server

	mu         sync.Mutex
	volunteers *table[models.Volunteer]
	drivers    *table[models.Driver]
	routes     *table[models.Route]
	failAll    int
	failMethod map[string]int
	requests   []Request
	hold       *hold
}

// Request is one call the back end received.
type Request struct {
	Method string
	Path   string
	Body   json.RawMessage
}

type hold struct {
	entered chan string
	release chan struct{}
}

// New starts a back end that is closed when the test ends.
func New(t testing.TB) *Backend {
	t.Helper()
	b := &Backend{
		volunteers: newTable(func(v *models.Volunteer, id int) { v.ID = id }),
		drivers:    newTable(func(d *models.Driver, id int) { d.ID = id }),
		routes:     newTable(func(r *models.Route, n int) { r.RouteNumber = n }),
		failMethod: map[string]int{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /volunteers/{$}", listHandler(b, b.volunteers))
	mux.HandleFunc("POST /volunteers/{$}", createHandler(b, b.volunteers, func(in models.PersonInput) models.Volunteer {
		return models.Volunteer{FirstName: in.FirstName, LastName: in.LastName, Address: in.Address, PhoneNumber: in.PhoneNumber, Notes: in.Notes}
	}))
	mux.HandleFunc("PUT /volunteers/{key}", updateHandler(b, b.volunteers, func(id int, in models.PersonInput) models.Volunteer {
		return models.Volunteer{ID: id, FirstName: in.FirstName, LastName: in.LastName, Address: in.Address, PhoneNumber: in.PhoneNumber, Notes: in.Notes}
	}))
	mux.HandleFunc("DELETE /volunteers/{key}", deleteHandler(b, b.volunteers))

	mux.HandleFunc("GET /drivers/{$}", listHandler(b, b.drivers))
	mux.HandleFunc("POST /drivers/{$}", createHandler(b, b.drivers, func(in models.PersonInput) models.Driver {
		return models.Driver{FirstName: in.FirstName, LastName: in.LastName, Address: in.Address, PhoneNumber: in.PhoneNumber, Notes: in.Notes}
	}))
	mux.HandleFunc("PUT /drivers/{key}", updateHandler(b, b.drivers, func(id int, in models.PersonInput) models.Driver {
		return models.Driver{ID: id, FirstName: in.FirstName, LastName: in.LastName, Address: in.Address, PhoneNumber: in.PhoneNumber, Notes: in.Notes}
	}))
	mux.HandleFunc("DELETE /drivers/{key}", deleteHandler(b, b.drivers))

	mux.HandleFunc("GET /routes/{$}", listHandler(b, b.routes))
	mux.HandleFunc("POST /routes/{$}", b.createRoute)
	mux.HandleFunc("PUT /routes/{key}", b.updateRoute)
	mux.HandleFunc("DELETE /routes/{key}", deleteHandler(b, b.routes))

	b.server = httptest.NewServer(b.intercept(mux))
	t.Cleanup(func() {
		b.ReleaseWrites()
		b.server.Close()
	})
	return b
}

// URL is the base URL to hand to gateway.NewClient.
func (b *Backend) URL() string { return b.server.URL }

// Client returns a gateway client pointed at this back end with small pages so
// that paging is exercised.
func (b *Backend) Client() *gateway.Client {
	return gateway.NewClient(gateway.Options{BaseURL: b.URL(), Timeout: 5 * time.Second, PageSize: 2})
}

// SeedVolunteers stores records as-is, keeping their ids.
func (b *Backend) SeedVolunteers(vs ...models.Volunteer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, v := range vs {
		b.volunteers.put(v.ID, v)
	}
}

// SeedDrivers stores records as-is, keeping their ids.
func (b *Backend) SeedDrivers(ds ...models.Driver) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range ds {
		b.drivers.put(d.ID, d)
	}
}

// SeedRoutes stores records as-is, keeping their route numbers.
func (b *Backend) SeedRoutes(rs ...models.Route) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, r := range rs {
		b.routes.put(r.RouteNumber, r)
	}
}

// FailAll makes every request answer with status until Recover is called.
func (b *Backend) FailAll(status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAll = status
}

// FailMethod makes every request with the given method answer with status.
func (b *Backend) FailMethod(method string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failMethod[method] = status
}

// Recover clears FailAll and FailMethod.
func (b *Backend) Recover() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failAll = 0
	b.failMethod = map[string]int{}
}

// HoldWrites blocks POST, PUT and DELETE requests until ReleaseWrites. The
// returned channel receives "METHOD path" as each held request arrives.
func (b *Backend) HoldWrites() <-chan string {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.hold = &hold{entered: make(chan string, 16), release: make(chan struct{})}
	return b.hold.entered
}

// ReleaseWrites lets held writes continue. It is safe to call more than once.
func (b *Backend) ReleaseWrites() {
	b.mu.Lock()
	h := b.hold
	b.hold = nil
	b.mu.Unlock()
	if h != nil {
		close(h.release)
	}
}

// Requests returns every request received so far.
func (b *Backend) Requests() []Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.requests)
}

// Writes counts POST, PUT and DELETE requests received so far.
func (b *Backend) Writes() int {
	n := 0
	for _, r := range b.Requests() {
		if r.Method != http.MethodGet {
			n++
		}
	}
	return n
}

// Volunteer returns the stored volunteer with id.
func (b *Backend) Volunteer(id int) (models.Volunteer, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.volunteers.items[id]
	return v, ok
}

// Route returns the stored route with number n.
func (b *Backend) Route(n int) (models.Route, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r, ok := b.routes.items[n]
	return r, ok
}

func (b *Backend) intercept(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body json.RawMessage
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&body)
			r.Body.Close()
		}

		b.mu.Lock()
		b.requests = append(b.requests, Request{Method: r.Method, Path: r.URL.Path, Body: body})
		status := b.failAll
		if s, ok := b.failMethod[r.Method]; ok && status == 0 {
			status = s
		}
		h := b.hold
		b.mu.Unlock()

		if h != nil && r.Method != http.MethodGet {
			h.entered <- r.Method + " " + r.URL.Path
			<-h.release
		}

		if status != 0 {
			http.Error(w, `{"detail":"injected failure"}`, status)
			return
		}
		r.Body = readCloser(body)
		next.ServeHTTP(w, r)
	})
}

func createHandler[T any](b *Backend, tbl *table[T], mk func(models.PersonInput) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in models.PersonInput
		if !decodeBody(w, r, &in) {
			return
		}
		b.mu.Lock()
		rec := tbl.insert(mk(in))
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, rec)
	}
}

func updateHandler[T any, In any](b *Backend, tbl *table[T], mk func(int, In) T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		updateWith(b, w, r, tbl, mk)
	}
}

func (b *Backend) createRoute(w http.ResponseWriter, r *http.Request) {
	var in models.RouteInput
	if !decodeBody(w, r, &in) {
		return
	}
	route := models.Route{
		PickupLocations:  in.PickupLocations,
		DropoffLocations: in.DropoffLocations,
		DriverType:       in.DriverType,
		DriverID:         in.DriverID,
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if in.RouteNumber != nil {
		if _, exists := b.routes.items[*in.RouteNumber]; exists {
			http.Error(w, `{"detail":"route exists"}`, http.StatusConflict)
			return
		}
		route.RouteNumber = *in.RouteNumber
		b.routes.put(route.RouteNumber, route)
		writeJSON(w, http.StatusOK, route)
		return
	}
	writeJSON(w, http.StatusOK, b.routes.insert(route))
}

func (b *Backend) updateRoute(w http.ResponseWriter, r *http.Request) {
	updateWith(b, w, r, b.routes, func(n int, in models.RouteInput) models.Route {
		return models.Route{
			RouteNumber:      n,
			PickupLocations:  in.PickupLocations,
			DropoffLocations: in.DropoffLocations,
			DriverType:       in.DriverType,
			DriverID:         in.DriverID,
		}
	})
}

func updateWith[T any, In any](b *Backend, w http.ResponseWriter, r *http.Request, tbl *table[T], mk func(int, In) T) {
	key, ok := pathKey(w, r)
	if !ok {
		return
	}
	var in In
	if !decodeBody(w, r, &in) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := tbl.items[key]; !exists {
		http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
		return
	}
	rec := mk(key, in)
	tbl.put(key, rec)
	writeJSON(w, http.StatusOK, rec)
}

func listHandler[T any](b *Backend, tbl *table[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		skip, _ := strconv.Atoi(r.URL.Query().Get("skip"))
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			limit = 10
		}
		b.mu.Lock()
		page := tbl.list(skip, limit)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, page)
	}
}

func deleteHandler[T any](b *Backend, tbl *table[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key, ok := pathKey(w, r)
		if !ok {
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		rec, exists := tbl.items[key]
		if !exists {
			http.Error(w, `{"detail":"not found"}`, http.StatusNotFound)
			return
		}
		tbl.remove(key)
		writeJSON(w, http.StatusOK, rec)
	}
}
