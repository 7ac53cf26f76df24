package store

import (
	"sync"

	"food_routing_admin/internal/models"
)

// ChangeOp says what happened to a collection.
type ChangeOp string

const (
	OpLoaded  ChangeOp = "loaded"
	OpUpsert  ChangeOp = "upsert"
	OpRemoved ChangeOp = "removed"
)

// Change is emitted after every store mutation.
type Change struct {
	Op       ChangeOp
	Kind     models.Kind
	Key      int // zero for OpLoaded
	Revision uint64
}

// SubscriberFunc is called synchronously on the mutating goroutine, after the
// store lock has been released.
type SubscriberFunc func(Change)

type subscriber struct {
	id     int
	fn     SubscriberFunc
	filter map[models.Kind]struct{}
}

// EventBus fans store changes out to subscribers in registration order.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []subscriber
	nextID      int
}

// Subscribe registers fn for every change and returns an id for Unsubscribe.
func (eb *EventBus) Subscribe(fn SubscriberFunc) int {
	return eb.SubscribeKinds(fn)
}

// SubscribeKinds registers fn for changes to the given kinds only.
// With no kinds it receives everything.
func (eb *EventBus) SubscribeKinds(fn SubscriberFunc, kinds ...models.Kind) int {
	var filter map[models.Kind]struct{}
	if len(kinds) > 0 {
		filter = make(map[models.Kind]struct{}, len(kinds))
		for _, k := range kinds {
			filter[k] = struct{}{}
		}
	}
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.nextID++
	eb.subscribers = append(eb.subscribers, subscriber{id: eb.nextID, fn: fn, filter: filter})
	return eb.nextID
}

// Unsubscribe removes a subscriber by id.
func (eb *EventBus) Unsubscribe(id int) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	for i, s := range eb.subscribers {
		if s.id == id {
			eb.subscribers = append(eb.subscribers[:i], eb.subscribers[i+1:]...)
			return
		}
	}
}

// Emit dispatches a change to all matching subscribers.
func (eb *EventBus) Emit(c Change) {
	eb.mu.RLock()
	subs := make([]subscriber, len(eb.subscribers))
	copy(subs, eb.subscribers)
	eb.mu.RUnlock()

	for _, s := range subs {
		if s.filter != nil {
			if _, ok := s.filter[c.Kind]; !ok {
				continue
			}
		}
		s.fn(c)
	}
}
