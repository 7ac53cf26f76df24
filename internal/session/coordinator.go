package session

import (
	"fmt"
	"sync"

	"food_routing_admin/internal/models"
)

// Coordinator allows at most one in-flight write per record.
type Coordinator struct {
	mu       sync.Mutex
	inflight map[models.Ref]struct{}
}

func NewCoordinator() *Coordinator {
	return &Coordinator{inflight: make(map[models.Ref]struct{})}
}

// Acquire claims ref for one write. The returned release must be called once
// the write has finished and the store reflects it. A ref that is already
// claimed fails with ErrStaleWrite.
func (c *Coordinator) Acquire(ref models.Ref) (release func(), err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[ref]; busy {
		return nil, fmt.Errorf("%s: %w", ref, ErrStaleWrite)
	}
	c.inflight[ref] = struct{}{}
	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.inflight, ref)
			c.mu.Unlock()
		})
	}, nil
}

// InFlight reports whether a write for ref is running.
func (c *Coordinator) InFlight(ref models.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, busy := c.inflight[ref]
	return busy
}
