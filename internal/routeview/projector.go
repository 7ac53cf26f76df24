package routeview

import (
	"sync"

	"food_routing_admin/internal/models"
)

// RowSource supplies the current route rows and the revision they belong to.
type RowSource interface {
	Revision() uint64
	RouteRows() ([]models.RouteRow, uint64)
}

// Projector memoises Apply for the last (revision, state) pair. Any store
// mutation or view change recomputes from the full row set.
type Projector struct {
	src RowSource

	mu     sync.Mutex
	valid  bool
	rev    uint64
	state  ViewState
	result []models.RouteRow
}

func NewProjector(src RowSource) *Projector {
	return &Projector{src: src}
}

// Rows returns the projection for state. The slice is shared with later
// callers and must not be modified.
func (p *Projector) Rows(state ViewState) []models.RouteRow {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.valid && p.rev == p.src.Revision() && p.state == state {
		return p.result
	}
	rows, rev := p.src.RouteRows()
	p.result = Apply(rows, state)
	p.rev, p.state, p.valid = rev, state, true
	return p.result
}
