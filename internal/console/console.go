// Package console is the presentation surface of the admin UI. It turns user
// intents (filter, sort, open dialog, edit field, save, cancel, delete) into
// store and dialog changes, and pushes a fresh Frame to every renderer after
// each change.
package console

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"food_routing_admin/internal/models"
	"food_routing_admin/internal/routeview"
	"food_routing_admin/internal/session"
	"food_routing_admin/internal/store"
)

// Gateway is everything the console asks of the remote back end.
type Gateway interface {
	store.Source
	session.Writer
	DeleteVolunteer(ctx context.Context, id int) error
	DeleteDriver(ctx context.Context, id int) error
	DeleteRoute(ctx context.Context, routeNumber int) error
}

// Frame is what a renderer draws: the route table as currently filtered and
// sorted, the two people lists and the open dialog.
type Frame struct {
	Revision   uint64               `json:"revision"`
	Query      string               `json:"query"`
	Sort       routeview.SortConfig `json:"sort"`
	Routes     []models.RouteRow    `json:"routes"`
	Volunteers []models.Volunteer   `json:"volunteers"`
	Drivers    []models.Driver      `json:"drivers"`
	Session    session.Snapshot     `json:"session"`
}

// Renderer receives frames. Render must not block.
type Renderer interface {
	Render(f Frame)
}

type Options struct {
	// RefetchAfterWrite reloads the written collection after every confirmed
	// save or delete.
	RefetchAfterWrite bool
}

type Console struct {
	gw        Gateway
	store     *store.Store
	sessions  *session.Manager
	projector *routeview.Projector
	opts      Options

	mu        sync.Mutex
	view      routeview.ViewState
	renderers map[int]Renderer
	nextID    int
}

func New(gw Gateway, st *store.Store, opts Options) *Console {
	c := &Console{
		gw:        gw,
		store:     st,
		sessions:  session.NewManager(gw, st, session.NewCoordinator()),
		projector: routeview.NewProjector(st),
		opts:      opts,
		renderers: make(map[int]Renderer),
	}
	st.Events.Subscribe(func(store.Change) { c.publish() })
	return c
}

// AddRenderer registers r and immediately hands it the current frame.
func (c *Console) AddRenderer(r Renderer) (remove func()) {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.renderers[id] = r
	c.mu.Unlock()

	r.Render(c.Render())
	return func() {
		c.mu.Lock()
		delete(c.renderers, id)
		c.mu.Unlock()
	}
}

func (c *Console) publish() {
	f := c.Render()
	c.mu.Lock()
	rs := make([]Renderer, 0, len(c.renderers))
	for _, r := range c.renderers {
		rs = append(rs, r)
	}
	c.mu.Unlock()
	for _, r := range rs {
		r.Render(f)
	}
}

// Render builds the current frame.
func (c *Console) Render() Frame {
	view := c.View()
	return Frame{
		Revision:   c.store.Revision(),
		Query:      view.Query,
		Sort:       view.Sort,
		Routes:     c.projector.Rows(view),
		Volunteers: c.store.Volunteers(),
		Drivers:    c.store.Drivers(),
		Session:    c.sessions.Snapshot(),
	}
}

// View is the current filter and sort.
func (c *Console) View() routeview.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Store exposes the entity store for read-only listings.
func (c *Console) Store() *store.Store { return c.store }

// Refresh reloads every collection from the back end.
func (c *Console) Refresh(ctx context.Context) error {
	return c.store.LoadAll(ctx, c.gw)
}

func (c *Console) OnFilterChange(text string) Frame {
	c.mu.Lock()
	c.view = c.view.WithQuery(text)
	c.mu.Unlock()
	c.publish()
	return c.Render()
}

// OnSortClick applies a column header click.
func (c *Console) OnSortClick(column string) (Frame, error) {
	c.mu.Lock()
	next, err := c.view.ClickColumn(column)
	if err != nil {
		c.mu.Unlock()
		return Frame{}, err
	}
	c.view = next
	c.mu.Unlock()
	c.publish()
	return c.Render(), nil
}

func (c *Console) OnEditRequest(kind models.Kind, key int) (session.Snapshot, error) {
	snap, err := c.sessions.Edit(models.Ref{Kind: kind, Key: key})
	if err != nil {
		return snap, err
	}
	c.publish()
	return snap, nil
}

func (c *Console) OnAddRequest(kind models.Kind) (session.Snapshot, error) {
	snap, err := c.sessions.Add(kind)
	if err != nil {
		return snap, err
	}
	c.publish()
	return snap, nil
}

func (c *Console) OnFieldChange(field, value string) (session.Snapshot, error) {
	snap, err := c.sessions.SetField(field, value)
	if err == nil {
		c.publish()
	}
	return snap, err
}

// OnFieldsChange sets several draft fields at once; an unknown name sets none.
func (c *Console) OnFieldsChange(fields map[string]string) (session.Snapshot, error) {
	snap, err := c.sessions.SetFields(fields)
	if err == nil {
		c.publish()
	}
	return snap, err
}

// Session is the open dialog, if any.
func (c *Console) Session() session.Snapshot { return c.sessions.Snapshot() }

// OnSaveRequest saves the dialog id, or whichever is open when id is empty. A
// non-nil draft replaces the dialog's draft first. Failures leave the dialog
// open with its draft.
func (c *Console) OnSaveRequest(ctx context.Context, id string, draft session.Draft) (models.Record, error) {
	rec, err := c.sessions.SaveDraft(ctx, id, draft)
	if err != nil {
		c.publish()
		return nil, err
	}
	c.refetch(ctx, rec.Kind())
	c.publish()
	return rec, nil
}

func (c *Console) OnCancelRequest() error {
	if err := c.sessions.Cancel(); err != nil {
		return err
	}
	c.publish()
	return nil
}

// OnDeleteRequest deletes a record on the back end and, once confirmed, from
// the store. It shares the per-record write guard with saves.
func (c *Console) OnDeleteRequest(ctx context.Context, kind models.Kind, key int) error {
	ref := models.Ref{Kind: kind, Key: key}
	release, err := c.sessions.Coordinator().Acquire(ref)
	if err != nil {
		return err
	}
	defer release()

	switch kind {
	case models.KindVolunteer:
		err = c.gw.DeleteVolunteer(ctx, key)
	case models.KindDriver:
		err = c.gw.DeleteDriver(ctx, key)
	case models.KindRoute:
		err = c.gw.DeleteRoute(ctx, key)
	default:
		err = fmt.Errorf("delete: unknown kind %q", kind)
	}
	if err != nil {
		logrus.WithError(err).WithField("ref", ref.String()).Warn("delete failed")
		return err
	}
	c.store.Remove(kind, key)
	logrus.WithField("ref", ref.String()).Info("delete confirmed")
	c.refetch(ctx, kind)
	return nil
}

func (c *Console) refetch(ctx context.Context, kind models.Kind) {
	if !c.opts.RefetchAfterWrite {
		return
	}
	if err := c.store.Load(ctx, kind, c.gw); err != nil {
		logrus.WithError(err).WithField("kind", kind).Warn("refetch after write failed; keeping confirmed state")
	}
}
