// Package session runs the add and edit dialogs. A dialog owns a draft until
// it is saved or cancelled; the store only changes after the back end has
// confirmed a save.
package session

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"food_routing_admin/internal/models"
)

// Writer is the write side of the remote gateway.
type Writer interface {
	CreateVolunteer(ctx context.Context, in models.PersonInput) (models.Volunteer, error)
	UpdateVolunteer(ctx context.Context, id int, in models.PersonInput) (models.Volunteer, error)
	CreateDriver(ctx context.Context, in models.PersonInput) (models.Driver, error)
	UpdateDriver(ctx context.Context, id int, in models.PersonInput) (models.Driver, error)
	CreateRoute(ctx context.Context, in models.RouteInput) (models.Route, error)
	UpdateRoute(ctx context.Context, routeNumber int, in models.RouteInput) (models.Route, error)
}

// Store is the part of the entity store a dialog needs.
type Store interface {
	DriverChecker
	Get(ref models.Ref) (models.Record, bool)
	Upsert(rec models.Record) error
}

type session struct {
	id     uuid.UUID
	mode   Mode
	target models.Ref
	state  State
	draft  Draft
	err    error
}

// Snapshot is a read-only copy of the open dialog.
type Snapshot struct {
	ID         string            `json:"id,omitempty"`
	State      State             `json:"state"`
	Mode       Mode              `json:"mode,omitempty"`
	Kind       models.Kind       `json:"kind,omitempty"`
	Key        int               `json:"key,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
	Error      string            `json:"error,omitempty"`
	ErrorField string            `json:"error_field,omitempty"`
}

// Manager holds the single dialog of the console. Opening a dialog replaces
// whatever was open; a replaced dialog that was saving still lands its write
// in the store, but its outcome no longer reaches the user.
type Manager struct {
	writer Writer
	store  Store
	coord  *Coordinator

	mu      sync.Mutex
	current *session
}

func NewManager(w Writer, st Store, coord *Coordinator) *Manager {
	if coord == nil {
		coord = NewCoordinator()
	}
	return &Manager{writer: w, store: st, coord: coord}
}

// Coordinator is shared with deletes so that a delete and a save of the same
// record cannot overlap.
func (m *Manager) Coordinator() *Coordinator { return m.coord }

// Add opens an empty dialog for kind.
func (m *Manager) Add(kind models.Kind) (Snapshot, error) {
	d, err := NewDraft(kind)
	if err != nil {
		return Snapshot{}, err
	}
	return m.open(&session{mode: ModeAdd, target: models.Ref{Kind: kind}, draft: d}), nil
}

// Edit opens a dialog filled from the stored record.
func (m *Manager) Edit(ref models.Ref) (Snapshot, error) {
	rec, ok := m.store.Get(ref)
	if !ok {
		return Snapshot{}, fmt.Errorf("%s: %w", ref, ErrNotFound)
	}
	return m.open(&session{mode: ModeEdit, target: ref, draft: DraftFrom(rec)}), nil
}

func (m *Manager) open(s *session) Snapshot {
	s.id = uuid.New()
	s.state = StateOpen

	m.mu.Lock()
	defer m.mu.Unlock()
	if prev := m.current; prev != nil {
		logrus.WithFields(logrus.Fields{"session": prev.id, "state": prev.state}).Debug("dialog replaced")
	}
	m.current = s
	logrus.WithFields(logrus.Fields{"session": s.id, "mode": s.mode, "target": s.target}).Debug("dialog opened")
	return s.snapshot()
}

// SetField changes one field of the open draft.
func (m *Manager) SetField(name, value string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.openLocked()
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.draft.SetField(name, value); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

// SetFields changes several fields of the open draft together. Every name is
// checked first, so an unknown field leaves the draft untouched.
func (m *Manager) SetFields(fields map[string]string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.openLocked()
	if err != nil {
		return Snapshot{}, err
	}
	known := s.draft.Fields()
	names := slices.Sorted(maps.Keys(fields))
	for _, name := range names {
		if _, ok := known[name]; !ok {
			return s.snapshot(), invalid(name, "unknown field")
		}
	}
	for _, name := range names {
		if err := s.draft.SetField(name, fields[name]); err != nil {
			return s.snapshot(), err
		}
	}
	return s.snapshot(), nil
}

// ReplaceDraft swaps in a whole draft, as submitted by a form. A non-empty id
// must name the open dialog.
func (m *Manager) ReplaceDraft(id string, d Draft) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, err := m.currentLocked(id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.replace(d); err != nil {
		return s.snapshot(), err
	}
	return s.snapshot(), nil
}

func (s *session) replace(d Draft) error {
	if d.Kind() != s.target.Kind {
		return invalid("kind", "dialog edits a %s, not a %s", s.target.Kind, d.Kind())
	}
	s.draft = d
	return nil
}

// currentLocked is openLocked for a caller that saw dialog id. An empty id
// accepts whatever dialog is open.
func (m *Manager) currentLocked(id string) (*session, error) {
	s, err := m.openLocked()
	if err != nil {
		return nil, err
	}
	if id != "" && s.id.String() != id {
		return nil, fmt.Errorf("dialog %s was replaced: %w", id, ErrNoSession)
	}
	return s, nil
}

func (m *Manager) openLocked() (*session, error) {
	s := m.current
	if s == nil {
		return nil, ErrNoSession
	}
	if s.state == StateSaving {
		return nil, ErrSaving
	}
	return s, nil
}

// Save validates the draft and sends it to the back end. On success the
// confirmed record is upserted into the store and the dialog closes. On any
// failure the dialog stays open with its draft and the error.
func (m *Manager) Save(ctx context.Context) (models.Record, error) {
	return m.SaveDraft(ctx, "", nil)
}

// SaveDraft is Save for the dialog id, first replacing its draft with d when d
// is non-nil. Both steps happen under one lock, so a dialog opened in between
// makes the save fail with ErrNoSession instead of writing to the new target.
func (m *Manager) SaveDraft(ctx context.Context, id string, d Draft) (models.Record, error) {
	m.mu.Lock()
	s, err := m.currentLocked(id)
	if err != nil {
		m.mu.Unlock()
		return nil, err
	}
	if d != nil {
		if err := s.replace(d); err != nil {
			m.mu.Unlock()
			return nil, err
		}
	}
	submit, ref, err := m.prepare(s)
	if err == nil {
		release, aerr := m.claim(ref)
		if aerr == nil {
			defer release()
		}
		err = aerr
	}
	if err != nil {
		s.err = err
		m.mu.Unlock()
		return nil, err
	}
	m.transition(s, StateSaving)
	s.err = nil
	m.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"session": s.id, "mode": s.mode, "target": s.target})
	rec, err := submit(ctx)
	if err == nil {
		err = m.store.Upsert(rec)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	live := m.current == s
	if err != nil {
		log.WithError(err).Warn("save failed")
		if live {
			m.transition(s, StateOpen)
			s.err = err
		}
		return nil, err
	}
	log.WithField("ref", models.RefOf(rec).String()).Info("save confirmed")
	if live {
		m.transition(s, StateIdle)
		m.current = nil
	} else {
		log.Debug("late save response for a closed dialog")
	}
	return rec, nil
}

// claim takes the write key for ref. Adds without a chosen key cannot collide.
func (m *Manager) claim(ref models.Ref) (func(), error) {
	if ref.Key == 0 {
		return func() {}, nil
	}
	return m.coord.Acquire(ref)
}

// prepare normalises the draft into the gateway call to make.
func (m *Manager) prepare(s *session) (func(context.Context) (models.Record, error), models.Ref, error) {
	ref := s.target
	switch d := s.draft.(type) {
	case *VolunteerDraft:
		in, err := d.Input()
		if err != nil {
			return nil, ref, err
		}
		if s.mode == ModeAdd {
			return func(ctx context.Context) (models.Record, error) {
				return record(m.writer.CreateVolunteer(ctx, in))
			}, ref, nil
		}
		return func(ctx context.Context) (models.Record, error) {
			return record(m.writer.UpdateVolunteer(ctx, ref.Key, in))
		}, ref, nil
	case *DriverDraft:
		in, err := d.Input()
		if err != nil {
			return nil, ref, err
		}
		if s.mode == ModeAdd {
			return func(ctx context.Context) (models.Record, error) {
				return record(m.writer.CreateDriver(ctx, in))
			}, ref, nil
		}
		return func(ctx context.Context) (models.Record, error) {
			return record(m.writer.UpdateDriver(ctx, ref.Key, in))
		}, ref, nil
	case *RouteDraft:
		in, err := d.Input(s.mode, ref.Key, m.store)
		if err != nil {
			return nil, ref, err
		}
		if s.mode == ModeAdd {
			if in.RouteNumber != nil {
				ref.Key = *in.RouteNumber
			}
			return func(ctx context.Context) (models.Record, error) {
				return record(m.writer.CreateRoute(ctx, in))
			}, ref, nil
		}
		return func(ctx context.Context) (models.Record, error) {
			return record(m.writer.UpdateRoute(ctx, ref.Key, in))
		}, ref, nil
	}
	return nil, ref, fmt.Errorf("unsupported draft %T", s.draft)
}

func record[T models.Record](rec T, err error) (models.Record, error) {
	if err != nil {
		return nil, err
	}
	return rec, nil
}

func (m *Manager) transition(s *session, to State) {
	if !IsValidTransition(s.state, to) {
		logrus.WithFields(logrus.Fields{"session": s.id, "from": s.state, "to": to}).Error("invalid dialog transition")
	}
	s.state = to
}

// Cancel closes the dialog without a network call. A save already in flight
// still completes and updates the store; the closed dialog ignores it.
func (m *Manager) Cancel() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return ErrNoSession
	}
	logrus.WithFields(logrus.Fields{"session": m.current.id, "state": m.current.state}).Debug("dialog cancelled")
	m.current = nil
	return nil
}

// Snapshot returns the open dialog, or an idle snapshot.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return Snapshot{State: StateIdle}
	}
	return m.current.snapshot()
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:     s.id.String(),
		State:  s.state,
		Mode:   s.mode,
		Kind:   s.target.Kind,
		Key:    s.target.Key,
		Fields: s.draft.Fields(),
	}
	if s.err != nil {
		snap.Error = s.err.Error()
		var verr *ValidationError
		if errors.As(s.err, &verr) {
			snap.ErrorField = verr.Field
		}
	}
	return snap
}
