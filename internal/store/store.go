// Package store is the in-memory mirror of the back end's volunteers, drivers
// and routes. It is a cache of confirmed state only: callers mutate it after
// the back end has accepted a write, never before.
package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"food_routing_admin/internal/models"
)

// Source is the read side of the remote gateway.
type Source interface {
	ListVolunteers(ctx context.Context) ([]models.Volunteer, error)
	ListDrivers(ctx context.Context) ([]models.Driver, error)
	ListRoutes(ctx context.Context) ([]models.Route, error)
}

// Store holds the three keyed collections.
type Store struct {
	mu         sync.RWMutex
	volunteers collection[models.Volunteer]
	drivers    collection[models.Driver]
	routes     collection[models.Route]
	revision   uint64

	// touched holds, per kind, the revision at which each key was last
	// upserted or removed locally. loadedFrom is the starting revision of the
	// newest list applied for a kind.
	touched    map[models.Kind]map[int]uint64
	loadedFrom map[models.Kind]uint64

	Events *EventBus
}

// New returns an empty store.
func New() *Store {
	return &Store{
		volunteers: newCollection[models.Volunteer](nil),
		drivers:    newCollection[models.Driver](nil),
		routes:     newCollection[models.Route](nil),
		touched:    make(map[models.Kind]map[int]uint64),
		loadedFrom: make(map[models.Kind]uint64),
		Events:     &EventBus{},
	}
}

// Load replaces one collection wholesale from src. On error the collection is
// left as it was. Records upserted or removed while the list was in flight keep
// their local state, and a list fetched before one already applied is dropped.
func (s *Store) Load(ctx context.Context, kind models.Kind, src Source) error {
	start := s.Revision()
	var apply func(since uint64)
	switch kind {
	case models.KindVolunteer:
		recs, err := src.ListVolunteers(ctx)
		if err != nil {
			return fmt.Errorf("load volunteers: %w", err)
		}
		apply = func(since uint64) {
			s.volunteers = merged(newCollection(recs), s.volunteers, s.touched[kind], since)
		}
	case models.KindDriver:
		recs, err := src.ListDrivers(ctx)
		if err != nil {
			return fmt.Errorf("load drivers: %w", err)
		}
		apply = func(since uint64) {
			s.drivers = merged(newCollection(recs), s.drivers, s.touched[kind], since)
		}
	case models.KindRoute:
		recs, err := src.ListRoutes(ctx)
		if err != nil {
			return fmt.Errorf("load routes: %w", err)
		}
		apply = func(since uint64) {
			s.routes = merged(newCollection(recs), s.routes, s.touched[kind], since)
		}
	default:
		return fmt.Errorf("load: unknown kind %q", kind)
	}

	s.mu.Lock()
	if !s.applyLocked(kind, start, apply) {
		s.mu.Unlock()
		logrus.WithFields(logrus.Fields{"kind": kind, "from": start}).Debug("outdated list dropped")
		return nil
	}
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{"kind": kind, "revision": rev}).Debug("store collection loaded")
	s.Events.Emit(Change{Op: OpLoaded, Kind: kind, Revision: rev})
	return nil
}

// LoadAll fetches all three collections concurrently and swaps them in together.
// If any fetch fails nothing changes.
func (s *Store) LoadAll(ctx context.Context, src Source) error {
	start := s.Revision()
	var (
		vols    []models.Volunteer
		drivers []models.Driver
		routes  []models.Route
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		if vols, err = src.ListVolunteers(gctx); err != nil {
			return fmt.Errorf("load volunteers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if drivers, err = src.ListDrivers(gctx); err != nil {
			return fmt.Errorf("load drivers: %w", err)
		}
		return nil
	})
	g.Go(func() (err error) {
		if routes, err = src.ListRoutes(gctx); err != nil {
			return fmt.Errorf("load routes: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	s.mu.Lock()
	var loaded []models.Kind
	if s.applyLocked(models.KindVolunteer, start, func(since uint64) {
		s.volunteers = merged(newCollection(vols), s.volunteers, s.touched[models.KindVolunteer], since)
	}) {
		loaded = append(loaded, models.KindVolunteer)
	}
	if s.applyLocked(models.KindDriver, start, func(since uint64) {
		s.drivers = merged(newCollection(drivers), s.drivers, s.touched[models.KindDriver], since)
	}) {
		loaded = append(loaded, models.KindDriver)
	}
	if s.applyLocked(models.KindRoute, start, func(since uint64) {
		s.routes = merged(newCollection(routes), s.routes, s.touched[models.KindRoute], since)
	}) {
		loaded = append(loaded, models.KindRoute)
	}
	if len(loaded) == 0 {
		s.mu.Unlock()
		logrus.WithField("from", start).Debug("outdated lists dropped")
		return nil
	}
	s.revision++
	rev := s.revision
	s.mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"volunteers": len(vols),
		"drivers":    len(drivers),
		"routes":     len(routes),
		"revision":   rev,
	}).Info("store loaded")
	for _, k := range loaded {
		s.Events.Emit(Change{Op: OpLoaded, Kind: k, Revision: rev})
	}
	return nil
}

// applyLocked swaps in a list fetched from revision start. It reports false,
// changing nothing, when a list fetched later has already been applied.
func (s *Store) applyLocked(kind models.Kind, start uint64, apply func(since uint64)) bool {
	if start < s.loadedFrom[kind] {
		return false
	}
	apply(start)
	s.loadedFrom[kind] = start
	// Local writes up to start were confirmed before the fetch began, so the
	// list already reflects them.
	for key, rev := range s.touched[kind] {
		if rev <= start {
			delete(s.touched[kind], key)
		}
	}
	return true
}

func (s *Store) touchLocked(kind models.Kind, key int) {
	t := s.touched[kind]
	if t == nil {
		t = make(map[int]uint64)
		s.touched[kind] = t
	}
	t[key] = s.revision
}

// Upsert replaces or inserts a record by its identity key.
func (s *Store) Upsert(rec models.Record) error {
	s.mu.Lock()
	switch r := rec.(type) {
	case models.Volunteer:
		s.volunteers.upsert(r)
	case models.Driver:
		s.drivers.upsert(r)
	case models.Route:
		s.routes.upsert(r)
	default:
		s.mu.Unlock()
		return fmt.Errorf("upsert: unsupported record %T", rec)
	}
	s.revision++
	s.touchLocked(rec.Kind(), rec.Key())
	rev := s.revision
	s.mu.Unlock()

	s.Events.Emit(Change{Op: OpUpsert, Kind: rec.Kind(), Key: rec.Key(), Revision: rev})
	return nil
}

// Remove deletes a record by identity key. It reports whether the key existed.
func (s *Store) Remove(kind models.Kind, key int) bool {
	s.mu.Lock()
	var removed bool
	switch kind {
	case models.KindVolunteer:
		removed = s.volunteers.remove(key)
	case models.KindDriver:
		removed = s.drivers.remove(key)
	case models.KindRoute:
		removed = s.routes.remove(key)
	}
	if !removed {
		s.mu.Unlock()
		return false
	}
	s.revision++
	s.touchLocked(kind, key)
	rev := s.revision
	s.mu.Unlock()

	s.Events.Emit(Change{Op: OpRemoved, Kind: kind, Key: key, Revision: rev})
	return true
}

// Revision increases on every mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

func (s *Store) Volunteers() []models.Volunteer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volunteers.list()
}

func (s *Store) Drivers() []models.Driver {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drivers.list()
}

func (s *Store) Routes() []models.Route {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes.list()
}

func (s *Store) Volunteer(id int) (models.Volunteer, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volunteers.get(id)
}

func (s *Store) Driver(id int) (models.Driver, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.drivers.get(id)
}

func (s *Store) Route(n int) (models.Route, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.routes.get(n)
}

// Get looks a record up by reference.
func (s *Store) Get(ref models.Ref) (models.Record, bool) {
	var (
		rec models.Record
		ok  bool
	)
	switch ref.Kind {
	case models.KindVolunteer:
		rec, ok = s.Volunteer(ref.Key)
	case models.KindDriver:
		rec, ok = s.Driver(ref.Key)
	case models.KindRoute:
		rec, ok = s.Route(ref.Key)
	}
	if !ok {
		return nil, false
	}
	return rec, true
}

// DriverExists reports whether id resolves in the collection selected by t.
func (s *Store) DriverExists(t models.DriverType, id int) bool {
	_, ok := s.driverName(t, id)
	return ok
}

// RouteRows joins every route with its driver's name. The join runs on each
// call so an edited volunteer or driver is reflected immediately.
func (s *Store) RouteRows() ([]models.RouteRow, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	routes := s.routes.list()
	rows := make([]models.RouteRow, len(routes))
	for i, r := range routes {
		name, ok := s.driverNameLocked(r.DriverType, r.DriverID)
		rows[i] = models.RouteRow{Route: r, DriverName: name, DriverResolved: ok}
	}
	return rows, s.revision
}

func (s *Store) driverName(t models.DriverType, id int) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.driverNameLocked(t, id)
}

func (s *Store) driverNameLocked(t models.DriverType, id int) (string, bool) {
	switch t {
	case models.DriverTypeVolunteer:
		if v, ok := s.volunteers.get(id); ok {
			return v.FullName(), true
		}
	case models.DriverTypeEmployed:
		if d, ok := s.drivers.get(id); ok {
			return d.FullName(), true
		}
	}
	return "", false
}
