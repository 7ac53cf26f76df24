package store_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/gateway/gatewaytest"
	"food_routing_admin/internal/models"
	"food_routing_admin/internal/store"
)

func seeded(t *testing.T) *gatewaytest.Backend {
	t.Helper()
	b := gatewaytest.New(t)
	b.SeedVolunteers(
		models.Volunteer{ID: 5, FirstName: "Jane", LastName: "Doe"},
		models.Volunteer{ID: 6, FirstName: "Sam", LastName: "Lee"},
	)
	b.SeedDrivers(models.Driver{ID: 2, FirstName: "Ola", LastName: "Berg"})
	b.SeedRoutes(
		models.Route{RouteNumber: 1, PickupLocations: []string{"A"}, DropoffLocations: []string{"B"}, DriverType: models.DriverTypeVolunteer, DriverID: 5},
		models.Route{RouteNumber: 2, PickupLocations: []string{"C"}, DropoffLocations: []string{"D"}, DriverType: models.DriverTypeEmployed, DriverID: 2},
		models.Route{RouteNumber: 3, PickupLocations: []string{"E"}, DropoffLocations: []string{"F"}, DriverType: models.DriverTypeEmployed, DriverID: 99},
	)
	return b
}

func TestLoadAll(t *testing.T) {
	b := seeded(t)
	s := store.New()

	require.NoError(t, s.LoadAll(context.Background(), b.Client()))

	assert.Len(t, s.Volunteers(), 2)
	assert.Len(t, s.Drivers(), 1)
	assert.Len(t, s.Routes(), 3)
	assert.Equal(t, uint64(1), s.Revision())
}

func TestLoadAll_FailureLeavesStoreUntouched(t *testing.T) {
	b := seeded(t)
	s := store.New()
	require.NoError(t, s.LoadAll(context.Background(), b.Client()))
	before := s.Revision()

	b.SeedVolunteers(models.Volunteer{ID: 7, FirstName: "New", LastName: "Person"})
	b.FailAll(http.StatusServiceUnavailable)

	err := s.LoadAll(context.Background(), b.Client())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNetwork))
	assert.Len(t, s.Volunteers(), 2)
	assert.Equal(t, before, s.Revision())
}

func TestLoad_SingleCollection(t *testing.T) {
	b := seeded(t)
	s := store.New()

	require.NoError(t, s.Load(context.Background(), models.KindDriver, b.Client()))
	assert.Len(t, s.Drivers(), 1)
	assert.Empty(t, s.Routes())

	b.FailMethod(http.MethodGet, http.StatusBadGateway)
	require.Error(t, s.Load(context.Background(), models.KindDriver, b.Client()))
	assert.Len(t, s.Drivers(), 1)
}

func TestUpsert_ReplacesByKeyAndKeepsOrder(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Upsert(models.Volunteer{ID: 1, FirstName: "A"}))
	require.NoError(t, s.Upsert(models.Volunteer{ID: 2, FirstName: "B"}))
	require.NoError(t, s.Upsert(models.Volunteer{ID: 1, FirstName: "A2"}))

	got := s.Volunteers()
	want := []models.Volunteer{{ID: 1, FirstName: "A2"}, {ID: 2, FirstName: "B"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("volunteers mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, uint64(3), s.Revision())
}

func TestRemove(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Upsert(models.Route{RouteNumber: 4}))

	assert.True(t, s.Remove(models.KindRoute, 4))
	assert.False(t, s.Remove(models.KindRoute, 4))
	_, ok := s.Route(4)
	assert.False(t, ok)
	assert.Equal(t, uint64(2), s.Revision())
}

func TestGet(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Upsert(models.Driver{ID: 3, FirstName: "D"}))

	rec, ok := s.Get(models.Ref{Kind: models.KindDriver, Key: 3})
	require.True(t, ok)
	assert.Equal(t, models.Driver{ID: 3, FirstName: "D"}, rec)

	rec, ok = s.Get(models.Ref{Kind: models.KindVolunteer, Key: 3})
	assert.False(t, ok)
	assert.Nil(t, rec)
}

func TestRouteRows_ResolvesDriverNames(t *testing.T) {
	b := seeded(t)
	s := store.New()
	require.NoError(t, s.LoadAll(context.Background(), b.Client()))

	rows, rev := s.RouteRows()
	require.Len(t, rows, 3)
	assert.Equal(t, s.Revision(), rev)

	assert.Equal(t, "Jane Doe", rows[0].DriverName)
	assert.True(t, rows[0].DriverResolved)
	assert.Equal(t, "Ola Berg", rows[1].DriverName)
	assert.Equal(t, "", rows[2].DriverName)
	assert.False(t, rows[2].DriverResolved)
}

func TestRouteRows_RecomputedAfterDriverEdit(t *testing.T) {
	b := seeded(t)
	s := store.New()
	require.NoError(t, s.LoadAll(context.Background(), b.Client()))

	require.NoError(t, s.Upsert(models.Volunteer{ID: 5, FirstName: "Janet", LastName: "Doe"}))
	rows, _ := s.RouteRows()
	assert.Equal(t, "Janet Doe", rows[0].DriverName)

	require.NoError(t, s.Upsert(models.Route{RouteNumber: 1, DriverType: models.DriverTypeVolunteer, DriverID: 6}))
	rows, _ = s.RouteRows()
	assert.Equal(t, "Sam Lee", rows[0].DriverName)

	s.Remove(models.KindVolunteer, 6)
	rows, _ = s.RouteRows()
	assert.False(t, rows[0].DriverResolved)
}

func TestDriverExists(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Upsert(models.Volunteer{ID: 5}))
	require.NoError(t, s.Upsert(models.Driver{ID: 8}))

	assert.True(t, s.DriverExists(models.DriverTypeVolunteer, 5))
	assert.False(t, s.DriverExists(models.DriverTypeEmployed, 5))
	assert.True(t, s.DriverExists(models.DriverTypeEmployed, 8))
	assert.False(t, s.DriverExists(models.DriverType("bus"), 8))
}

func TestEvents(t *testing.T) {
	s := store.New()
	var all, routesOnly []store.Change
	s.Events.Subscribe(func(c store.Change) { all = append(all, c) })
	id := s.Events.SubscribeKinds(func(c store.Change) { routesOnly = append(routesOnly, c) }, models.KindRoute)

	require.NoError(t, s.Upsert(models.Volunteer{ID: 1}))
	require.NoError(t, s.Upsert(models.Route{RouteNumber: 9}))
	s.Remove(models.KindRoute, 9)
	s.Remove(models.KindRoute, 9)

	want := []store.Change{
		{Op: store.OpUpsert, Kind: models.KindVolunteer, Key: 1, Revision: 1},
		{Op: store.OpUpsert, Kind: models.KindRoute, Key: 9, Revision: 2},
		{Op: store.OpRemoved, Kind: models.KindRoute, Key: 9, Revision: 3},
	}
	if diff := cmp.Diff(want, all); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, routesOnly, 2)

	s.Events.Unsubscribe(id)
	require.NoError(t, s.Upsert(models.Route{RouteNumber: 10}))
	assert.Len(t, routesOnly, 2)
	assert.Len(t, all, 4)
}

// heldSource serves fixed lists, parking ListRoutes until proceed is closed.
type heldSource struct {
	routes  []models.Route
	entered chan struct{}
	proceed chan struct{}
}

func holdRoutes(routes ...models.Route) *heldSource {
	return &heldSource{routes: routes, entered: make(chan struct{}), proceed: make(chan struct{})}
}

func (h *heldSource) ListVolunteers(context.Context) ([]models.Volunteer, error) { return nil, nil }
func (h *heldSource) ListDrivers(context.Context) ([]models.Driver, error)       { return nil, nil }

func (h *heldSource) ListRoutes(context.Context) ([]models.Route, error) {
	close(h.entered)
	<-h.proceed
	return h.routes, nil
}

// loadInBackground starts a load and returns once the source has been asked
// for routes.
func loadInBackground(t *testing.T, s *store.Store, src *heldSource, all bool) <-chan error {
	t.Helper()
	done := make(chan error, 1)
	go func() {
		if all {
			done <- s.LoadAll(context.Background(), src)
			return
		}
		done <- s.Load(context.Background(), models.KindRoute, src)
	}()
	<-src.entered
	return done
}

func TestLoad_KeepsWritesConfirmedDuringFetch(t *testing.T) {
	for _, all := range []bool{false, true} {
		s := store.New()
		require.NoError(t, s.Upsert(models.Route{RouteNumber: 7, PickupLocations: []string{"old"}}))
		require.NoError(t, s.Upsert(models.Route{RouteNumber: 8, PickupLocations: []string{"gone"}}))

		src := holdRoutes(
			models.Route{RouteNumber: 7, PickupLocations: []string{"old"}},
			models.Route{RouteNumber: 8, PickupLocations: []string{"gone"}},
			models.Route{RouteNumber: 10, PickupLocations: []string{"listed"}},
		)
		done := loadInBackground(t, s, src, all)

		require.NoError(t, s.Upsert(models.Route{RouteNumber: 7, PickupLocations: []string{"new"}}))
		require.True(t, s.Remove(models.KindRoute, 8))
		require.NoError(t, s.Upsert(models.Route{RouteNumber: 9, PickupLocations: []string{"added"}}))
		close(src.proceed)
		require.NoError(t, <-done)

		r7, ok := s.Route(7)
		require.True(t, ok, "all=%v", all)
		assert.Equal(t, []string{"new"}, r7.PickupLocations, "all=%v", all)
		_, ok = s.Route(8)
		assert.False(t, ok, "all=%v", all)
		_, ok = s.Route(9)
		assert.True(t, ok, "all=%v", all)
		_, ok = s.Route(10)
		assert.True(t, ok, "all=%v", all)
	}
}

func TestLoad_LaterListReplacesEarlierWrites(t *testing.T) {
	s := store.New()
	require.NoError(t, s.Upsert(models.Route{RouteNumber: 7, PickupLocations: []string{"local"}}))

	src := holdRoutes(models.Route{RouteNumber: 7, PickupLocations: []string{"server"}})
	close(src.proceed)
	require.NoError(t, s.Load(context.Background(), models.KindRoute, src))

	r7, _ := s.Route(7)
	assert.Equal(t, []string{"server"}, r7.PickupLocations)
}

func TestLoad_DropsListOlderThanAppliedOne(t *testing.T) {
	s := store.New()
	slow := holdRoutes(models.Route{RouteNumber: 7, PickupLocations: []string{"old"}})
	done := loadInBackground(t, s, slow, false)

	require.NoError(t, s.Upsert(models.Route{RouteNumber: 7, PickupLocations: []string{"new"}}))
	fast := holdRoutes(models.Route{RouteNumber: 7, PickupLocations: []string{"new"}})
	close(fast.proceed)
	require.NoError(t, s.Load(context.Background(), models.KindRoute, fast))
	rev := s.Revision()

	close(slow.proceed)
	require.NoError(t, <-done)

	r7, _ := s.Route(7)
	assert.Equal(t, []string{"new"}, r7.PickupLocations)
	assert.Equal(t, rev, s.Revision())
}
