package gateway_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/gateway/gatewaytest"
	"food_routing_admin/internal/models"
)

func testServer(t *testing.T, handler http.HandlerFunc) *gateway.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return gateway.NewClient(gateway.Options{BaseURL: srv.URL, Timeout: 5 * time.Second, PageSize: 2})
}

func TestListVolunteers_WalksPages(t *testing.T) {
	backend := gatewaytest.New(t)
	backend.SeedVolunteers(
		models.Volunteer{ID: 1, FirstName: "Ada"},
		models.Volunteer{ID: 2, FirstName: "Grace"},
		models.Volunteer{ID: 3, FirstName: "Edsger"},
	)

	got, err := backend.Client().ListVolunteers(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Edsger", got[2].FirstName)

	// Page size 2: pages of 2 and 1.
	reqs := backend.Requests()
	assert.Len(t, reqs, 2)
}

func TestListRoutes_EmptyIsNotNil(t *testing.T) {
	backend := gatewaytest.New(t)
	got, err := backend.Client().ListRoutes(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestListDrivers_SendsSkipAndLimit(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/drivers/" {
			t.Errorf("path = %q, want /drivers/", r.URL.Path)
		}
		assert.Equal(t, "0", r.URL.Query().Get("skip"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]models.Driver{{ID: 7, FirstName: "Mo"}})
	})

	got, err := client.ListDrivers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Driver{{ID: 7, FirstName: "Mo"}}, got)
}

func TestCreateVolunteer(t *testing.T) {
	backend := gatewaytest.New(t)

	v, err := backend.Client().CreateVolunteer(context.Background(), models.PersonInput{FirstName: "Jane", LastName: "Doe"})
	require.NoError(t, err)
	assert.Equal(t, 1, v.ID)
	assert.Equal(t, "Jane", v.FirstName)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/volunteers/", reqs[0].Path)
	assert.NotContains(t, string(reqs[0].Body), `"id"`)
}

func TestUpdateRoute_OmitsRouteNumberFromBody(t *testing.T) {
	backend := gatewaytest.New(t)
	backend.SeedRoutes(models.Route{RouteNumber: 7, DriverType: models.DriverTypeVolunteer, DriverID: 1})

	n := 99
	got, err := backend.Client().UpdateRoute(context.Background(), 7, models.RouteInput{
		RouteNumber:     &n,
		PickupLocations: []string{"Depot"},
		DriverType:      models.DriverTypeEmployed,
		DriverID:        3,
	})
	require.NoError(t, err)
	assert.Equal(t, 7, got.RouteNumber)
	assert.Equal(t, models.DriverTypeEmployed, got.DriverType)

	reqs := backend.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "/routes/7", reqs[0].Path)
	assert.NotContains(t, string(reqs[0].Body), "route_number")
}

func TestCreateRoute_ServerAssignsNumber(t *testing.T) {
	backend := gatewaytest.New(t)
	backend.SeedRoutes(models.Route{RouteNumber: 4})

	got, err := backend.Client().CreateRoute(context.Background(), models.RouteInput{
		PickupLocations:  []string{"A"},
		DropoffLocations: []string{"B"},
		DriverType:       models.DriverTypeVolunteer,
		DriverID:         1,
	})
	require.NoError(t, err)
	assert.Equal(t, 5, got.RouteNumber)
}

func TestDeleteDriver_NotFound(t *testing.T) {
	backend := gatewaytest.New(t)

	err := backend.Client().DeleteDriver(context.Background(), 42)
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNotFound))
	assert.True(t, errors.Is(err, gateway.ErrNetwork))

	var reqErr *gateway.RequestError
	require.True(t, errors.As(err, &reqErr))
	assert.Equal(t, http.StatusNotFound, reqErr.StatusCode)
	assert.Equal(t, "/drivers/42", reqErr.Path)
}

func TestServerError_IsNetworkFailure(t *testing.T) {
	backend := gatewaytest.New(t)
	backend.FailAll(http.StatusInternalServerError)

	_, err := backend.Client().ListRoutes(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNetwork))
	assert.False(t, errors.Is(err, gateway.ErrNotFound))
}

func TestUnreachable_IsNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := gateway.NewClient(gateway.Options{BaseURL: url, Timeout: time.Second})
	_, err := client.CreateVolunteer(context.Background(), models.PersonInput{FirstName: "x", LastName: "y"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNetwork))
}

func TestDecodeError_IsNetworkFailure(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	})
	_, err := client.ListVolunteers(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, gateway.ErrNetwork))
}

func TestCancelledContext(t *testing.T) {
	client := testServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]models.Route{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.ListRoutes(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, gateway.ErrNetwork))
}

func TestRateLimit_SpacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("[]"))
	}))
	t.Cleanup(srv.Close)
	client := gateway.NewClient(gateway.Options{BaseURL: srv.URL, RateLimit: 20, Burst: 1})

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.ListRoutes(context.Background())
		require.NoError(t, err)
	}
	// Burst 1 at 20/s: the second and third calls each wait about 50ms.
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}
