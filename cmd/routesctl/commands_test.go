package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"food_routing_admin/internal/gateway/gatewaytest"
	"food_routing_admin/internal/models"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	reset := func() {
		backendURL, filterQuery, sortColumn, sortDesc = "", "", "", false
	}
	reset()
	t.Cleanup(reset)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func seed(t *testing.T) *gatewaytest.Backend {
	t.Helper()
	b := gatewaytest.New(t)
	b.SeedVolunteers(models.Volunteer{ID: 5, FirstName: "Jane", LastName: "Doe", PhoneNumber: "555-0100"})
	b.SeedDrivers(models.Driver{ID: 2, FirstName: "Ola", LastName: "Berg"})
	b.SeedRoutes(
		models.Route{RouteNumber: 1, PickupLocations: []string{"A"}, DropoffLocations: []string{"B"}, DriverType: models.DriverTypeVolunteer, DriverID: 5},
		models.Route{RouteNumber: 7, PickupLocations: []string{"Food Bank", "Market"}, DropoffLocations: []string{"Shelter"}, DriverType: models.DriverTypeEmployed, DriverID: 3},
	)
	return b
}

func TestRoutesCommand(t *testing.T) {
	b := seed(t)

	out, err := run(t, "routes", "--backend", b.URL(), "--sort", "route_number", "--desc")
	require.NoError(t, err)
	assert.Contains(t, out, "Food Bank, Market")
	assert.Contains(t, out, "employed_driver: 3")
	assert.Contains(t, out, "(unknown)")
	assert.Less(t, bytes.Index([]byte(out), []byte("Shelter")), bytes.Index([]byte(out), []byte("Jane Doe")))
}

func TestRoutesCommand_DescDefaultsToRouteNumber(t *testing.T) {
	b := seed(t)

	out, err := run(t, "routes", "--backend", b.URL(), "--desc")
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Shelter")), bytes.Index([]byte(out), []byte("Jane Doe")))

	out, err = run(t, "routes", "--backend", b.URL())
	require.NoError(t, err)
	assert.Less(t, bytes.Index([]byte(out), []byte("Jane Doe")), bytes.Index([]byte(out), []byte("Shelter")))
}

func TestRoutesCommand_Filter(t *testing.T) {
	b := seed(t)

	out, err := run(t, "routes", "--backend", b.URL(), "--filter", "volunteer: 5")
	require.NoError(t, err)
	assert.Contains(t, out, "Jane Doe")
	assert.NotContains(t, out, "Food Bank")
}

func TestVolunteersCommand(t *testing.T) {
	b := seed(t)

	out, err := run(t, "volunteers", "--backend", b.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "555-0100")
	assert.Contains(t, out, "Jane Doe")
}

func TestDeleteCommand(t *testing.T) {
	b := seed(t)

	out, err := run(t, "delete", "route", "7", "--backend", b.URL())
	require.NoError(t, err)
	assert.Contains(t, out, "deleted route/7")
	_, ok := b.Route(7)
	assert.False(t, ok)

	_, err = run(t, "delete", "bus", "7", "--backend", b.URL())
	assert.Error(t, err)
}
