package models

import (
	"fmt"
	"strconv"
)

// DriverType selects which collection a route's driver_id points into.
type DriverType string

const (
	DriverTypeVolunteer DriverType = "volunteer"
	DriverTypeEmployed  DriverType = "employed_driver"
)

// ParseDriverType accepts the wire values only.
func ParseDriverType(s string) (DriverType, error) {
	switch DriverType(s) {
	case DriverTypeVolunteer, DriverTypeEmployed:
		return DriverType(s), nil
	}
	return "", fmt.Errorf("unknown driver type %q", s)
}

// Route is a delivery route with ordered pickup and dropoff stops.
// RouteNumber is the identity key and does not change after creation.
type Route struct {
	RouteNumber      int        `json:"route_number"`
	PickupLocations  []string   `json:"pickup_locations"`
	DropoffLocations []string   `json:"dropoff_locations"`
	DriverType       DriverType `json:"driver_type"`
	DriverID         int        `json:"driver_id"`
}

func (r Route) Kind() Kind { return KindRoute }
func (r Route) Key() int   { return r.RouteNumber }

// DriverLabel is the "{driver_type}: {driver_id}" text shown in the driver column.
func (r Route) DriverLabel() string {
	return string(r.DriverType) + ": " + strconv.Itoa(r.DriverID)
}

// RouteInput is the writable part of a route. RouteNumber is only sent on
// create, and only when the user picked one; otherwise the server assigns it.
type RouteInput struct {
	RouteNumber      *int       `json:"route_number,omitempty"`
	PickupLocations  []string   `json:"pickup_locations"`
	DropoffLocations []string   `json:"dropoff_locations"`
	DriverType       DriverType `json:"driver_type"`
	DriverID         int        `json:"driver_id"`
}

// RouteRow is a route joined with its driver's display name. It is derived on
// every read and never cached on the Route itself.
type RouteRow struct {
	Route
	DriverName     string `json:"driver_name"`
	DriverResolved bool   `json:"driver_resolved"`
}
