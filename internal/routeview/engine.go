package routeview

import (
	"cmp"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"

	"food_routing_admin/internal/models"
)

// fold is safe for concurrent use.
var fold = cases.Fold()

// Filter keeps the rows whose route number, pickup list, dropoff list or
// "{driver_type}: {driver_id}" label contains q, ignoring case. Order is kept.
// An empty q keeps every row.
func Filter(rows []models.RouteRow, q string) []models.RouteRow {
	out := make([]models.RouteRow, 0, len(rows))
	if q == "" {
		return append(out, rows...)
	}
	needle := fold.String(q)
	for _, r := range rows {
		if matches(r.Route, needle) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether one route passes Filter for q.
func Matches(r models.Route, q string) bool {
	if q == "" {
		return true
	}
	return matches(r, fold.String(q))
}

func matches(r models.Route, needle string) bool {
	for _, field := range searchFields(r) {
		if strings.Contains(fold.String(field), needle) {
			return true
		}
	}
	return false
}

func searchFields(r models.Route) [4]string {
	return [4]string{
		strconv.Itoa(r.RouteNumber),
		JoinLocations(r.PickupLocations),
		JoinLocations(r.DropoffLocations),
		r.DriverLabel(),
	}
}

// Sort returns a stably sorted copy of rows. Descending reverses the
// comparator, so equal rows keep their input order either way. An inactive
// config returns the rows in input order.
func Sort(rows []models.RouteRow, cfg SortConfig) []models.RouteRow {
	out := slices.Clone(rows)
	if out == nil {
		out = []models.RouteRow{}
	}
	compare := comparator(cfg.Column)
	if compare == nil {
		return out
	}
	if cfg.Direction == Descending {
		asc := compare
		compare = func(a, b models.RouteRow) int { return asc(b, a) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func comparator(col Column) func(a, b models.RouteRow) int {
	switch col {
	case ColumnRouteNumber:
		return func(a, b models.RouteRow) int { return cmp.Compare(a.RouteNumber, b.RouteNumber) }
	case ColumnPickup:
		return func(a, b models.RouteRow) int {
			return strings.Compare(JoinLocations(a.PickupLocations), JoinLocations(b.PickupLocations))
		}
	case ColumnDropoff:
		return func(a, b models.RouteRow) int {
			return strings.Compare(JoinLocations(a.DropoffLocations), JoinLocations(b.DropoffLocations))
		}
	case ColumnDriverType:
		return func(a, b models.RouteRow) int { return strings.Compare(string(a.DriverType), string(b.DriverType)) }
	case ColumnDriverID:
		return func(a, b models.RouteRow) int { return cmp.Compare(a.DriverID, b.DriverID) }
	case ColumnDriverName:
		return func(a, b models.RouteRow) int { return strings.Compare(a.DriverName, b.DriverName) }
	case ColumnDriver:
		return func(a, b models.RouteRow) int {
			if c := strings.Compare(string(a.DriverType), string(b.DriverType)); c != 0 {
				return c
			}
			return cmp.Compare(a.DriverID, b.DriverID)
		}
	}
	return nil
}

// Apply filters the full row set and sorts what is left.
func Apply(rows []models.RouteRow, state ViewState) []models.RouteRow {
	return Sort(Filter(rows, state.Query), state.Sort)
}

// SplitLocations turns "A, B ,C" into ["A" "B" "C"]. Blank segments are dropped.
func SplitLocations(text string) []string {
	out := []string{}
	for _, part := range strings.Split(text, ",") {
		if s := strings.TrimSpace(part); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// JoinLocations is the display form of a location list.
func JoinLocations(locs []string) string {
	return strings.Join(locs, ", ")
}
