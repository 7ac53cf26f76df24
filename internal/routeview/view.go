// Package routeview derives the route table shown to the user: a filtered,
// stably sorted projection of the store's route rows. Nothing here mutates
// the rows it is given.
package routeview

import (
	"errors"
	"fmt"
)

// Column is a sortable column key of the route table.
type Column string

const (
	ColumnRouteNumber Column = "route_number"
	ColumnPickup      Column = "pickup_locations"
	ColumnDropoff     Column = "dropoff_locations"
	ColumnDriverType  Column = "driver_type"
	ColumnDriverID    Column = "driver_id"
	ColumnDriverName  Column = "driver_name"
	ColumnDriver      Column = "driver"
)

// Columns lists every sortable column in table order.
var Columns = []Column{
	ColumnRouteNumber,
	ColumnPickup,
	ColumnDropoff,
	ColumnDriverType,
	ColumnDriverID,
	ColumnDriverName,
	ColumnDriver,
}

// ErrUnknownColumn is returned for a column key the table does not have.
var ErrUnknownColumn = errors.New("unknown sort column")

func ParseColumn(s string) (Column, error) {
	for _, c := range Columns {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w %q", ErrUnknownColumn, s)
}

type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// SortConfig is the active sort. A zero Column means server order.
type SortConfig struct {
	Column    Column    `json:"column,omitempty"`
	Direction Direction `json:"direction,omitempty"`
}

func (s SortConfig) Active() bool { return s.Column != "" }

// ViewState is the filter text and sort of the route table. It is a value:
// the With/Click methods return a new state and leave the receiver alone.
type ViewState struct {
	Query string     `json:"query"`
	Sort  SortConfig `json:"sort"`
}

// WithQuery returns the state with a new filter text.
func (v ViewState) WithQuery(q string) ViewState {
	v.Query = q
	return v
}

// ClickColumn applies a header click: the active column flips direction, any
// other column becomes the active one, ascending. An unknown column returns
// the receiver unchanged together with an error.
func (v ViewState) ClickColumn(name string) (ViewState, error) {
	col, err := ParseColumn(name)
	if err != nil {
		return v, err
	}
	if v.Sort.Column == col {
		if v.Sort.Direction == Ascending {
			v.Sort.Direction = Descending
		} else {
			v.Sort.Direction = Ascending
		}
		return v, nil
	}
	v.Sort = SortConfig{Column: col, Direction: Ascending}
	return v, nil
}
