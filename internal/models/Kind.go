package models

import (
	"fmt"
	"strconv"
)

// Kind names one of the three entity collections.
type Kind string

const (
	KindVolunteer Kind = "volunteer"
	KindDriver    Kind = "driver"
	KindRoute     Kind = "route"
)

// ParseKind accepts singular or plural forms ("routes" works as well as "route").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "volunteer", "volunteers":
		return KindVolunteer, nil
	case "driver", "drivers":
		return KindDriver, nil
	case "route", "routes":
		return KindRoute, nil
	}
	return "", fmt.Errorf("unknown entity kind %q", s)
}

// Record is implemented by Volunteer, Driver and Route.
type Record interface {
	Kind() Kind
	Key() int
}

// Ref addresses one record by its identity key (id, or route_number for routes).
type Ref struct {
	Kind Kind `json:"kind"`
	Key  int  `json:"key"`
}

func RefOf(r Record) Ref { return Ref{Kind: r.Kind(), Key: r.Key()} }

func (r Ref) String() string { return string(r.Kind) + "/" + strconv.Itoa(r.Key) }
