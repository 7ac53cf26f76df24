package session

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"food_routing_admin/internal/models"
	"food_routing_admin/internal/routeview"
)

const (
	maxNameLen  = 50
	maxPhoneLen = 15
)

// Draft is the unsaved form of one entity. The concrete types are
// *VolunteerDraft, *DriverDraft and *RouteDraft; every field is the raw text
// the user typed and is only parsed on save.
type Draft interface {
	Kind() models.Kind
	Fields() map[string]string
	SetField(name, value string) error
	draft()
}

// NewDraft returns the empty add-form draft for kind.
func NewDraft(kind models.Kind) (Draft, error) {
	switch kind {
	case models.KindVolunteer:
		return &VolunteerDraft{}, nil
	case models.KindDriver:
		return &DriverDraft{}, nil
	case models.KindRoute:
		return &RouteDraft{DriverType: string(models.DriverTypeVolunteer)}, nil
	}
	return nil, invalid("kind", "unknown entity kind %q", kind)
}

// DraftFrom fills a draft with a stored record.
func DraftFrom(rec models.Record) Draft {
	switch r := rec.(type) {
	case models.Volunteer:
		return &VolunteerDraft{personDraftFrom(r.FirstName, r.LastName, r.Address, r.PhoneNumber, r.Notes)}
	case models.Driver:
		return &DriverDraft{personDraftFrom(r.FirstName, r.LastName, r.Address, r.PhoneNumber, r.Notes)}
	case models.Route:
		return &RouteDraft{
			RouteNumber:      strconv.Itoa(r.RouteNumber),
			PickupLocations:  routeview.JoinLocations(r.PickupLocations),
			DropoffLocations: routeview.JoinLocations(r.DropoffLocations),
			DriverType:       string(r.DriverType),
			DriverID:         strconv.Itoa(r.DriverID),
		}
	}
	return nil
}

// PersonDraft is the shared form of volunteers and drivers.
type PersonDraft struct {
	FirstName   string
	LastName    string
	Address     string
	PhoneNumber string
	Notes       string
}

func personDraftFrom(first, last, address, phone, notes string) PersonDraft {
	return PersonDraft{FirstName: first, LastName: last, Address: address, PhoneNumber: phone, Notes: notes}
}

func (p *PersonDraft) Fields() map[string]string {
	return map[string]string{
		"first_name":   p.FirstName,
		"last_name":    p.LastName,
		"address":      p.Address,
		"phone_number": p.PhoneNumber,
		"notes":        p.Notes,
	}
}

func (p *PersonDraft) SetField(name, value string) error {
	switch name {
	case "first_name":
		p.FirstName = value
	case "last_name":
		p.LastName = value
	case "address":
		p.Address = value
	case "phone_number":
		p.PhoneNumber = value
	case "notes":
		p.Notes = value
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// Input trims and checks the form.
func (p *PersonDraft) Input() (models.PersonInput, error) {
	in := models.PersonInput{
		FirstName:   strings.TrimSpace(p.FirstName),
		LastName:    strings.TrimSpace(p.LastName),
		Address:     strings.TrimSpace(p.Address),
		PhoneNumber: strings.TrimSpace(p.PhoneNumber),
		Notes:       strings.TrimSpace(p.Notes),
	}
	for _, f := range []struct{ name, value string }{
		{"first_name", in.FirstName},
		{"last_name", in.LastName},
	} {
		if f.value == "" {
			return in, invalid(f.name, "is required")
		}
		if utf8.RuneCountInString(f.value) > maxNameLen {
			return in, invalid(f.name, "must be at most %d characters", maxNameLen)
		}
	}
	if utf8.RuneCountInString(in.PhoneNumber) > maxPhoneLen {
		return in, invalid("phone_number", "must be at most %d characters", maxPhoneLen)
	}
	return in, nil
}

type VolunteerDraft struct{ PersonDraft }

func (*VolunteerDraft) Kind() models.Kind { return models.KindVolunteer }
func (*VolunteerDraft) draft()            {}

type DriverDraft struct{ PersonDraft }

func (*DriverDraft) Kind() models.Kind { return models.KindDriver }
func (*DriverDraft) draft()            {}

// RouteDraft holds the route form. Locations are comma separated text.
type RouteDraft struct {
	RouteNumber      string
	PickupLocations  string
	DropoffLocations string
	DriverType       string
	DriverID         string
}

func (*RouteDraft) Kind() models.Kind { return models.KindRoute }
func (*RouteDraft) draft()            {}

func (r *RouteDraft) Fields() map[string]string {
	return map[string]string{
		"route_number":      r.RouteNumber,
		"pickup_locations":  r.PickupLocations,
		"dropoff_locations": r.DropoffLocations,
		"driver_type":       r.DriverType,
		"driver_id":         r.DriverID,
	}
}

func (r *RouteDraft) SetField(name, value string) error {
	switch name {
	case "route_number":
		r.RouteNumber = value
	case "pickup_locations":
		r.PickupLocations = value
	case "dropoff_locations":
		r.DropoffLocations = value
	case "driver_type":
		r.DriverType = value
	case "driver_id":
		r.DriverID = value
	default:
		return invalid(name, "unknown field")
	}
	return nil
}

// DriverChecker resolves a route's driver reference.
type DriverChecker interface {
	DriverExists(t models.DriverType, id int) bool
}

// Input parses the form. On edit, original is the stored route number and
// the form may not change it. On add a blank route number is left for the
// back end to assign.
func (r *RouteDraft) Input(mode Mode, original int, drivers DriverChecker) (models.RouteInput, error) {
	var in models.RouteInput

	num := strings.TrimSpace(r.RouteNumber)
	switch {
	case mode == ModeEdit:
		if num != "" {
			if n, err := strconv.Atoi(num); err != nil || n != original {
				return in, invalid("route_number", "cannot be changed")
			}
		}
	case num != "":
		n, err := strconv.Atoi(num)
		if err != nil {
			return in, invalid("route_number", "must be a whole number")
		}
		if n <= 0 {
			return in, invalid("route_number", "must be positive")
		}
		in.RouteNumber = &n
	}

	in.PickupLocations = routeview.SplitLocations(r.PickupLocations)
	in.DropoffLocations = routeview.SplitLocations(r.DropoffLocations)

	dt, err := models.ParseDriverType(strings.TrimSpace(r.DriverType))
	if err != nil {
		return in, invalid("driver_type", "must be %q or %q", models.DriverTypeVolunteer, models.DriverTypeEmployed)
	}
	in.DriverType = dt

	id, err := strconv.Atoi(strings.TrimSpace(r.DriverID))
	if err != nil {
		return in, invalid("driver_id", "must be a whole number")
	}
	if !drivers.DriverExists(dt, id) {
		return in, invalid("driver_id", "no %s with id %d", dt, id)
	}
	in.DriverID = id
	return in, nil
}
