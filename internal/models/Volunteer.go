// internal/models/volunteer.go
package models

import "strings"

// Volunteer is a volunteer driver known to the back office.
type Volunteer struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Notes       string `json:"notes"`
}

// PersonInput is a Volunteer or Driver minus the server-assigned id.
type PersonInput struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Notes       string `json:"notes"`
}

func (v Volunteer) Kind() Kind { return KindVolunteer }
func (v Volunteer) Key() int   { return v.ID }

// FullName is what the route table shows for a volunteer reference.
func (v Volunteer) FullName() string { return joinName(v.FirstName, v.LastName) }

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
