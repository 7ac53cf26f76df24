// internal/models/driver.go
package models

// Driver is an employed staff driver. It has the same shape as a Volunteer but
// lives in its own collection on the back end.
type Driver struct {
	ID          int    `json:"id"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Address     string `json:"address"`
	PhoneNumber string `json:"phone_number"`
	Notes       string `json:"notes"`
}

func (d Driver) Kind() Kind { return KindDriver }
func (d Driver) Key() int   { return d.ID }

// FullName is what the route table shows for a driver reference.
func (d Driver) FullName() string { return joinName(d.FirstName, d.LastName) }

