package gateway

import (
	"context"

	"food_routing_admin/internal/models"
)

const volunteersPath = "/volunteers/"

// ListVolunteers fetches every volunteer.
func (c *Client) ListVolunteers(ctx context.Context) ([]models.Volunteer, error) {
	return listAll[models.Volunteer](ctx, c, volunteersPath)
}

// CreateVolunteer posts a new volunteer and returns it with its server-assigned id.
func (c *Client) CreateVolunteer(ctx context.Context, in models.PersonInput) (models.Volunteer, error) {
	var out models.Volunteer
	err := c.post(ctx, volunteersPath, in, &out)
	return out, err
}

// UpdateVolunteer replaces the writable fields of volunteer id.
func (c *Client) UpdateVolunteer(ctx context.Context, id int, in models.PersonInput) (models.Volunteer, error) {
	var out models.Volunteer
	err := c.put(ctx, itemPath(volunteersPath, id), in, &out)
	return out, err
}

// DeleteVolunteer removes volunteer id.
func (c *Client) DeleteVolunteer(ctx context.Context, id int) error {
	return c.delete(ctx, itemPath(volunteersPath, id))
}
