package gateway

import (
	"context"

	"food_routing_admin/internal/models"
)

const driversPath = "/drivers/"

// ListDrivers fetches every driver.
func (c *Client) ListDrivers(ctx context.Context) ([]models.Driver, error) {
	return listAll[models.Driver](ctx, c, driversPath)
}

// CreateDriver posts a new driver and returns it with its server-assigned id.
func (c *Client) CreateDriver(ctx context.Context, in models.PersonInput) (models.Driver, error) {
	var out models.Driver
	err := c.post(ctx, driversPath, in, &out)
	return out, err
}

// UpdateDriver replaces the writable fields of driver id.
func (c *Client) UpdateDriver(ctx context.Context, id int, in models.PersonInput) (models.Driver, error) {
	var out models.Driver
	err := c.put(ctx, itemPath(driversPath, id), in, &out)
	return out, err
}

// DeleteDriver removes driver id.
func (c *Client) DeleteDriver(ctx context.Context, id int) error {
	return c.delete(ctx, itemPath(driversPath, id))
}
