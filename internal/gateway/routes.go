package gateway

import (
	"context"

	"food_routing_admin/internal/models"
)

const routesPath = "/routes/"

// ListRoutes fetches every route.
func (c *Client) ListRoutes(ctx context.Context) ([]models.Route, error) {
	return listAll[models.Route](ctx, c, routesPath)
}

// CreateRoute posts a new route. When in.RouteNumber is nil the back end assigns one.
func (c *Client) CreateRoute(ctx context.Context, in models.RouteInput) (models.Route, error) {
	var out models.Route
	err := c.post(ctx, routesPath, in, &out)
	return out, err
}

// UpdateRoute replaces the writable fields of a route. The route number is
// addressed by the path and never sent in the body.
func (c *Client) UpdateRoute(ctx context.Context, routeNumber int, in models.RouteInput) (models.Route, error) {
	in.RouteNumber = nil
	var out models.Route
	err := c.put(ctx, itemPath(routesPath, routeNumber), in, &out)
	return out, err
}

// DeleteRoute removes a route.
func (c *Client) DeleteRoute(ctx context.Context, routeNumber int) error {
	return c.delete(ctx, itemPath(routesPath, routeNumber))
}
