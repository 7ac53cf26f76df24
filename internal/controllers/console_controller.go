package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"food_routing_admin/internal/console"
	"food_routing_admin/internal/gateway"
	"food_routing_admin/internal/models"
	"food_routing_admin/internal/routeview"
	"food_routing_admin/internal/session"
)

var (
	app *console.Console
	hub *RenderHub
)

// Bind sets the console the handlers act on and the hub that streams its
// frames. It must be called before the router serves requests.
func Bind(c *console.Console, h *RenderHub) {
	app = c
	hub = h
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "revision": app.Store().Revision()})
}

// RenderView returns the current frame.
func RenderView(c *gin.Context) {
	c.JSON(http.StatusOK, app.Render())
}

// ChangeFilter sets the route table filter text.
func ChangeFilter(c *gin.Context) {
	var input struct {
		Query *string `json:"query" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	c.JSON(http.StatusOK, app.OnFilterChange(*input.Query))
}

// ClickSort applies a click on a column header.
func ClickSort(c *gin.Context) {
	frame, err := app.OnSortClick(c.Param("column"))
	if err != nil {
		respondError(c, "ClickSort", err)
		return
	}
	c.JSON(http.StatusOK, frame)
}

// RefreshAll reloads every collection from the back end.
func RefreshAll(c *gin.Context) {
	if err := app.Refresh(c.Request.Context()); err != nil {
		respondError(c, "RefreshAll", err)
		return
	}
	c.JSON(http.StatusOK, app.Render())
}

func ListVolunteers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"volunteers": app.Store().Volunteers()})
}

func ListDrivers(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"drivers": app.Store().Drivers()})
}

// ListRoutes returns every route with its driver name, unfiltered and in
// back end order.
func ListRoutes(c *gin.Context) {
	rows, _ := app.Store().RouteRows()
	c.JSON(http.StatusOK, gin.H{"routes": rows})
}

func DeleteVolunteer(c *gin.Context) { deleteRecord(c, models.KindVolunteer, "id") }

func DeleteDriver(c *gin.Context) { deleteRecord(c, models.KindDriver, "id") }

func DeleteRoute(c *gin.Context) { deleteRecord(c, models.KindRoute, "number") }

func deleteRecord(c *gin.Context, kind models.Kind, param string) {
	key, err := strconv.Atoi(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + param})
		return
	}
	if err := app.OnDeleteRequest(c.Request.Context(), kind, key); err != nil {
		respondError(c, "Delete", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": models.Ref{Kind: kind, Key: key}})
}

// respondError maps console errors onto HTTP statuses.
func respondError(c *gin.Context, op string, err error) {
	status := http.StatusInternalServerError
	body := gin.H{"error": err.Error()}

	var verr *session.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
		body["field"] = verr.Field
	case errors.Is(err, session.ErrStaleWrite),
		errors.Is(err, session.ErrNoSession),
		errors.Is(err, session.ErrSaving):
		status = http.StatusConflict
	case errors.Is(err, session.ErrNotFound), errors.Is(err, gateway.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, gateway.ErrNetwork):
		status = http.StatusBadGateway
	case errors.Is(err, routeview.ErrUnknownColumn):
		status = http.StatusBadRequest
	}

	entry := logrus.WithError(err).WithField("status", status)
	if status >= http.StatusInternalServerError {
		entry.Errorf("%s failed", op)
	} else {
		entry.Warnf("%s rejected", op)
	}
	c.JSON(status, body)
}
