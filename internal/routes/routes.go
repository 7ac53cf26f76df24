package routes

import (
	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/controllers"
)

// SetupRouter builds the engine. Handlers act on the console passed to
// controllers.Bind.
func SetupRouter(middleware ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware...)

	r.GET("/healthz", controllers.Healthz)
	ViewRoutes(r)
	EntityRoutes(r)
	SessionRoutes(r)
	WebSocketRoutes(r)

	return r
}
