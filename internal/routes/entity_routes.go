package routes

import (
	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/controllers"
)

func EntityRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.GET("/volunteers", controllers.ListVolunteers)
		api.DELETE("/volunteers/:id", controllers.DeleteVolunteer)

		api.GET("/drivers", controllers.ListDrivers)
		api.DELETE("/drivers/:id", controllers.DeleteDriver)

		api.GET("/routes", controllers.ListRoutes)
		api.DELETE("/routes/:number", controllers.DeleteRoute)
	}
}
