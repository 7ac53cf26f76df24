package routes

import (
	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/controllers"
)

func ViewRoutes(r *gin.Engine) {
	view := r.Group("/api")
	{
		view.GET("/view", controllers.RenderView)
		view.PUT("/view/filter", controllers.ChangeFilter)
		view.POST("/view/sort/:column", controllers.ClickSort)
		view.POST("/refresh", controllers.RefreshAll)
	}
}
