package routes

import (
	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/controllers"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		ws.GET("/view", controllers.HandleViewWebSocket)
	}
}
