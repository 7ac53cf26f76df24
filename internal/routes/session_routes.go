package routes

import (
	"github.com/gin-gonic/gin"

	"food_routing_admin/internal/controllers"
)

func SessionRoutes(r *gin.Engine) {
	s := r.Group("/api/session")
	{
		s.GET("", controllers.GetSession)
		s.POST("/add/:kind", controllers.OpenAdd)
		s.POST("/edit/:kind/:key", controllers.OpenEdit)
		s.PATCH("/draft", controllers.PatchDraft)
		s.POST("/save", controllers.SaveSession)
		s.POST("/cancel", controllers.CancelSession)
	}
}
