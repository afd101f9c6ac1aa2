package identity

import "github.com/gin-gonic/gin"

// RegisterRoutes registers participant routes
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	participants := rg.Group("/participants")
	{
		participants.POST("", handler.RegisterParticipant)
		participants.GET("", handler.ListParticipants)
		participants.GET("/:id", handler.GetParticipant)
	}
}
