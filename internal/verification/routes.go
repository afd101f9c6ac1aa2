package verification

import "github.com/gin-gonic/gin"

// RegisterRoutes registers verification routes. The admin middleware
// gates rejection and slashing.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler, admin gin.HandlerFunc) {
	rg.POST("/claims/:id/attest", handler.Attest)
	rg.POST("/claims/:id/reject", admin, handler.Reject)
	rg.POST("/slash", admin, handler.Slash)
}
