package claims

import "github.com/gin-gonic/gin"

// RegisterRoutes registers claim ledger routes
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	claimsGroup := rg.Group("/claims")
	{
		claimsGroup.POST("", handler.SubmitClaim)
		claimsGroup.GET("/:id", handler.GetClaim)
	}
	rg.GET("/participants/:id/claims", handler.ListParticipantClaims)
}
