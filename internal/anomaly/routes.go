package anomaly

import "github.com/gin-gonic/gin"

// RegisterRoutes registers anomaly routes. Flag resolution is gated by
// the admin middleware.
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler, admin gin.HandlerFunc) {
	anomalyGroup := rg.Group("/anomaly")
	{
		anomalyGroup.GET("/scan", handler.Scan)
		anomalyGroup.GET("/flags", handler.ListFlags)
		anomalyGroup.POST("/flags/:id/resolve", admin, handler.ResolveFlag)
	}
}
