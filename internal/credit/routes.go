package credit

import "github.com/gin-gonic/gin"

// RegisterRoutes registers credit scoring routes
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.GET("/participants/:id/credit-report", handler.GenerateReport)
	rg.GET("/participants/:id/credit-reports", handler.ListReports)
}
