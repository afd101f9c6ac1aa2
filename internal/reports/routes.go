package reports

import "github.com/gin-gonic/gin"

// RegisterRoutes registers export routes
func RegisterRoutes(rg *gin.RouterGroup, handler *Handler) {
	rg.GET("/participants/:id/credit-report/export", handler.ExportCreditReport)
	rg.GET("/anomaly/scan/export", handler.ExportScanReport)
}
