package credit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// GenerateReport handles GET /participants/:id/credit-report
func (h *Handler) GenerateReport(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	report, err := h.service.GenerateReport(c.Request.Context(), participantID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindStorage {
			h.logger.Error("failed to generate credit report", zap.Error(err))
		}
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListReports handles GET /participants/:id/credit-reports?limit=
func (h *Handler) ListReports(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	reports, err := h.service.ListReports(c.Request.Context(), participantID, limit)
	if err != nil {
		h.logger.Error("failed to list credit reports", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports, "count": len(reports)})
}
