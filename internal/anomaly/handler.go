package anomaly

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

type Handler struct {
	scanner *Scanner
	flags   *FlagService
	repo    FlagRepository
	logger  *zap.Logger
}

func NewHandler(scanner *Scanner, flags *FlagService, repo FlagRepository, logger *zap.Logger) *Handler {
	return &Handler{scanner: scanner, flags: flags, repo: repo, logger: logger}
}

// Scan handles GET /anomaly/scan?region=
func (h *Handler) Scan(c *gin.Context) {
	report, err := h.scanner.Scan(c.Request.Context(), c.Query("region"))
	if err != nil {
		h.logger.Error("batch scan failed", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

// ListFlags handles GET /anomaly/flags?limit=
func (h *Handler) ListFlags(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	flags, err := h.repo.ListUnresolvedFlags(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list flags", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list flags"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"flags": flags, "count": len(flags)})
}

// ResolveFlag handles POST /anomaly/flags/:id/resolve. Admin only.
func (h *Handler) ResolveFlag(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid flag id"})
		return
	}

	if err := h.flags.ResolveFlag(c.Request.Context(), id); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "resolved"})
}
