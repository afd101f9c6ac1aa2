package verification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
)

type Handler struct {
	engine *Engine
	logger *zap.Logger
}

func NewHandler(engine *Engine, logger *zap.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

type attestRequest struct {
	VerifierID      string   `json:"verifier_id" binding:"required"`
	ProximityMeters *float64 `json:"proximity_meters"`
	VerifierLon     *float64 `json:"verifier_lon"`
	VerifierLat     *float64 `json:"verifier_lat"`
}

// Attest handles POST /claims/:id/attest
func (h *Handler) Attest(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	var req attestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	verifierID, err := uuid.Parse(req.VerifierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verifier id"})
		return
	}

	result, err := h.engine.Attest(c.Request.Context(), AttestRequest{
		ClaimID:         claimID,
		VerifierID:      verifierID,
		ProximityMeters: req.ProximityMeters,
		VerifierLon:     req.VerifierLon,
		VerifierLat:     req.VerifierLat,
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindStorage {
			h.logger.Error("attestation failed", zap.Error(err))
		}
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Reject handles POST /claims/:id/reject. Admin only.
func (h *Handler) Reject(c *gin.Context) {
	claimID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	if err := h.engine.Reject(c.Request.Context(), claimID); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "rejected"})
}

type slashRequest struct {
	VerifierID string `json:"verifier_id" binding:"required"`
	ClaimID    string `json:"claim_id" binding:"required"`
}

// Slash handles POST /slash. Admin only.
func (h *Handler) Slash(c *gin.Context) {
	var req slashRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	verifierID, err := uuid.Parse(req.VerifierID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verifier id"})
		return
	}
	claimID, err := uuid.Parse(req.ClaimID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	if err := h.engine.Slash(c.Request.Context(), verifierID, claimID); err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "slashed"})
}
