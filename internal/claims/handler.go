package claims

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fairwork/labor-trust/labor-trust-backend/pkg/apperr"
	"fairwork/labor-trust/labor-trust-backend/pkg/geospatial"
)

type Handler struct {
	service Service
	logger  *zap.Logger
}

func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

type submitClaimRequest struct {
	ParticipantID   string          `json:"participant_id" binding:"required"`
	ClaimDate       string          `json:"claim_date" binding:"required"`
	HoursWorked     float64         `json:"hours_worked" binding:"required"`
	TaskDescription string          `json:"task_description"`
	Geolocation     json.RawMessage `json:"geolocation"`
}

// SubmitClaim handles POST /claims
func (h *Handler) SubmitClaim(c *gin.Context) {
	var req submitClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participantID, err := uuid.Parse(req.ParticipantID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}
	claimDate, err := time.Parse("2006-01-02", req.ClaimDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "claim_date must be YYYY-MM-DD"})
		return
	}
	if len(req.Geolocation) > 0 {
		if _, err := geospatial.ValidateGeoJSON(string(req.Geolocation)); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "geolocation is not valid GeoJSON"})
			return
		}
	}

	claim, err := h.service.Submit(c.Request.Context(), SubmitRequest{
		ParticipantID:   participantID,
		ClaimDate:       claimDate,
		HoursWorked:     req.HoursWorked,
		TaskDescription: req.TaskDescription,
		Geolocation:     datatypes.JSON(req.Geolocation),
	})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindStorage {
			h.logger.Error("failed to submit claim", zap.Error(err))
		}
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, claim)
}

// GetClaim handles GET /claims/:id
func (h *Handler) GetClaim(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid claim id"})
		return
	}

	claim, err := h.service.GetClaim(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, claim)
}

// ListParticipantClaims handles GET /participants/:id/claims?limit=
func (h *Handler) ListParticipantClaims(c *gin.Context) {
	participantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	list, err := h.service.ListByParticipant(c.Request.Context(), participantID, limit)
	if err != nil {
		h.logger.Error("failed to list claims", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"claims": list, "count": len(list)})
}
