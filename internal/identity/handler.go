package identity

import (
	"net/http"

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

type registerParticipantRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Sector   string `json:"sector"`
}

// RegisterParticipant handles POST /participants
func (h *Handler) RegisterParticipant(c *gin.Context) {
	var req registerParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	participant, err := h.service.Register(c.Request.Context(), RegisterRequest{
		Name:     req.Name,
		Location: req.Location,
		Sector:   req.Sector,
	})
	if err != nil {
		h.logger.Error("failed to register participant", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, participant)
}

// GetParticipant handles GET /participants/:id
func (h *Handler) GetParticipant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid participant id"})
		return
	}

	participant, err := h.service.GetParticipant(c.Request.Context(), id)
	if err != nil {
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, participant)
}

// ListParticipants handles GET /participants?location=
func (h *Handler) ListParticipants(c *gin.Context) {
	list, err := h.service.ListParticipants(c.Request.Context(), c.Query("location"))
	if err != nil {
		h.logger.Error("failed to list participants", zap.Error(err))
		c.JSON(apperr.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"participants": list, "count": len(list)})
}
