package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterRoutes exposes the reviewer feed endpoint
func RegisterRoutes(r *gin.Engine, manager *Manager, logger *zap.Logger) {
	r.GET("/ws/feed", func(c *gin.Context) {
		if _, err := manager.HandleConnection(c.Writer, c.Request); err != nil {
			logger.Warn("websocket upgrade failed", zap.Error(err))
			c.JSON(http.StatusBadRequest, gin.H{"error": "websocket upgrade failed"})
		}
	})
}
