// Package handler contains HTTP request handlers.
// In Gin, a handler is any function with signature func(*gin.Context).
// No controller classes, just functions grouped by file.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// EncoderProbe reports whether video export can run.
type EncoderProbe interface {
	Available() error
}

// HealthHandler handles health check requests.
type HealthHandler struct {
	encoder EncoderProbe
}

// NewHealthHandler creates a new HealthHandler. encoder may be nil.
func NewHealthHandler(encoder EncoderProbe) *HealthHandler {
	return &HealthHandler{encoder: encoder}
}

// Healthz responds with service status. A missing video encoder degrades
// the service, it does not make it unhealthy: archives still work.
func (h *HealthHandler) Healthz(c *gin.Context) {
	videoStatus := "ok"
	if h.encoder == nil {
		videoStatus = "disabled"
	} else if err := h.encoder.Available(); err != nil {
		videoStatus = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "ficha-service",
		"video":   videoStatus,
	})
}
