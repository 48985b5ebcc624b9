package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports whether the service can reach its database.
type HealthHandler struct {
	ping    func(ctx context.Context) error
	service string
}

// NewHealthHandler creates a health handler. A nil ping always reports healthy.
func NewHealthHandler(ping func(ctx context.Context) error, service string) *HealthHandler {
	return &HealthHandler{ping: ping, service: service}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": h.service,
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": h.service,
	})
}
