package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/response"
)

type HealthHandler struct {
	ping func(ctx context.Context) error
}

// NewHealthHandler reports the database through ping when it is non-nil.
func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) HealthCheck(c *gin.Context) {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, response.Envelope{Message: "unhealthy", Error: "database unavailable"})
			return
		}
	}
	response.RespondOK(c, "ok", nil)
}
