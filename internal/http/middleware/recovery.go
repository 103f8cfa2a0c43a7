package middleware

import (
	"fmt"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/http/response"
	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

// Recover turns a handler panic into a 500 envelope.
func Recover(log *logger.Logger) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		if log != nil {
			log.Error("panic recovered", "path", c.Request.URL.Path, "panic", fmt.Sprint(recovered))
		}
		response.Abort(c, apierr.Internal("internal server error", fmt.Errorf("panic: %v", recovered)))
	})
}
