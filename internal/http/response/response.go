package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func RespondOK(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, Envelope{Message: message, Data: data})
}

// RespondError maps err onto the envelope. Server-side failures only expose a
// generic message; the wrapped cause is kept for 4xx kinds unless it is private.
func RespondError(c *gin.Context, err error) {
	ae := apierr.As(err)
	if ae == nil {
		ae = apierr.Internal("internal server error", nil)
	}
	env := Envelope{Message: ae.Message, Code: ae.Code}
	switch {
	case ae.Status >= http.StatusInternalServerError:
		env.Message = "internal server error"
		_ = c.Error(err)
	case ae.Private:
		_ = c.Error(err)
	case ae.Err != nil:
		env.Error = ae.Err.Error()
	}
	if env.Message == "" {
		env.Message = http.StatusText(ae.Status)
	}
	c.JSON(ae.Status, env)
}

// Abort is RespondError for middleware.
func Abort(c *gin.Context, err error) {
	RespondError(c, err)
	c.Abort()
}
