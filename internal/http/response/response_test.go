package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
)

func respond(t *testing.T, f func(c *gin.Context)) (*httptest.ResponseRecorder, Envelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	f(c)
	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRespondOK(t *testing.T) {
	rec, env := respond(t, func(c *gin.Context) { RespondOK(c, "done", map[string]int{"n": 1}) })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "done", env.Message)
	assert.Empty(t, env.Error)
	assert.NotNil(t, env.Data)
}

func TestRespondError_ClientErrorKeepsCause(t *testing.T) {
	rec, env := respond(t, func(c *gin.Context) {
		RespondError(c, apierr.UpstreamParse(errors.New(`missing field "steps"`)))
	})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, apierr.CodeUpstreamParse, env.Code)
	assert.Equal(t, `missing field "steps"`, env.Error)
	assert.NotEmpty(t, env.Message)
}

func TestRespondError_ServerErrorHidesCause(t *testing.T) {
	rec, env := respond(t, func(c *gin.Context) {
		RespondError(c, errors.New("pq: relation plant does not exist"))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", env.Message)
	assert.Empty(t, env.Error)
	assert.Nil(t, env.Data)
}

func TestRespondError_UpstreamAuthHidesProviderMessage(t *testing.T) {
	var recorded []*gin.Error
	rec, env := respond(t, func(c *gin.Context) {
		RespondError(c, apierr.UpstreamAuth(errors.New("API key sk-live-123 is revoked")))
		recorded = c.Errors
	})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, apierr.CodeUpstreamAuth, env.Code)
	assert.Empty(t, env.Error)
	assert.NotContains(t, rec.Body.String(), "sk-live-123")
	require.Len(t, recorded, 1)
	assert.Contains(t, recorded[0].Error(), "revoked")
}
