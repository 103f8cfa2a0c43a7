package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	httpH "github.com/yungbote/sprout-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/data/repos"
	"github.com/yungbote/sprout-backend/internal/data/repos/testutil"
	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/domain/user"
	"github.com/yungbote/sprout-backend/internal/modules/garden/prompts"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/services"
)

type envelope struct {
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
}

type testAPI struct {
	engine *gin.Engine
	db     *gorm.DB
}

func newTestAPI(t *testing.T, reply string) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.DB(t)
	log := testutil.Logger(t)
	set := repos.NewSet(db, log)
	cat, err := prompts.Default()
	require.NoError(t, err)

	gen := llm.GeneratorFunc(func(context.Context, llm.Request) (string, error) { return reply, nil })
	plantSvc, err := services.NewPlantService(services.PlantServiceDeps{
		DB: db, Log: log, Repos: set, Generator: gen, Prompts: cat,
	})
	require.NoError(t, err)

	engine := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        observability.Init(true),
		AuthMiddleware: httpMW.NewAuthMiddleware(log, services.NewAuthService(log, services.NewDevVerifier())),
		PlantHandler:   httpH.NewPlantHandler(plantSvc),
		UserHandler:    httpH.NewUserHandler(services.NewUserService(log, set.User, set.UserPlant)),
		HealthHandler:  httpH.NewHealthHandler(nil),
	})
	return &testAPI{engine: engine, db: db}
}

func (a *testAPI) do(t *testing.T, method, path, subject string, body any) (int, envelope) {
	t.Helper()
	var rdr *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	} else {
		rdr = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	if subject != "" {
		req.Header.Set("Authorization", "Bearer "+subject)
	}
	rec := httptest.NewRecorder()
	a.engine.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec.Code, env
}

const stubTwoPlants = "```json\n[" +
	`{"name":"Basil","description":"Herb","successRate":"80%","difficultyLevel":"Easy","steps":[{"title":"Sow","description":"Sow seeds","estimatedTime":"1 day"}]},` +
	`{"name":"Mint","description":"Herb","successRate":"85%","difficultyLevel":"Easy","steps":[{"title":"Plant","description":"Plant runner","estimatedTime":"1 day"},{"title":"Water","description":"Keep moist","estimatedTime":"ongoing"}]}` +
	"]\n```"

func TestRecommendationsEndToEnd(t *testing.T) {
	api := newTestAPI(t, stubTwoPlants)

	status, env := api.do(t, http.MethodPost, "/api/plants/recommendations", "grower-1",
		map[string]any{"location": "balcony", "sunlightHours": 4, "availableSpace": "small"})
	require.Equal(t, http.StatusOK, status, env.Message)

	var plants []plant.Plant
	require.NoError(t, json.Unmarshal(env.Data, &plants))
	require.Len(t, plants, 2)
	assert.Equal(t, "Mint", plants[0].Name)
	assert.Equal(t, 2, plants[0].Steps[1].ID)

	var u user.User
	require.NoError(t, api.db.Where("external_identity_id = ?", "grower-1").Take(&u).Error)
	var links []user.UserPlant
	require.NoError(t, api.db.Where("user_id = ?", u.ID).Order("position").Find(&links).Error)
	require.Len(t, links, 2)
	assert.Equal(t, plants[0].ID, links[0].PlantID)
	assert.Equal(t, plants[1].ID, links[1].PlantID)

	status, env = api.do(t, http.MethodGet, "/api/me", "grower-1", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(env.Data), `"plantCount":2`)
}

func TestRecommendations_BadBody(t *testing.T) {
	api := newTestAPI(t, stubTwoPlants)

	status, env := api.do(t, http.MethodPost, "/api/plants/recommendations", "grower-1",
		map[string]any{"location": "balcony", "availableSpace": "small"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "sunlightHours is required", env.Message)

	status, _ = api.do(t, http.MethodPost, "/api/plants/recommendations", "grower-1", "not an object")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCompleteStep_NonOwnerIsForbiddenAndNothingChanges(t *testing.T) {
	api := newTestAPI(t, "{}")
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, api.db, "owner")
	testutil.SeedUser(t, ctx, api.db, "intruder")
	p := testutil.SeedOwnedPlant(t, ctx, api.db, owner, "Basil")

	status, env := api.do(t, http.MethodPatch, "/api/plants/"+p.ID.String()+"/steps/1/complete", "intruder", nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", env.Code)

	var stored plant.Plant
	require.NoError(t, api.db.Where("id = ?", p.ID).Take(&stored).Error)
	assert.False(t, stored.Steps[0].IsCompleted)

	status, env = api.do(t, http.MethodPatch, "/api/plants/"+p.ID.String()+"/steps/1/complete", "owner", nil)
	require.Equal(t, http.StatusOK, status)
	var updated plant.Plant
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.True(t, updated.Steps[0].IsCompleted)
}

func TestCustomPlant_RejectionPersistsNothing(t *testing.T) {
	api := newTestAPI(t, `{"isValid": false, "reason": "Moonflower sprouts are not a real plant"}`)

	status, env := api.do(t, http.MethodPost, "/api/plants/custom", "grower-1", map[string]any{
		"location": "windowsill", "sunlightHours": 3, "availableSpace": "tiny", "plantName": "moonflower sprouts",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Moonflower sprouts are not a real plant", env.Message)

	var n int64
	require.NoError(t, api.db.Model(&plant.Plant{}).Count(&n).Error)
	assert.Zero(t, n)
}

func TestPlantRoutes(t *testing.T) {
	api := newTestAPI(t, "{}")
	ctx := context.Background()
	owner := testutil.SeedUser(t, ctx, api.db, "owner")
	p := testutil.SeedOwnedPlant(t, ctx, api.db, owner, "Basil")
	base := "/api/plants/" + p.ID.String()

	status, _ := api.do(t, http.MethodGet, base, "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = api.do(t, http.MethodGet, "/api/plants/not-a-uuid", "owner", nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, env := api.do(t, http.MethodPatch, base+"/activate", "owner", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Plant activated", env.Message)

	status, env = api.do(t, http.MethodGet, "/api/plants/active", "owner", nil)
	require.Equal(t, http.StatusOK, status)
	var active []plant.Plant
	require.NoError(t, json.Unmarshal(env.Data, &active))
	require.Len(t, active, 1)

	status, env = api.do(t, http.MethodGet, base+"/diagnoses", "owner", nil)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(env.Data))

	status, _ = api.do(t, http.MethodPost, base+"/diagnose", "owner", map[string]string{"imageBase64": ""})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestHealthAndMetrics(t *testing.T) {
	api := newTestAPI(t, "{}")

	status, env := api.do(t, http.MethodGet, "/healthcheck", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", env.Message)

	rec := httptest.NewRecorder()
	api.engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sprout_api_requests_total{method="GET",route="/healthcheck",status="200"}`)
}
