package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/sprout-backend/internal/http/handlers"
	httpMW "github.com/yungbote/sprout-backend/internal/http/middleware"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	TracingEnabled bool

	AuthMiddleware *httpMW.AuthMiddleware
	PlantHandler   *httpH.PlantHandler
	UserHandler    *httpH.UserHandler
	HealthHandler  *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	if cfg.TracingEnabled {
		name := cfg.ServiceName
		if name == "" {
			name = "sprout"
		}
		r.Use(otelgin.Middleware(name))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Recover(cfg.Log))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.Metrics(cfg.Metrics))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapF(cfg.Metrics.WriteHTTP))
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/me", cfg.UserHandler.GetMe)
		}

		// Plants
		if cfg.PlantHandler != nil {
			protected.POST("/plants/recommendations", cfg.PlantHandler.Recommend)
			protected.POST("/plants/custom", cfg.PlantHandler.CreateCustom)
			protected.GET("/plants", cfg.PlantHandler.List)
			protected.GET("/plants/active", cfg.PlantHandler.ListActive)
			protected.GET("/plants/:id", cfg.PlantHandler.Get)
			protected.PATCH("/plants/:id/activate", cfg.PlantHandler.ToggleActive)
			protected.PATCH("/plants/:id/steps/:stepId/complete", cfg.PlantHandler.CompleteStep)
			protected.POST("/plants/:id/diagnose", cfg.PlantHandler.Diagnose)
			protected.GET("/plants/:id/diagnoses", cfg.PlantHandler.ListDiagnoses)
		}
	}

	return r
}
