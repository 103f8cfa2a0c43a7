package app

import (
	httpapi "github.com/yungbote/sprout-backend/internal/http"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func wireServer(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *httpapi.Server {
	return httpapi.NewServer(cfg.Addr(), httpapi.RouterConfig{
		Log:            log,
		Metrics:        metrics,
		ServiceName:    cfg.OtelServiceName,
		CORSOrigins:    cfg.CORSOrigins(),
		TracingEnabled: cfg.OtelEnabled,
		AuthMiddleware: middleware.Auth,
		PlantHandler:   handlers.Plant,
		UserHandler:    handlers.User,
		HealthHandler:  handlers.Health,
	})
}
