package app

import (
	"context"

	httpH "github.com/yungbote/sprout-backend/internal/http/handlers"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type Handlers struct {
	Health *httpH.HealthHandler
	User   *httpH.UserHandler
	Plant  *httpH.PlantHandler
}

func wireHandlers(log *logger.Logger, services Services, ping func(ctx context.Context) error) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health: httpH.NewHealthHandler(ping),
		User:   httpH.NewUserHandler(services.User),
		Plant:  httpH.NewPlantHandler(services.Plant),
	}
}
