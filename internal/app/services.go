package app

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/data/repos"
	"github.com/yungbote/sprout-backend/internal/modules/garden/prompts"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/services"
)

type Services struct {
	Auth  services.AuthService
	User  services.UserService
	Plant services.PlantService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, reposet repos.Set, clients Clients, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	verifier, err := newVerifier(log, cfg, clients)
	if err != nil {
		return Services{}, err
	}

	catalog, err := prompts.Default()
	if err != nil {
		return Services{}, fmt.Errorf("load prompt catalog: %w", err)
	}

	plantService, err := services.NewPlantService(services.PlantServiceDeps{
		DB:                  db,
		Log:                 log,
		Repos:               reposet,
		Generator:           clients.Generator,
		Prompts:             catalog,
		Detector:            clients.Detector,
		Archive:             clients.Archive,
		Events:              clients.Bus,
		Metrics:             metrics,
		RecommendationLimit: cfg.RecommendationLimit,
		RemediationPolicy:   cfg.Policy,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init plant service: %w", err)
	}

	return Services{
		Auth:  services.NewAuthService(log, verifier),
		User:  services.NewUserService(log, reposet.User, reposet.UserPlant),
		Plant: plantService,
	}, nil
}

func newVerifier(log *logger.Logger, cfg Config, clients Clients) (services.TokenVerifier, error) {
	if cfg.AuthMode == AuthModeDev {
		log.Warn("AUTH_MODE=dev: bearer tokens are trusted without verification")
		return services.NewDevVerifier(), nil
	}
	projectID := strings.TrimSpace(cfg.FirebaseProjectID)
	if projectID == "" && clients.ServiceAccount != nil {
		projectID = clients.ServiceAccount.ProjectID
	}
	v, err := services.NewFirebaseVerifier(&http.Client{Timeout: 10 * time.Second}, projectID, "")
	if err != nil {
		return nil, fmt.Errorf("init token verifier: %w", err)
	}
	return v, nil
}
