package app

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/data/db"
	httpapi "github.com/yungbote/sprout-backend/internal/http"
	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/realtime/bus"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Clients  Clients
	Services Services
	Server   *httpapi.Server

	dbService    *db.Service
	otelShutdown func(context.Context) error
	cancel       context.CancelFunc
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.OtelServiceName,
		Environment: cfg.OtelEnvironment,
		Version:     Version,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     cfg.OtelHeaders,
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSamplerRatio,
	})
	metrics := observability.Init(cfg.MetricsEnabled)

	dbService, err := openDB(log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	theDB := dbService.DB()

	reposet := wireRepos(theDB, log)

	clients, err := wireClients(ctx, log, cfg, metrics)
	if err != nil {
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	serviceset, err := wireServices(theDB, log, cfg, reposet, clients, metrics)
	if err != nil {
		clients.Close()
		_ = dbService.Close()
		log.Sync()
		return nil, err
	}

	handlerset := wireHandlers(log, serviceset, pingDB(theDB))
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		DB:           theDB,
		Cfg:          cfg,
		Clients:      clients,
		Services:     serviceset,
		Server:       server,
		dbService:    dbService,
		otelShutdown: otelShutdown,
	}, nil
}

// Migrate connects and applies the schema without starting anything else.
func Migrate(cfg Config) error {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()
	dbService, err := openDB(log, cfg)
	if err != nil {
		return err
	}
	defer dbService.Close()
	log.Info("schema migrated")
	return nil
}

func openDB(log *logger.Logger, cfg Config) (*db.Service, error) {
	dbService, err := db.New(db.Config{Driver: cfg.DBDriver, DSN: cfg.DatabaseURL}, log)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}
	if err := db.AutoMigrateAll(dbService.DB()); err != nil {
		_ = dbService.Close()
		return nil, fmt.Errorf("automigrate: %w", err)
	}
	return dbService, nil
}

func pingDB(gdb *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := gdb.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

// Start launches the background event forwarder.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Clients.Bus != nil {
		eventLog := a.Log.With("component", "EventForwarder")
		if err := a.Clients.Bus.StartForwarder(ctx, func(ev bus.Event) {
			eventLog.Debug("plant event", "type", ev.Type, "user_id", ev.UserID, "plant_ids", ev.PlantIDs)
		}); err != nil {
			a.Log.Warn("event forwarder not started", "error", err)
		}
	}
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("listening", "addr", a.Cfg.Addr(), "version", Version)
	return a.Server.Run()
}

func (a *App) Shutdown(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return nil
	}
	return a.Server.Shutdown(ctx)
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	a.Clients.Close()
	if a.otelShutdown != nil {
		if err := a.otelShutdown(context.Background()); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.dbService != nil {
		_ = a.dbService.Close()
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
