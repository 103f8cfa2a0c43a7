package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/sprout-backend/internal/observability"
	"github.com/yungbote/sprout-backend/internal/platform/gcp"
	"github.com/yungbote/sprout-backend/internal/platform/gemini"
	"github.com/yungbote/sprout-backend/internal/platform/llm"
	"github.com/yungbote/sprout-backend/internal/platform/localmedia"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
	"github.com/yungbote/sprout-backend/internal/platform/openai"
	"github.com/yungbote/sprout-backend/internal/realtime/bus"
)

type Clients struct {
	Generator      llm.Generator
	ServiceAccount *gcp.ServiceAccount
	Detector       gcp.PlantDetector
	Archive        gcp.ImageArchive
	Bus            bus.Bus
}

type closer interface{ Close() error }

func wireClients(ctx context.Context, log *logger.Logger, cfg Config, metrics *observability.Metrics) (Clients, error) {
	log.Info("Wiring clients...")
	var c Clients

	gen, err := newGenerator(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}
	c.Generator = llm.Traced(gen, log, metrics)

	if strings.TrimSpace(cfg.FirebaseServiceAccount) != "" {
		sa, err := gcp.ParseServiceAccount(cfg.FirebaseServiceAccount)
		if err != nil {
			return Clients{}, fmt.Errorf("parse FIREBASE_SERVICE_ACCOUNT: %w", err)
		}
		c.ServiceAccount = sa
	}
	opts := gcp.ClientOptions(c.ServiceAccount)

	if cfg.VisionEnabled {
		d, err := gcp.NewPlantDetector(ctx, log, opts...)
		if err != nil {
			return Clients{}, fmt.Errorf("init vision client: %w", err)
		}
		c.Detector = d
	}

	if bucket := strings.TrimSpace(cfg.DiagnosisBucket); bucket != "" {
		a, err := gcp.NewImageArchive(ctx, log, bucket, opts...)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init storage client: %w", err)
		}
		c.Archive = a
	} else if dir := strings.TrimSpace(cfg.MediaDir); dir != "" {
		a, err := localmedia.NewArchive(dir, log)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init media directory: %w", err)
		}
		c.Archive = a
	}

	if strings.TrimSpace(cfg.RedisAddr) != "" {
		b, err := bus.NewRedisBus(bus.RedisConfig{Addr: cfg.RedisAddr, Channel: cfg.RedisChannel}, log)
		if err != nil {
			c.Close()
			return Clients{}, fmt.Errorf("init redis bus: %w", err)
		}
		c.Bus = b
	} else {
		c.Bus = bus.NewMemoryBus()
	}
	return c, nil
}

func newGenerator(ctx context.Context, log *logger.Logger, cfg Config) (llm.Generator, error) {
	switch cfg.AIProvider {
	case ProviderOpenAI:
		g, err := openai.NewClient(openai.Config{
			APIKey:  cfg.AIAPIKey,
			BaseURL: cfg.AIBaseURL,
			Model:   cfg.AIModel,
			Timeout: cfg.AITimeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init openai client: %w", err)
		}
		return g, nil
	default:
		g, err := gemini.NewClient(ctx, gemini.Config{
			APIKey:  cfg.AIAPIKey,
			Model:   cfg.AIModel,
			BaseURL: cfg.AIBaseURL,
			Timeout: cfg.AITimeout,
		}, log)
		if err != nil {
			return nil, fmt.Errorf("init gemini client: %w", err)
		}
		return g, nil
	}
}

func (c *Clients) Close() {
	if c == nil {
		return
	}
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
	if cl, ok := c.Archive.(closer); ok {
		_ = cl.Close()
	}
	if cl, ok := c.Detector.(closer); ok {
		_ = cl.Close()
	}
}
