package db

import (
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

func TestNew_SQLiteMigrates(t *testing.T) {
	svc, err := New(Config{
		Driver: DriverSQLite,
		DSN:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		Silent: true,
	}, logger.Nop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = svc.Close() })

	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	// Running twice must be harmless.
	if err := AutoMigrateAll(svc.DB()); err != nil {
		t.Fatalf("AutoMigrateAll again: %v", err)
	}

	p := &plant.Plant{Name: "Basil", Description: "d", SuccessRate: "80%", DifficultyLevel: "Easy", Source: plant.SourceRecommendation,
		Steps: []plant.GrowthStep{{ID: 1, Title: "Sow", Description: "d", EstimatedTime: "1 day"}}}
	if err := svc.DB().Create(p).Error; err != nil {
		t.Fatalf("create plant: %v", err)
	}
	var got plant.Plant
	if err := svc.DB().First(&got, "id = ?", p.ID).Error; err != nil {
		t.Fatalf("load plant: %v", err)
	}
	if len(got.Steps) != 1 || got.Steps[0].Title != "Sow" {
		t.Fatalf("steps not round-tripped: %+v", got.Steps)
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New(Config{Driver: "oracle"}, logger.Nop()); err == nil {
		t.Fatalf("expected error for unknown driver")
	}
	if _, err := New(Config{Driver: DriverPostgres}, logger.Nop()); err == nil {
		t.Fatalf("expected error for missing postgres dsn")
	}
}
