package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/domain/user"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, externalID string) *user.User {
	tb.Helper()
	u := &user.User{ExternalIdentityID: externalID}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

// SeedPlant creates a plant with three pending steps numbered 1..3.
func SeedPlant(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *plant.Plant {
	tb.Helper()
	p := &plant.Plant{
		Name:            name,
		Description:     name + " description",
		SuccessRate:     "80%",
		DifficultyLevel: "Easy",
		IsValid:         true,
		Source:          plant.SourceRecommendation,
		Steps: []plant.GrowthStep{
			{ID: 1, Title: "Prepare", Description: "Prepare the soil", EstimatedTime: "1 day"},
			{ID: 2, Title: "Sow", Description: "Sow the seeds", EstimatedTime: "1 day"},
			{ID: 3, Title: "Water", Description: "Water daily", EstimatedTime: "2 weeks"},
		},
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plant: %v", err)
	}
	return p
}

// SeedOwnedPlant seeds a plant and links it to u at the next position.
func SeedOwnedPlant(tb testing.TB, ctx context.Context, tx *gorm.DB, u *user.User, name string) *plant.Plant {
	tb.Helper()
	p := SeedPlant(tb, ctx, tx, name)
	var count int64
	if err := tx.WithContext(ctx).Model(&user.UserPlant{}).Where("user_id = ?", u.ID).Count(&count).Error; err != nil {
		tb.Fatalf("count user plants: %v", err)
	}
	link := &user.UserPlant{UserID: u.ID, PlantID: p.ID, Position: int(count)}
	if err := tx.WithContext(ctx).Create(link).Error; err != nil {
		tb.Fatalf("seed user plant: %v", err)
	}
	return p
}
