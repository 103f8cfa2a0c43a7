package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/domain/user"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		// Identity + survey profile
		&user.User{},
		&user.UserPlant{},

		// Plans
		&plant.Plant{},
		&plant.Diagnosis{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return ensureIndexes(db)
}

func ensureIndexes(db *gorm.DB) error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS idx_user_plant_user_position ON user_plant (user_id, position)`,
		`CREATE INDEX IF NOT EXISTS idx_plant_diagnosis_plant_created ON plant_diagnosis (plant_id, created_at)`,
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("ensure index: %w", err)
		}
	}
	return nil
}
