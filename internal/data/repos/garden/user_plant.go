package garden

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/domain/user"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type UserPlantRepo interface {
	Append(dbc dbctx.Context, userID uuid.UUID, plantIDs []uuid.UUID) error
	HasPlant(dbc dbctx.Context, externalID string, plantID uuid.UUID) (bool, error)
	PlantIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error)
}

type userPlantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserPlantRepo(db *gorm.DB, baseLog *logger.Logger) UserPlantRepo {
	return &userPlantRepo{
		db:  db,
		log: baseLog.With("repo", "UserPlantRepo"),
	}
}

// Append adds plantIDs to the end of the user's reference set, keeping their order.
func (r *userPlantRepo) Append(dbc dbctx.Context, userID uuid.UUID, plantIDs []uuid.UUID) error {
	if len(plantIDs) == 0 {
		return nil
	}
	q := dbc.DB(r.db)

	var next int64
	if err := q.Model(&user.UserPlant{}).
		Where("user_id = ?", userID).
		Select("COALESCE(MAX(position) + 1, 0)").
		Scan(&next).Error; err != nil {
		return err
	}

	rows := make([]*user.UserPlant, len(plantIDs))
	for i, id := range plantIDs {
		rows[i] = &user.UserPlant{UserID: userID, PlantID: id, Position: int(next) + i}
	}
	return q.Create(&rows).Error
}

// HasPlant is the ownership lookup: one indexed join on the principal's subject.
func (r *userPlantRepo) HasPlant(dbc dbctx.Context, externalID string, plantID uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&user.UserPlant{}).
		Joins("JOIN user_profile ON user_profile.id = user_plant.user_id").
		Where("user_profile.external_identity_id = ? AND user_plant.plant_id = ?", externalID, plantID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *userPlantRepo) PlantIDs(dbc dbctx.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := dbc.DB(r.db).
		Model(&user.UserPlant{}).
		Where("user_id = ?", userID).
		Order("position ASC").
		Pluck("plant_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}
