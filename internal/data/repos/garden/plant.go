package garden

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type PlantRepo interface {
	Create(dbc dbctx.Context, plants []*plant.Plant) ([]*plant.Plant, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*plant.Plant, error)
	GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*plant.Plant, error)
	Exists(dbc dbctx.Context, id uuid.UUID) (bool, error)
	ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*plant.Plant, error)
	UpdateSteps(dbc dbctx.Context, id uuid.UUID, steps []plant.GrowthStep) error
	SetActive(dbc dbctx.Context, id uuid.UUID, active bool) error
}

type plantRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPlantRepo(db *gorm.DB, baseLog *logger.Logger) PlantRepo {
	return &plantRepo{
		db:  db,
		log: baseLog.With("repo", "PlantRepo"),
	}
}

func (r *plantRepo) Create(dbc dbctx.Context, plants []*plant.Plant) ([]*plant.Plant, error) {
	if len(plants) == 0 {
		return []*plant.Plant{}, nil
	}
	if err := dbc.DB(r.db).Create(&plants).Error; err != nil {
		return nil, err
	}
	return plants, nil
}

// GetByID returns nil without error when the plant does not exist.
func (r *plantRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*plant.Plant, error) {
	return r.get(dbc.DB(r.db), id)
}

// GetByIDForUpdate re-reads a plant inside a transaction, taking a row lock
// where the dialect supports one.
func (r *plantRepo) GetByIDForUpdate(dbc dbctx.Context, id uuid.UUID) (*plant.Plant, error) {
	q := dbc.DB(r.db)
	if q.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return r.get(q, id)
}

func (r *plantRepo) get(q *gorm.DB, id uuid.UUID) (*plant.Plant, error) {
	var p plant.Plant
	err := q.Where("id = ?", id).Take(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plantRepo) Exists(dbc dbctx.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := dbc.DB(r.db).
		Model(&plant.Plant{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// ListByUser returns the user's plants in reference-set order.
func (r *plantRepo) ListByUser(dbc dbctx.Context, userID uuid.UUID, activeOnly bool) ([]*plant.Plant, error) {
	var results []*plant.Plant
	q := dbc.DB(r.db).
		Model(&plant.Plant{}).
		Joins("JOIN user_plant ON user_plant.plant_id = plant.id").
		Where("user_plant.user_id = ?", userID)
	if activeOnly {
		q = q.Where("plant.is_active = ?", true)
	}
	if err := q.Order("user_plant.position ASC").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *plantRepo) UpdateSteps(dbc dbctx.Context, id uuid.UUID, steps []plant.GrowthStep) error {
	holder := plant.Plant{ID: id, Steps: steps}
	if err := holder.EncodeSteps(); err != nil {
		return err
	}
	return dbc.DB(r.db).
		Model(&plant.Plant{}).
		Where("id = ?", id).
		Update("steps", holder.StepsJSON).Error
}

func (r *plantRepo) SetActive(dbc dbctx.Context, id uuid.UUID, active bool) error {
	return dbc.DB(r.db).
		Model(&plant.Plant{}).
		Where("id = ?", id).
		Update("is_active", active).Error
}
