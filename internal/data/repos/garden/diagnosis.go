package garden

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/sprout-backend/internal/domain/plant"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
	"github.com/yungbote/sprout-backend/internal/platform/logger"
)

type DiagnosisRepo interface {
	Create(dbc dbctx.Context, d *plant.Diagnosis) (*plant.Diagnosis, error)
	ListByPlant(dbc dbctx.Context, plantID uuid.UUID) ([]*plant.Diagnosis, error)
	SetImageObjectKey(dbc dbctx.Context, id uuid.UUID, key string) error
}

type diagnosisRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDiagnosisRepo(db *gorm.DB, baseLog *logger.Logger) DiagnosisRepo {
	return &diagnosisRepo{
		db:  db,
		log: baseLog.With("repo", "DiagnosisRepo"),
	}
}

func (r *diagnosisRepo) Create(dbc dbctx.Context, d *plant.Diagnosis) (*plant.Diagnosis, error) {
	if err := dbc.DB(r.db).Create(d).Error; err != nil {
		return nil, err
	}
	return d, nil
}

// ListByPlant returns a plant's diagnoses, newest first.
func (r *diagnosisRepo) ListByPlant(dbc dbctx.Context, plantID uuid.UUID) ([]*plant.Diagnosis, error) {
	var results []*plant.Diagnosis
	if err := dbc.DB(r.db).
		Where("plant_id = ?", plantID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *diagnosisRepo) SetImageObjectKey(dbc dbctx.Context, id uuid.UUID, key string) error {
	return dbc.DB(r.db).
		Model(&plant.Diagnosis{}).
		Where("id = ?", id).
		Update("image_object_key", key).Error
}
