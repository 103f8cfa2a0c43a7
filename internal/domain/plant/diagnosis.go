package plant

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Diagnosis records one photo analysis of a plant and the steps it added.
type Diagnosis struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	PlantID        uuid.UUID      `gorm:"type:uuid;not null;index;column:plant_id" json:"plantId"`
	UserID         uuid.UUID      `gorm:"type:uuid;not null;index;column:user_id" json:"-"`
	Summary        string         `gorm:"not null;column:summary" json:"summary"`
	NeedsTreatment bool           `gorm:"not null;column:needs_treatment" json:"needsTreatment"`
	AddedStepIDs   datatypes.JSON `gorm:"column:added_step_ids" json:"addedStepIds"`
	ImageObjectKey string         `gorm:"column:image_object_key" json:"-"`
	CreatedAt      time.Time      `gorm:"not null" json:"createdAt"`
}

func (Diagnosis) TableName() string { return "plant_diagnosis" }

func (d *Diagnosis) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
