package plant

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	SourceRecommendation = "recommendation"
	SourceCustom         = "custom"
)

// GrowthStep is one unit of work in a plant's care timeline. ID is the step's
// sequence position at creation; IsCompleted only ever goes from false to true.
type GrowthStep struct {
	ID            int    `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	EstimatedTime string `json:"estimatedTime"`
	IsCompleted   bool   `json:"isCompleted"`
}

// Plant is a persisted plant-growing plan. Steps live in a JSON column and are
// decoded on load; survey context is only set for custom requests.
type Plant struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string         `gorm:"not null;column:name" json:"name"`
	Description     string         `gorm:"not null;column:description" json:"description"`
	SuccessRate     string         `gorm:"not null;column:success_rate" json:"successRate"`
	DifficultyLevel string         `gorm:"not null;column:difficulty_level" json:"difficultyLevel"`
	StepsJSON       datatypes.JSON `gorm:"column:steps;not null" json:"-"`
	Steps           []GrowthStep   `gorm:"-" json:"steps"`
	IsValid         bool           `gorm:"not null;column:is_valid" json:"isValid"`
	IsActive        bool           `gorm:"not null;index;column:is_active" json:"isActive"`
	Source          string         `gorm:"not null;column:source" json:"source"`

	Location       *string  `gorm:"column:location" json:"location,omitempty"`
	SunlightHours  *float64 `gorm:"column:sunlight_hours" json:"sunlightHours,omitempty"`
	AvailableSpace *string  `gorm:"column:available_space" json:"availableSpace,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (Plant) TableName() string { return "plant" }

func (p *Plant) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return p.EncodeSteps()
}

func (p *Plant) AfterFind(tx *gorm.DB) error {
	return p.DecodeSteps()
}

// EncodeSteps copies Steps into the JSON column.
func (p *Plant) EncodeSteps() error {
	steps := p.Steps
	if steps == nil {
		steps = []GrowthStep{}
	}
	raw, err := json.Marshal(steps)
	if err != nil {
		return fmt.Errorf("encode steps: %w", err)
	}
	p.StepsJSON = datatypes.JSON(raw)
	return nil
}

// DecodeSteps fills Steps from the JSON column.
func (p *Plant) DecodeSteps() error {
	if len(p.StepsJSON) == 0 {
		p.Steps = []GrowthStep{}
		return nil
	}
	var steps []GrowthStep
	if err := json.Unmarshal(p.StepsJSON, &steps); err != nil {
		return fmt.Errorf("decode steps for plant %s: %w", p.ID, err)
	}
	if steps == nil {
		steps = []GrowthStep{}
	}
	p.Steps = steps
	return nil
}
