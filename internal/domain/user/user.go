package user

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is the local profile for an identity-provider subject. Survey fields stay
// nil until the first recommendation request and are overwritten on each one.
type User struct {
	ID                 uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ExternalIdentityID string    `gorm:"uniqueIndex;not null;column:external_identity_id" json:"externalIdentityId"`
	Email              *string   `gorm:"uniqueIndex;column:email" json:"email,omitempty"`

	Location       *string  `gorm:"column:location" json:"location,omitempty"`
	SunlightHours  *float64 `gorm:"column:sunlight_hours" json:"sunlightHours,omitempty"`
	AvailableSpace *string  `gorm:"column:available_space" json:"availableSpace,omitempty"`

	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
	UpdatedAt time.Time `gorm:"not null" json:"updatedAt"`
}

func (User) TableName() string { return "user_profile" }

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// Survey is the location/sunlight/space triple describing growing conditions.
type Survey struct {
	Location       string  `json:"location"`
	SunlightHours  float64 `json:"sunlightHours"`
	AvailableSpace string  `json:"availableSpace"`
}

// HasSurvey reports whether the user has submitted a survey yet.
func (u *User) HasSurvey() bool {
	return u.Location != nil && u.SunlightHours != nil && u.AvailableSpace != nil
}

// UserPlant is the ownership relation between a user and a plant. Position keeps
// the reference set ordered by when the plant was added.
type UserPlant struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey;column:user_id" json:"userId"`
	PlantID   uuid.UUID `gorm:"type:uuid;primaryKey;index;column:plant_id" json:"plantId"`
	Position  int       `gorm:"not null;column:position" json:"position"`
	CreatedAt time.Time `gorm:"not null" json:"createdAt"`
}

func (UserPlant) TableName() string { return "user_plant" }
