package bus

import (
	"context"
	"time"
)

const (
	EventPlantsRecommended = "plants.recommended"
	EventPlantCreated      = "plant.created"
	EventPlantActivated    = "plant.activated"
	EventStepCompleted     = "plant.step_completed"
	EventPlantRemediated   = "plant.remediated"
)

// Event is a plant lifecycle notification. UserID is the internal user id,
// never the identity-provider subject.
type Event struct {
	Type     string         `json:"type"`
	UserID   string         `json:"user_id"`
	PlantIDs []string       `json:"plant_ids,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	At       time.Time      `json:"at"`
}

type Bus interface {
	Publish(ctx context.Context, ev Event) error
	StartForwarder(ctx context.Context, onEvent func(ev Event)) error
	Close() error
}
