package services

import (
	"github.com/google/uuid"

	"github.com/yungbote/sprout-backend/internal/data/repos"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
)

// plantMembership answers the ownership guard's lookups from the relation table.
type plantMembership struct {
	plants    repos.PlantRepo
	userPlant repos.UserPlantRepo
}

func (m plantMembership) HasPlant(dbc dbctx.Context, externalID string, plantID uuid.UUID) (bool, error) {
	return m.userPlant.HasPlant(dbc, externalID, plantID)
}

func (m plantMembership) PlantExists(dbc dbctx.Context, plantID uuid.UUID) (bool, error) {
	return m.plants.Exists(dbc, plantID)
}
