// Package ownership authorizes per-plant operations against the caller's plant set.
package ownership

import (
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
)

// Membership answers the two lookups the guard needs. Both are indexed queries
// against user_plant and plant.
type Membership interface {
	HasPlant(dbc dbctx.Context, externalID string, plantID uuid.UUID) (bool, error)
	PlantExists(dbc dbctx.Context, plantID uuid.UUID) (bool, error)
}

type Guard struct {
	members Membership
}

func NewGuard(members Membership) *Guard {
	return &Guard{members: members}
}

// Authorize resolves rawID to a plant id the principal may read or mutate.
// Checks run in a fixed order: principal, id syntax, ownership, existence.
func (g *Guard) Authorize(dbc dbctx.Context, externalID, rawID string) (uuid.UUID, error) {
	if strings.TrimSpace(externalID) == "" {
		return uuid.Nil, apierr.Unauthenticated("authentication required")
	}
	plantID, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil || plantID == uuid.Nil {
		return uuid.Nil, apierr.NotFound("plant not found")
	}

	owns, err := g.members.HasPlant(dbc, externalID, plantID)
	if err != nil {
		return uuid.Nil, apierr.Internal("failed to check plant ownership", err)
	}
	if !owns {
		return uuid.Nil, apierr.Forbidden("you do not have access to this plant")
	}

	exists, err := g.members.PlantExists(dbc, plantID)
	if err != nil {
		return uuid.Nil, apierr.Internal("failed to load plant", err)
	}
	if !exists {
		return uuid.Nil, apierr.NotFound("plant not found")
	}
	return plantID, nil
}
