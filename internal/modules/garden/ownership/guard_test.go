package ownership

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/sprout-backend/internal/platform/apierr"
	"github.com/yungbote/sprout-backend/internal/platform/dbctx"
)

type fakeMembership struct {
	owned   map[string]map[uuid.UUID]bool
	plants  map[uuid.UUID]bool
	err     error
	lookups int
}

func (f *fakeMembership) HasPlant(_ dbctx.Context, externalID string, plantID uuid.UUID) (bool, error) {
	f.lookups++
	if f.err != nil {
		return false, f.err
	}
	return f.owned[externalID][plantID], nil
}

func (f *fakeMembership) PlantExists(_ dbctx.Context, plantID uuid.UUID) (bool, error) {
	return f.plants[plantID], nil
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var e *apierr.Error
	require.True(t, errors.As(err, &e), "expected *apierr.Error, got %T", err)
	return e.Status
}

func TestGuard_Authorize(t *testing.T) {
	mine := uuid.New()
	theirs := uuid.New()
	dangling := uuid.New()
	m := &fakeMembership{
		owned: map[string]map[uuid.UUID]bool{
			"alice": {mine: true, dangling: true},
			"bob":   {theirs: true},
		},
		plants: map[uuid.UUID]bool{mine: true, theirs: true},
	}
	g := NewGuard(m)
	dbc := dbctx.Context{Ctx: context.Background()}

	tests := []struct {
		name     string
		external string
		rawID    string
		status   int
	}{
		{name: "no principal", external: "", rawID: mine.String(), status: http.StatusUnauthorized},
		{name: "no principal beats bad id", external: " ", rawID: "nope", status: http.StatusUnauthorized},
		{name: "malformed id", external: "alice", rawID: "not-a-uuid", status: http.StatusNotFound},
		{name: "nil id", external: "alice", rawID: uuid.Nil.String(), status: http.StatusNotFound},
		{name: "not owner", external: "alice", rawID: theirs.String(), status: http.StatusForbidden},
		{name: "unknown id not owned", external: "alice", rawID: uuid.NewString(), status: http.StatusForbidden},
		{name: "owned but missing", external: "alice", rawID: dangling.String(), status: http.StatusNotFound},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := g.Authorize(dbc, tc.external, tc.rawID)
			require.Error(t, err)
			assert.Equal(t, tc.status, statusOf(t, err))
		})
	}

	id, err := g.Authorize(dbc, "alice", mine.String())
	require.NoError(t, err)
	assert.Equal(t, mine, id)

	id, err = g.Authorize(dbc, "bob", theirs.String())
	require.NoError(t, err)
	assert.Equal(t, theirs, id)
}

func TestGuard_LookupFailureIsInternal(t *testing.T) {
	g := NewGuard(&fakeMembership{err: errors.New("db down")})
	_, err := g.Authorize(dbctx.Context{Ctx: context.Background()}, "alice", uuid.NewString())
	assert.Equal(t, http.StatusInternalServerError, statusOf(t, err))
}

func TestGuard_NoLookupWithoutPrincipal(t *testing.T) {
	m := &fakeMembership{}
	_, _ = NewGuard(m).Authorize(dbctx.Context{}, "", uuid.NewString())
	assert.Zero(t, m.lookups)
}
