package state

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/models"
)

func TestProfileLoadWithoutRow(t *testing.T) {
	e := newEnv(t)
	u := &models.User{ID: uuid.New()}
	f := NewProfileForm(u, e.backend.Profiles, e.notes)

	require.NoError(t, f.Load(context.Background()))
	assert.Equal(t, models.Profile{UserID: u.ID}, f.Values())
	assert.Empty(t, e.notes.errors)
}

func TestProfileUpsertIsIdempotent(t *testing.T) {
	e := newEnv(t)
	u := &models.User{ID: uuid.New()}
	ctx := context.Background()
	values := models.Profile{FullName: "Ana Tran", Address: "12 Ly Thuong Kiet, Hanoi", Phone: "+84 912 345 678"}

	f := NewProfileForm(u, e.backend.Profiles, e.notes)
	require.NoError(t, f.Save(ctx, values))
	require.NoError(t, f.Save(ctx, values))
	values.Phone = "+84 999 000 111"
	require.NoError(t, f.Save(ctx, values))

	assert.Equal(t, 1, e.db.ProfileRows(u.ID))

	reloaded := NewProfileForm(u, e.backend.Profiles, e.notes)
	require.NoError(t, reloaded.Load(ctx))
	assert.Equal(t, "+84 999 000 111", reloaded.Values().Phone)
	assert.Equal(t, u.ID, reloaded.Values().UserID)
	assert.Len(t, e.notes.successes, 3)
}

func TestProfileFailures(t *testing.T) {
	e := newEnv(t)
	u := &models.User{ID: uuid.New()}
	f := NewProfileForm(u, e.backend.Profiles, e.notes)
	e.db.Fail = failOn("profiles.get", "profiles.upsert")

	require.Error(t, f.Load(context.Background()))
	err := f.Save(context.Background(), models.Profile{FullName: "A", Address: "B", Phone: "C"})
	require.Error(t, err)
	assert.Equal(t, []string{"Failed to load profile", "Error updating profile"}, e.notes.errors)
	assert.Equal(t, "A", f.Values().FullName, "values are retained")

	anon := NewProfileForm(nil, e.backend.Profiles, e.notes)
	assert.True(t, apperror.Is(anon.Load(context.Background()), 401))
}
