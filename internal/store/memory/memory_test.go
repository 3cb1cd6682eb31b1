package memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartDeletePrunesOrder(t *testing.T) {
	db := New()
	cart := db.Backend().Cart
	ctx := context.Background()
	ana, bo := uuid.New(), uuid.New()

	first, err := cart.Insert(ctx, ana, uuid.New())
	require.NoError(t, err)
	second, err := cart.Insert(ctx, ana, uuid.New())
	require.NoError(t, err)
	other, err := cart.Insert(ctx, bo, uuid.New())
	require.NoError(t, err)

	require.NoError(t, cart.Delete(ctx, ana, first.ID))
	assert.Equal(t, []uuid.UUID{second.ID, other.ID}, db.order)

	lines, err := cart.ListByUser(ctx, ana)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, second.ID, lines[0].ID)
	assert.Nil(t, lines[0].Product, "product was never stored")
}

func TestCartDeleteIgnoresOtherUsers(t *testing.T) {
	db := New()
	cart := db.Backend().Cart
	ctx := context.Background()
	ana, bo := uuid.New(), uuid.New()

	line, err := cart.Insert(ctx, ana, uuid.New())
	require.NoError(t, err)

	require.NoError(t, cart.Delete(ctx, bo, line.ID))
	assert.Equal(t, []uuid.UUID{line.ID}, db.order)
	assert.Equal(t, 1, db.CartRows(ana))
}
