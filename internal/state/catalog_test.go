package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

func storeAll() store.ProductQuery { return store.ProductQuery{Category: models.CategoryAll} }

func TestCatalogFiltersByCategory(t *testing.T) {
	e := newEnv(t)
	now := time.Now()
	for i, c := range models.Categories() {
		e.product(t, string(c)+"-a", "10.00", c, now.Add(time.Duration(i)*time.Minute))
		e.product(t, string(c)+"-b", "20.00", c, now.Add(time.Duration(i)*time.Minute+time.Second))
	}
	cat := NewCatalog(e.backend.Products, e.notes)
	ctx := context.Background()

	for _, c := range models.Categories() {
		require.NoError(t, cat.Select(ctx, c))
		assert.Equal(t, c, cat.Category())
		require.Len(t, cat.Products(), 2)
		for _, p := range cat.Products() {
			assert.Equal(t, c, p.Category)
		}
	}

	require.NoError(t, cat.Select(ctx, models.CategoryAll))
	assert.Len(t, cat.Products(), 2*len(models.Categories()))

	require.NoError(t, cat.Select(ctx, "garage"))
	assert.Equal(t, models.CategoryAll, cat.Category())
	assert.Len(t, cat.Products(), 2*len(models.Categories()))
}

func TestCatalogFilters(t *testing.T) {
	cat := NewCatalog(nil, nil)
	assert.Equal(t, []models.Category{
		models.CategoryAll, models.CategoryLivingRoom, models.CategoryBedroom, models.CategoryDining, models.CategoryOffice,
	}, cat.Filters())
}

func TestCatalogFailure(t *testing.T) {
	e := newEnv(t)
	e.db.Fail = failOn("products.list")
	cat := NewCatalog(e.backend.Products, e.notes)
	require.Error(t, cat.Select(context.Background(), models.CategoryAll))
	assert.Empty(t, cat.Products())
	assert.Equal(t, []string{"Error loading products"}, e.notes.errors)
}
