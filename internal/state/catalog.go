package state

import (
	"context"

	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

// Catalog is the browse view: products of one category or of all of them.
type Catalog struct {
	products store.Products
	notify   Notifier
	category models.Category
	list     []models.Product
}

func NewCatalog(products store.Products, notify Notifier) *Catalog {
	if notify == nil {
		notify = Discard{}
	}
	return &Catalog{products: products, notify: notify, category: models.CategoryAll}
}

// Select re-queries the store for category. Unknown values browse everything.
func (c *Catalog) Select(ctx context.Context, category models.Category) error {
	if !category.Valid() {
		category = models.CategoryAll
	}
	c.category = category

	list, err := c.products.List(ctx, store.ProductQuery{Category: category, NewestFirst: true})
	if err != nil {
		logger.Error(ctx, "loading products failed", err, zap.String("category", string(category)))
		c.notify.Error("Error loading products")
		c.list = nil
		return apperror.Remote("Error loading products", err)
	}
	c.list = list
	return nil
}

func (c *Catalog) Category() models.Category { return c.category }

func (c *Catalog) Products() []models.Product { return c.list }

// Filters lists the browse options, "all" first.
func (c *Catalog) Filters() []models.Category {
	return append([]models.Category{models.CategoryAll}, models.Categories()...)
}
