// Package store declares the table side of the remote data service. Drivers
// live in the scylla, postgres and memory subpackages.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"vnfurniture/internal/models"
)

var (
	ErrNotFound = errors.New("store: record not found")
	ErrConflict = errors.New("store: record already exists")
)

// ProductQuery filters a product listing. An empty or "all" category matches
// every product.
type ProductQuery struct {
	Category    models.Category
	NewestFirst bool
}

// Filtered reports whether the query restricts by category.
func (q ProductQuery) Filtered() bool {
	return q.Category != "" && q.Category != models.CategoryAll
}

type Products interface {
	List(ctx context.Context, q ProductQuery) ([]models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Insert(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CartItems never crosses users: every call carries the owner id.
type CartItems interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	// Insert adds a quantity-1 line and reads it back with its product snapshot.
	Insert(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
}

type Profiles interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
	// Upsert inserts or replaces the single profile of p.UserID.
	Upsert(ctx context.Context, p *models.Profile) error
}

type Users interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRole(ctx context.Context, id uuid.UUID, role string) error
}

// Backend bundles one driver's tables.
type Backend struct {
	Products Products
	Cart     CartItems
	Profiles Profiles
	Users    Users
	Close    func()
}
