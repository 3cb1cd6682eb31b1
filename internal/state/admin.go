package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/authz"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/models"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/store"
	"vnfurniture/internal/upload"
)

type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
)

// AdminPanel drives the product form and the product list of the admin page.
type AdminPanel struct {
	user     *models.User
	products store.Products
	bucket   storage.Bucket
	notify   Notifier
	now      func() time.Time

	// observe, when set, sees every phase transition.
	observe func(Phase)

	mu    sync.Mutex
	phase Phase
	draft models.ProductDraft
	list  []models.Product
}

func NewAdminPanel(user *models.User, products store.Products, bucket storage.Bucket, notify Notifier) *AdminPanel {
	if notify == nil {
		notify = Discard{}
	}
	return &AdminPanel{
		user:     user,
		products: products,
		bucket:   bucket,
		notify:   notify,
		now:      time.Now,
		phase:    PhaseIdle,
		draft:    models.NewProductDraft(),
	}
}

func (a *AdminPanel) allowed() error {
	if !authz.CanManageCatalog(a.user) {
		return apperror.Forbidden("You do not have access to the admin panel")
	}
	return nil
}

// Load fetches every product, newest first.
func (a *AdminPanel) Load(ctx context.Context) error {
	list, err := a.products.List(ctx, store.ProductQuery{NewestFirst: true})
	if err != nil {
		logger.Error(ctx, "loading products failed", err)
		a.notify.Error("Error loading products")
		return apperror.Remote("Error loading products", err)
	}
	a.mu.Lock()
	a.list = list
	a.mu.Unlock()
	return nil
}

// Submit creates a product from draft. A draft without an image never reaches
// the store. On failure the draft is kept so the form can be re-shown.
func (a *AdminPanel) Submit(ctx context.Context, draft models.ProductDraft) error {
	if err := a.allowed(); err != nil {
		a.notify.Error(err.Error())
		return err
	}

	a.mu.Lock()
	a.draft = draft
	a.mu.Unlock()

	p, err := a.build(draft)
	if err != nil {
		a.notify.Error(apperror.Message(err))
		return err
	}

	a.setPhase(PhaseSubmitting)
	err = a.products.Insert(ctx, p)
	a.setPhase(PhaseIdle)
	if err != nil {
		logger.Error(ctx, "creating product failed", err, zap.String("name", p.Name))
		a.notify.Error("Error adding product")
		return apperror.Remote("Error adding product", err)
	}

	logger.Info(ctx, "✅ product created", zap.String("product_id", p.ID.String()), zap.String("category", string(p.Category)))
	a.mu.Lock()
	a.draft = models.NewProductDraft()
	a.mu.Unlock()
	a.notify.Success("Product added successfully")

	return a.Load(ctx)
}

func (a *AdminPanel) build(d models.ProductDraft) (*models.Product, error) {
	image := strings.TrimSpace(d.ImageURL)
	if image == "" {
		return nil, apperror.Validation("Please upload an image")
	}
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, apperror.Validation("Name is required")
	}
	description := strings.TrimSpace(d.Description)
	if description == "" {
		return nil, apperror.Validation("Description is required")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(d.Price))
	if err != nil || price.IsNegative() {
		return nil, apperror.Validation("Price must be a number of at least 0")
	}
	if !d.Category.Valid() {
		return nil, apperror.Validation("Please choose a category")
	}

	return &models.Product{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Price:       price.Round(2),
		Category:    d.Category,
		ImageURL:    &image,
		CreatedAt:   a.now().UTC(),
		UserID:      a.user.ID,
	}, nil
}

// Delete removes a product and then, best effort, its stored image. A failed
// image removal is logged and does not change the result.
func (a *AdminPanel) Delete(ctx context.Context, id uuid.UUID) error {
	if err := a.allowed(); err != nil {
		a.notify.Error(err.Error())
		return err
	}

	image := ""
	if p, ok := a.find(id); ok {
		image = p.Image()
	} else if p, err := a.products.Get(ctx, id); err == nil {
		image = p.Image()
	}

	if err := a.products.Delete(ctx, id); err != nil {
		logger.Error(ctx, "deleting product failed", err, zap.String("product_id", id.String()))
		a.notify.Error("Error deleting product")
		return apperror.Remote("Error deleting product", err)
	}

	a.mu.Lock()
	for i, p := range a.list {
		if p.ID == id {
			a.list = append(a.list[:i:i], a.list[i+1:]...)
			break
		}
	}
	a.mu.Unlock()

	if key := upload.ObjectKeyFromURL(image); key != "" {
		if err := a.bucket.Remove(ctx, key); err != nil {
			logger.Warn(ctx, "product image cleanup failed", zap.String("key", key), zap.Error(err))
		}
	}

	a.notify.Success("Product deleted successfully")
	return nil
}

func (a *AdminPanel) find(id uuid.UUID) (models.Product, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.list {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (a *AdminPanel) setPhase(p Phase) {
	a.mu.Lock()
	a.phase = p
	observe := a.observe
	a.mu.Unlock()
	if observe != nil {
		observe(p)
	}
}

func (a *AdminPanel) Phase() Phase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.phase
}

// Draft is the form as it should be shown next.
func (a *AdminPanel) Draft() models.ProductDraft {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.draft
}

func (a *AdminPanel) Products() []models.Product {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.Product, len(a.list))
	copy(out, a.list)
	return out
}
