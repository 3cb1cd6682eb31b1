// Package postgres stores the storefront tables in Postgres through gorm.
package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

type productRow struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	Name        string          `gorm:"column:name;not null"`
	Description string          `gorm:"column:description;not null"`
	Price       decimal.Decimal `gorm:"column:price;type:decimal(10,2);not null"`
	Category    string          `gorm:"column:category;not null;index"`
	ImageURL    *string         `gorm:"column:image_url"`
	CreatedAt   time.Time       `gorm:"column:created_at;not null"`
	UserID      uuid.UUID       `gorm:"column:user_id;type:uuid"`
}

func (productRow) TableName() string { return "products" }

func (r productRow) model() models.Product {
	return models.Product{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Category:    models.Category(r.Category),
		ImageURL:    r.ImageURL,
		CreatedAt:   r.CreatedAt,
		UserID:      r.UserID,
	}
}

type cartItemRow struct {
	ID        uuid.UUID   `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID   `gorm:"column:user_id;type:uuid;not null;index"`
	ProductID uuid.UUID   `gorm:"column:product_id;type:uuid;not null"`
	Quantity  int         `gorm:"column:quantity;not null;default:1"`
	CreatedAt time.Time   `gorm:"column:created_at;not null"`
	Product   *productRow `gorm:"foreignKey:ProductID;references:ID"`
}

func (cartItemRow) TableName() string { return "cart_items" }

func (r cartItemRow) model() models.CartItem {
	it := models.CartItem{ID: r.ID, UserID: r.UserID, ProductID: r.ProductID, Quantity: r.Quantity}
	if r.Product != nil {
		it.Product = r.Product.model().Snapshot()
	}
	return it
}

type profileRow struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	UserID   uuid.UUID `gorm:"column:user_id;type:uuid;uniqueIndex"`
	FullName string    `gorm:"column:full_name"`
	Address  string    `gorm:"column:address"`
	Phone    string    `gorm:"column:phone"`
}

func (profileRow) TableName() string { return "profiles" }

type userRow struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Email     string    `gorm:"column:email;uniqueIndex;not null"`
	Password  string    `gorm:"column:password;not null"`
	Role      string    `gorm:"column:role;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

func (userRow) TableName() string { return "users" }

func (r userRow) model() *models.User {
	return &models.User{ID: r.ID, Email: r.Email, Password: r.Password, Role: r.Role, CreatedAt: r.CreatedAt}
}

// New wires every table to db.
func New(db *gorm.DB) *store.Backend {
	return &store.Backend{
		Products: &Products{db: db},
		Cart:     &CartItems{db: db},
		Profiles: &Profiles{db: db},
		Users:    &Users{db: db},
		Close: func() {
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}
		},
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return store.ErrNotFound
	}
	return err
}

type Products struct{ db *gorm.DB }

func (r *Products) List(ctx context.Context, q store.ProductQuery) ([]models.Product, error) {
	tx := r.db.WithContext(ctx)
	if q.Filtered() {
		tx = tx.Where("category = ?", string(q.Category))
	}
	if q.NewestFirst {
		tx = tx.Order("created_at DESC")
	} else {
		tx = tx.Order("created_at ASC")
	}

	var rows []productRow
	if err := tx.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]models.Product, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

func (r *Products) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var row productRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	p := row.model()
	return &p, nil
}

func (r *Products) Insert(ctx context.Context, p *models.Product) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	row := productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    string(p.Category),
		ImageURL:    p.ImageURL,
		CreatedAt:   p.CreatedAt,
		UserID:      p.UserID,
	}
	return r.db.WithContext(ctx).Create(&row).Error
}

func (r *Products) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&productRow{}, "id = ?", id).Error
}

type CartItems struct{ db *gorm.DB }

func (r *CartItems) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	var rows []cartItemRow
	err := r.db.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]models.CartItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.model())
	}
	return out, nil
}

func (r *CartItems) Insert(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	row := cartItemRow{
		ID:        uuid.New(),
		UserID:    userID,
		ProductID: productID,
		Quantity:  1,
		CreatedAt: time.Now().UTC(),
	}
	if err := r.db.WithContext(ctx).Omit("Product").Create(&row).Error; err != nil {
		return nil, err
	}

	var back cartItemRow
	if err := r.db.WithContext(ctx).Preload("Product").
		First(&back, "id = ? AND user_id = ?", row.ID, userID).Error; err != nil {
		return nil, notFound(err)
	}
	it := back.model()
	return &it, nil
}

func (r *CartItems) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	return r.db.WithContext(ctx).Model(&cartItemRow{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity).Error
}

func (r *CartItems) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", itemID, userID).
		Delete(&cartItemRow{}).Error
}

type Profiles struct{ db *gorm.DB }

func (r *Profiles) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	var row profileRow
	if err := r.db.WithContext(ctx).First(&row, "user_id = ?", userID).Error; err != nil {
		return nil, notFound(err)
	}
	return &models.Profile{
		ID:       row.ID,
		UserID:   row.UserID,
		FullName: row.FullName,
		Address:  row.Address,
		Phone:    row.Phone,
	}, nil
}

func (r *Profiles) Upsert(ctx context.Context, p *models.Profile) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	row := profileRow{
		ID:       p.ID,
		UserID:   p.UserID,
		FullName: p.FullName,
		Address:  p.Address,
		Phone:    p.Phone,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "address", "phone"}),
	}).Create(&row).Error
	if err != nil {
		return err
	}
	if existing, err := r.GetByUser(ctx, p.UserID); err == nil {
		p.ID = existing.ID
	}
	return nil
}

type Users struct{ db *gorm.DB }

func (r *Users) Create(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	row := userRow{
		ID:        u.ID,
		Email:     strings.ToLower(u.Email),
		Password:  u.Password,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
	err := r.db.WithContext(ctx).Create(&row).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return store.ErrConflict
	}
	return err
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return row.model(), nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var row userRow
	if err := r.db.WithContext(ctx).First(&row, "email = ?", strings.ToLower(email)).Error; err != nil {
		return nil, notFound(err)
	}
	return row.model(), nil
}

func (r *Users) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	res := r.db.WithContext(ctx).Model(&userRow{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return store.ErrNotFound
	}
	return nil
}
