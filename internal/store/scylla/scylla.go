// Package scylla stores the storefront tables in ScyllaDB through gocql.
package scylla

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/gocql/gocql"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/inf.v0"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

// SessionProvider hands out a live session; database.ScyllaManager satisfies it.
type SessionProvider interface {
	Session() (*gocql.Session, error)
}

// New wires every table to the provider.
func New(sp SessionProvider, closeFn func()) *store.Backend {
	return &store.Backend{
		Products: &Products{sp: sp},
		Cart:     &CartItems{sp: sp},
		Profiles: &Profiles{sp: sp},
		Users:    &Users{sp: sp},
		Close:    closeFn,
	}
}

func toInf(d decimal.Decimal) *inf.Dec {
	return inf.NewDecBig(d.Coefficient(), inf.Scale(-d.Exponent()))
}

func fromInf(d *inf.Dec) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(d.UnscaledBig(), -int32(d.Scale()))
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// casOutcome maps a lightweight transaction result: a write that was not
// applied becomes miss.
func casOutcome(applied bool, err error, miss error) error {
	if err != nil {
		return err
	}
	if !applied {
		return miss
	}
	return nil
}

func notFound(err error) error {
	if errors.Is(err, gocql.ErrNotFound) {
		return store.ErrNotFound
	}
	return err
}

// --- products ---

type Products struct{ sp SessionProvider }

func scanProduct(scan func(dest ...interface{}) bool) (models.Product, bool) {
	var (
		id, userID gocql.UUID
		name, desc string
		category   string
		imageURL   string
		price      inf.Dec
		createdAt  time.Time
	)
	if !scan(&id, &name, &desc, &price, &category, &imageURL, &createdAt, &userID) {
		return models.Product{}, false
	}
	return models.Product{
		ID:          uuid.UUID(id),
		Name:        name,
		Description: desc,
		Price:       fromInf(&price),
		Category:    models.Category(category),
		ImageURL:    nullable(imageURL),
		CreatedAt:   createdAt,
		UserID:      uuid.UUID(userID),
	}, true
}

func (r *Products) List(ctx context.Context, q store.ProductQuery) ([]models.Product, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}

	var query *gocql.Query
	if q.Filtered() {
		query = session.Query(stmtListProductsByCategory, string(q.Category))
	} else {
		query = session.Query(stmtListProducts)
	}
	iter := query.WithContext(ctx).Iter()

	var out []models.Product
	for {
		p, ok := scanProduct(iter.Scan)
		if !ok {
			break
		}
		out = append(out, p)
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	sortByCreated(out, q.NewestFirst)
	return out, nil
}

// sortByCreated applies creation order; partitions come back in token order.
func sortByCreated(list []models.Product, newestFirst bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if newestFirst {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

func (r *Products) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	var scanErr error
	p, ok := scanProduct(func(dest ...interface{}) bool {
		scanErr = session.Query(stmtGetProduct, gocql.UUID(id)).WithContext(ctx).Scan(dest...)
		return scanErr == nil
	})
	if !ok {
		return nil, notFound(scanErr)
	}
	return &p, nil
}

func (r *Products) Insert(ctx context.Context, p *models.Product) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}
	return session.Query(stmtInsertProduct,
		gocql.UUID(p.ID), p.Name, p.Description, toInf(p.Price), string(p.Category),
		p.Image(), p.CreatedAt, gocql.UUID(p.UserID),
	).WithContext(ctx).Exec()
}

func (r *Products) Delete(ctx context.Context, id uuid.UUID) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	return session.Query(stmtDeleteProduct, gocql.UUID(id)).WithContext(ctx).Exec()
}

// --- cart_items ---

type CartItems struct{ sp SessionProvider }

// snapshot joins the product columns onto a cart line; a missing product
// yields nil.
func snapshot(ctx context.Context, session *gocql.Session, productID gocql.UUID) (*models.ProductSnapshot, error) {
	var (
		name, imageURL string
		price          inf.Dec
	)
	err := session.Query(stmtProductSummary, productID).WithContext(ctx).Scan(&name, &price, &imageURL)
	if errors.Is(err, gocql.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &models.ProductSnapshot{Name: name, Price: fromInf(&price), ImageURL: imageURL}, nil
}

func (r *CartItems) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	iter := session.Query(stmtListCart, gocql.UUID(userID)).WithContext(ctx).Iter()

	var (
		out       []models.CartItem
		itemID    gocql.UUID
		productID gocql.UUID
		quantity  int
	)
	for iter.Scan(&itemID, &productID, &quantity) {
		out = append(out, models.CartItem{
			ID:        uuid.UUID(itemID),
			UserID:    userID,
			ProductID: uuid.UUID(productID),
			Quantity:  quantity,
		})
	}
	if err := iter.Close(); err != nil {
		return nil, fmt.Errorf("list cart: %w", err)
	}

	for i := range out {
		snap, err := snapshot(ctx, session, gocql.UUID(out[i].ProductID))
		if err != nil {
			return nil, fmt.Errorf("join product %s: %w", out[i].ProductID, err)
		}
		out[i].Product = snap
	}
	return out, nil
}

func (r *CartItems) Insert(ctx context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	itemID := gocql.TimeUUID()
	if err := session.Query(stmtInsertCartItem,
		gocql.UUID(userID), itemID, gocql.UUID(productID), 1,
	).WithContext(ctx).Exec(); err != nil {
		return nil, fmt.Errorf("insert cart item: %w", err)
	}

	var (
		gotID, gotProduct gocql.UUID
		quantity          int
	)
	if err := session.Query(stmtGetCartItem, gocql.UUID(userID), itemID).
		WithContext(ctx).Scan(&gotID, &gotProduct, &quantity); err != nil {
		return nil, fmt.Errorf("read back cart item: %w", notFound(err))
	}
	snap, err := snapshot(ctx, session, gotProduct)
	if err != nil {
		return nil, fmt.Errorf("join product %s: %w", productID, err)
	}
	return &models.CartItem{
		ID:        uuid.UUID(gotID),
		UserID:    userID,
		ProductID: uuid.UUID(gotProduct),
		Quantity:  quantity,
		Product:   snap,
	}, nil
}

func (r *CartItems) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	// Lightweight transaction so a removed line is not resurrected.
	_, err = session.Query(stmtUpdateCartItem, quantity, gocql.UUID(userID), gocql.UUID(itemID)).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	return err
}

func (r *CartItems) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	return session.Query(stmtDeleteCartItem, gocql.UUID(userID), gocql.UUID(itemID)).WithContext(ctx).Exec()
}

// --- profiles ---

type Profiles struct{ sp SessionProvider }

func (r *Profiles) GetByUser(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	var (
		id                       gocql.UUID
		fullName, address, phone string
	)
	if err := session.Query(stmtGetProfile, gocql.UUID(userID)).WithContext(ctx).
		Scan(&id, &fullName, &address, &phone); err != nil {
		return nil, notFound(err)
	}
	return &models.Profile{
		ID:       uuid.UUID(id),
		UserID:   userID,
		FullName: fullName,
		Address:  address,
		Phone:    phone,
	}, nil
}

// Upsert relies on CQL INSERT overwriting the row keyed by user_id; an
// existing profile id is kept.
func (r *Profiles) Upsert(ctx context.Context, p *models.Profile) error {
	existing, err := r.GetByUser(ctx, p.UserID)
	if err := resolveProfileID(p, existing, err); err != nil {
		return err
	}

	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	return session.Query(stmtUpsertProfile,
		gocql.UUID(p.UserID), gocql.UUID(p.ID), p.FullName, p.Address, p.Phone,
	).WithContext(ctx).Exec()
}

// resolveProfileID keeps the id of an existing row and mints one otherwise.
func resolveProfileID(p, existing *models.Profile, lookupErr error) error {
	switch {
	case lookupErr == nil:
		p.ID = existing.ID
	case errors.Is(lookupErr, store.ErrNotFound):
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	default:
		return lookupErr
	}
	return nil
}

// --- users ---

type Users struct{ sp SessionProvider }

func (r *Users) Create(ctx context.Context, u *models.User) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	email := strings.ToLower(u.Email)

	applied, err := session.Query(stmtClaimEmail, email, gocql.UUID(u.ID)).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err := casOutcome(applied, err, store.ErrConflict); err != nil {
		return fmt.Errorf("claim email: %w", err)
	}

	return session.Query(stmtInsertUser,
		gocql.UUID(u.ID), email, u.Password, u.Role, u.CreatedAt,
	).WithContext(ctx).Exec()
}

func (r *Users) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	u := models.User{ID: id}
	if err := session.Query(stmtGetUserByID, gocql.UUID(id)).WithContext(ctx).
		Scan(&u.Email, &u.Password, &u.Role, &u.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *Users) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	session, err := r.sp.Session()
	if err != nil {
		return nil, err
	}
	var id gocql.UUID
	if err := session.Query(stmtUserByEmail, strings.ToLower(email)).WithContext(ctx).Scan(&id); err != nil {
		return nil, notFound(err)
	}
	return r.GetByID(ctx, uuid.UUID(id))
}

func (r *Users) SetRole(ctx context.Context, id uuid.UUID, role string) error {
	session, err := r.sp.Session()
	if err != nil {
		return err
	}
	applied, err := session.Query(stmtUpdateRole, role, gocql.UUID(id)).
		WithContext(ctx).MapScanCAS(map[string]interface{}{})
	return casOutcome(applied, err, store.ErrNotFound)
}
