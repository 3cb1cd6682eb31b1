// Package memory is an in-process table driver used for local runs and tests.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

// DB holds every table behind one lock, mirroring a single remote database.
type DB struct {
	mu       sync.RWMutex
	products map[uuid.UUID]models.Product
	cart     map[uuid.UUID]models.CartItem
	order    []uuid.UUID // cart insertion order
	profiles map[uuid.UUID]models.Profile
	users    map[uuid.UUID]models.User
	now      func() time.Time

	// Fail, when set, is consulted before every operation; a non-nil result is
	// returned instead of touching the tables.
	Fail func(op string) error
}

func New() *DB {
	return &DB{
		products: make(map[uuid.UUID]models.Product),
		cart:     make(map[uuid.UUID]models.CartItem),
		profiles: make(map[uuid.UUID]models.Profile),
		users:    make(map[uuid.UUID]models.User),
		now:      time.Now,
	}
}

// Backend exposes the tables through the store interfaces.
func (db *DB) Backend() *store.Backend {
	return &store.Backend{
		Products: productTable{db},
		Cart:     cartTable{db},
		Profiles: profileTable{db},
		Users:    userTable{db},
		Close:    func() {},
	}
}

func (db *DB) fail(op string) error {
	if db.Fail == nil {
		return nil
	}
	return db.Fail(op)
}

// CartRows counts stored cart lines for a user, joined or not.
func (db *DB) CartRows(userID uuid.UUID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n := 0
	for _, it := range db.cart {
		if it.UserID == userID {
			n++
		}
	}
	return n
}

// ProfileRows counts stored profiles for a user.
func (db *DB) ProfileRows(userID uuid.UUID) int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	n := 0
	for _, p := range db.profiles {
		if p.UserID == userID {
			n++
		}
	}
	return n
}

type productTable struct{ db *DB }

func (t productTable) List(_ context.Context, q store.ProductQuery) ([]models.Product, error) {
	if err := t.db.fail("products.list"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()

	out := make([]models.Product, 0, len(t.db.products))
	for _, p := range t.db.products {
		if q.Filtered() && p.Category != q.Category {
			continue
		}
		out = append(out, p)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if q.NewestFirst {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (t productTable) Get(_ context.Context, id uuid.UUID) (*models.Product, error) {
	if err := t.db.fail("products.get"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	p, ok := t.db.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (t productTable) Insert(_ context.Context, p *models.Product) error {
	if err := t.db.fail("products.insert"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = t.db.now()
	}
	t.db.products[p.ID] = *p
	return nil
}

func (t productTable) Delete(_ context.Context, id uuid.UUID) error {
	if err := t.db.fail("products.delete"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	delete(t.db.products, id)
	return nil
}

type cartTable struct{ db *DB }

// join must run with the lock held.
func (t cartTable) join(it models.CartItem) models.CartItem {
	if p, ok := t.db.products[it.ProductID]; ok {
		it.Product = p.Snapshot()
	} else {
		it.Product = nil
	}
	return it
}

func (t cartTable) ListByUser(_ context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	if err := t.db.fail("cart.list"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	var out []models.CartItem
	for _, id := range t.db.order {
		it, ok := t.db.cart[id]
		if !ok || it.UserID != userID {
			continue
		}
		out = append(out, t.join(it))
	}
	return out, nil
}

func (t cartTable) Insert(_ context.Context, userID, productID uuid.UUID) (*models.CartItem, error) {
	if err := t.db.fail("cart.insert"); err != nil {
		return nil, err
	}
	t.db.mu.Lock()
	it := models.CartItem{ID: uuid.New(), UserID: userID, ProductID: productID, Quantity: 1}
	t.db.cart[it.ID] = it
	t.db.order = append(t.db.order, it.ID)
	t.db.mu.Unlock()

	if err := t.db.fail("cart.readback"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	joined := t.join(it)
	return &joined, nil
}

func (t cartTable) UpdateQuantity(_ context.Context, userID, itemID uuid.UUID, quantity int) error {
	if err := t.db.fail("cart.update"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	it, ok := t.db.cart[itemID]
	if !ok || it.UserID != userID {
		return nil
	}
	it.Quantity = quantity
	t.db.cart[itemID] = it
	return nil
}

func (t cartTable) Delete(_ context.Context, userID, itemID uuid.UUID) error {
	if err := t.db.fail("cart.delete"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if it, ok := t.db.cart[itemID]; ok && it.UserID == userID {
		delete(t.db.cart, itemID)
		t.db.order = slices.DeleteFunc(t.db.order, func(id uuid.UUID) bool { return id == itemID })
	}
	return nil
}

type profileTable struct{ db *DB }

func (t profileTable) GetByUser(_ context.Context, userID uuid.UUID) (*models.Profile, error) {
	if err := t.db.fail("profiles.get"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	p, ok := t.db.profiles[userID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (t profileTable) Upsert(_ context.Context, p *models.Profile) error {
	if err := t.db.fail("profiles.upsert"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	if existing, ok := t.db.profiles[p.UserID]; ok {
		p.ID = existing.ID
	} else if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	t.db.profiles[p.UserID] = *p
	return nil
}

type userTable struct{ db *DB }

func (t userTable) Create(_ context.Context, u *models.User) error {
	if err := t.db.fail("users.create"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	for _, existing := range t.db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return store.ErrConflict
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = t.db.now()
	}
	t.db.users[u.ID] = *u
	return nil
}

func (t userTable) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if err := t.db.fail("users.get"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	u, ok := t.db.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &u, nil
}

func (t userTable) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if err := t.db.fail("users.get"); err != nil {
		return nil, err
	}
	t.db.mu.RLock()
	defer t.db.mu.RUnlock()
	for _, u := range t.db.users {
		if strings.EqualFold(u.Email, email) {
			return &u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (t userTable) SetRole(_ context.Context, id uuid.UUID, role string) error {
	if err := t.db.fail("users.update"); err != nil {
		return err
	}
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	u, ok := t.db.users[id]
	if !ok {
		return store.ErrNotFound
	}
	u.Role = role
	t.db.users[id] = u
	return nil
}
