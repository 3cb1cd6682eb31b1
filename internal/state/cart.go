package state

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

// Total is the sum of price × quantity over items. Lines whose product no
// longer exists count for nothing.
func Total(items []models.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// CartState holds the signed-in user's cart lines. Local lines only change
// after the store confirms a mutation.
type CartState struct {
	auth   *AuthState
	items  store.CartItems
	notify Notifier

	mu          sync.Mutex
	ctx         context.Context
	userID      uuid.UUID
	lines       []models.CartItem
	loading     bool
	unsubscribe func()
}

func NewCartState(a *AuthState, items store.CartItems, notify Notifier) *CartState {
	if notify == nil {
		notify = Discard{}
	}
	return &CartState{auth: a, items: items, notify: notify}
}

// Attach follows the auth state: the cart is reloaded in full whenever the
// user changes and emptied without a read when nobody is signed in.
func (c *CartState) Attach(ctx context.Context) {
	c.mu.Lock()
	c.ctx = ctx
	if c.unsubscribe == nil {
		c.unsubscribe = c.auth.Subscribe(c.onUser)
	}
	c.mu.Unlock()

	c.onUser(c.auth.User())
}

func (c *CartState) onUser(u *models.User) {
	id := uuid.Nil
	if u != nil {
		id = u.ID
	}

	c.mu.Lock()
	if id == c.userID && (id == uuid.Nil || c.lines != nil) {
		c.mu.Unlock()
		return
	}
	c.userID = id
	ctx := c.ctx
	if id == uuid.Nil {
		c.lines = nil
		c.mu.Unlock()
		return
	}
	c.loading = true
	c.mu.Unlock()

	c.reload(ctx, id)
}

func (c *CartState) reload(ctx context.Context, userID uuid.UUID) {
	lines, err := c.items.ListByUser(ctx, userID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	if c.userID != userID {
		return
	}
	if err != nil {
		c.lines = []models.CartItem{}
		logger.Error(ctx, "loading cart failed", err, zap.String("user_id", userID.String()))
		c.notify.Error("Error loading cart")
		return
	}
	if lines == nil {
		lines = []models.CartItem{}
	}
	c.lines = lines
}

// AddToCart appends one new quantity-1 line, even when the product is already
// in the cart.
func (c *CartState) AddToCart(ctx context.Context, productID uuid.UUID) (*models.CartItem, error) {
	u := c.auth.User()
	if u == nil {
		c.notify.Error("Please log in to add items to cart")
		return nil, apperror.Unauthorized("Please log in to add items to cart")
	}

	item, err := c.items.Insert(ctx, u.ID, productID)
	if err != nil {
		return nil, c.fail(ctx, "Error adding to cart", err, zap.String("product_id", productID.String()))
	}

	c.mu.Lock()
	c.lines = append(c.lines, *item)
	c.mu.Unlock()

	c.notify.Success("Added to cart")
	return item, nil
}

func (c *CartState) RemoveFromCart(ctx context.Context, itemID uuid.UUID) error {
	u := c.auth.User()
	if u == nil {
		return apperror.Unauthorized("Please sign in to manage your cart")
	}
	if err := c.items.Delete(ctx, u.ID, itemID); err != nil {
		return c.fail(ctx, "Error removing from cart", err, zap.String("item_id", itemID.String()))
	}

	c.mu.Lock()
	for i, it := range c.lines {
		if it.ID == itemID {
			c.lines = append(c.lines[:i:i], c.lines[i+1:]...)
			break
		}
	}
	c.mu.Unlock()

	c.notify.Success("Removed from cart")
	return nil
}

// UpdateQuantity sets an exact quantity. Quantities below 1 are rejected
// without touching the store.
func (c *CartState) UpdateQuantity(ctx context.Context, itemID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return apperror.Validation("Quantity must be at least 1")
	}
	u := c.auth.User()
	if u == nil {
		return apperror.Unauthorized("Please sign in to manage your cart")
	}
	if err := c.items.UpdateQuantity(ctx, u.ID, itemID, quantity); err != nil {
		return c.fail(ctx, "Error updating quantity", err, zap.String("item_id", itemID.String()))
	}

	c.mu.Lock()
	for i := range c.lines {
		if c.lines[i].ID == itemID {
			c.lines[i].Quantity = quantity
			break
		}
	}
	c.mu.Unlock()
	return nil
}

// Increment raises a line by one. There is no upper bound.
func (c *CartState) Increment(ctx context.Context, itemID uuid.UUID) error {
	it, ok := c.line(itemID)
	if !ok {
		return apperror.Validation("Item is not in your cart")
	}
	return c.UpdateQuantity(ctx, itemID, it.Quantity+1)
}

// Decrement lowers a line by one, clamped at 1.
func (c *CartState) Decrement(ctx context.Context, itemID uuid.UUID) error {
	it, ok := c.line(itemID)
	if !ok {
		return apperror.Validation("Item is not in your cart")
	}
	if it.Quantity <= 1 {
		return nil
	}
	return c.UpdateQuantity(ctx, itemID, it.Quantity-1)
}

func (c *CartState) line(itemID uuid.UUID) (models.CartItem, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, it := range c.lines {
		if it.ID == itemID {
			return it, true
		}
	}
	return models.CartItem{}, false
}

func (c *CartState) fail(ctx context.Context, message string, err error, fields ...zap.Field) error {
	logger.Error(ctx, message, err, fields...)
	c.notify.Error(message)
	return apperror.Remote(message, err)
}

// Items returns a copy of the current lines.
func (c *CartState) Items() []models.CartItem {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.CartItem, len(c.lines))
	copy(out, c.lines)
	return out
}

// Total is recomputed from the current lines on every call.
func (c *CartState) Total() decimal.Decimal {
	return Total(c.Items())
}

func (c *CartState) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// Close stops following the auth state.
func (c *CartState) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
}
