package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/middleware"
	"vnfurniture/internal/models"
	"vnfurniture/internal/payment"
	"vnfurniture/internal/state"
)

type cartData struct {
	Items []models.CartItem
	Total decimal.Decimal
	QR    *payment.QR
}

func (h *Handler) mountCart(c *gin.Context) *state.CartState {
	cart := state.NewCartState(middleware.Auth(c), h.Store.Cart, middleware.Notifier(c))
	cart.Attach(c)
	return cart
}

// Cart shows the signed-in user's lines; visitors see the empty state.
func (h *Handler) Cart(c *gin.Context) {
	cart := h.mountCart(c)
	defer cart.Close()

	h.render(c, http.StatusOK, "cart", "Cart", cartData{
		Items: cart.Items(),
		Total: cart.Total(),
		QR:    h.QR,
	})
}

// AddToCart adds one line for the posted product and goes back.
func (h *Handler) AddToCart(c *gin.Context) {
	cart := h.mountCart(c)
	defer cart.Close()

	productID, err := uuid.Parse(c.PostForm("product_id"))
	if err != nil {
		middleware.Notifier(c).Error("Unknown product")
		middleware.Redirect(c, middleware.Back(c, "/"))
		return
	}
	_, _ = cart.AddToCart(c, productID)
	middleware.Redirect(c, middleware.Back(c, "/"))
}

func (h *Handler) cartAction(action func(cart *state.CartState, ctx context.Context, id uuid.UUID) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := parseID(c, "id")
		if !ok {
			middleware.Redirect(c, "/cart")
			return
		}
		cart := h.mountCart(c)
		defer cart.Close()

		if err := action(cart, c, id); err != nil && apperror.Is(err, http.StatusUnprocessableEntity) {
			middleware.Notifier(c).Error(apperror.Message(err))
		}
		middleware.Redirect(c, "/cart")
	}
}

func (h *Handler) IncrementItem() gin.HandlerFunc {
	return h.cartAction((*state.CartState).Increment)
}

func (h *Handler) DecrementItem() gin.HandlerFunc {
	return h.cartAction((*state.CartState).Decrement)
}

func (h *Handler) RemoveItem() gin.HandlerFunc {
	return h.cartAction((*state.CartState).RemoveFromCart)
}
