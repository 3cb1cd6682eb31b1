package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vnfurniture/internal/middleware"
	"vnfurniture/internal/models"
	"vnfurniture/internal/state"
)

type adminData struct {
	Draft      models.ProductDraft
	Categories []models.Category
	Products   []models.Product
}

func (h *Handler) adminPanel(c *gin.Context) *state.AdminPanel {
	return state.NewAdminPanel(middleware.Auth(c).User(), h.Store.Products, h.Bucket, middleware.Notifier(c))
}

func (h *Handler) renderAdmin(c *gin.Context, status int, panel *state.AdminPanel, draft models.ProductDraft) {
	h.render(c, status, "admin", "Admin", adminData{
		Draft:      draft,
		Categories: models.Categories(),
		Products:   panel.Products(),
	})
}

// AdminPage lists every product, newest first, next to the create form.
func (h *Handler) AdminPage(c *gin.Context) {
	panel := h.adminPanel(c)
	_ = panel.Load(c)
	h.renderAdmin(c, http.StatusOK, panel, panel.Draft())
}

// CreateProduct redirects on success and re-renders the form with the
// submitted values on failure.
func (h *Handler) CreateProduct(c *gin.Context) {
	panel := h.adminPanel(c)

	draft := models.NewProductDraft()
	bindErr := c.ShouldBind(&draft)

	var err error
	if bindErr != nil && draft.ImageURL != "" {
		middleware.Notifier(c).Error(formError(bindErr))
		err = bindErr
	} else {
		err = panel.Submit(c, draft)
	}
	if err != nil {
		_ = panel.Load(c)
		h.renderAdmin(c, http.StatusUnprocessableEntity, panel, draft)
		return
	}
	middleware.Redirect(c, "/admin")
}

// DeleteProduct removes a product and its image, then goes back to the list.
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		middleware.Notifier(c).Error("Unknown product")
		middleware.Redirect(c, "/admin")
		return
	}
	panel := h.adminPanel(c)
	_ = panel.Delete(c, id)
	middleware.Redirect(c, "/admin")
}
