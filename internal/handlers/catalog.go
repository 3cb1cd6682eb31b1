package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vnfurniture/internal/middleware"
	"vnfurniture/internal/models"
	"vnfurniture/internal/state"
)

type homeData struct {
	Filters  []models.Category
	Selected models.Category
	Products []models.Product
}

// Home browses products, optionally narrowed by ?category=.
func (h *Handler) Home(c *gin.Context) {
	catalog := state.NewCatalog(h.Store.Products, middleware.Notifier(c))
	_ = catalog.Select(c, models.ParseFilter(c.Query("category")))

	h.render(c, http.StatusOK, "home", "Home", homeData{
		Filters:  catalog.Filters(),
		Selected: catalog.Category(),
		Products: catalog.Products(),
	})
}
