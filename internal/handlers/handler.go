// Package handlers serves the storefront pages and the upload API. Every page
// request builds the state containers it needs, loads, renders and lets them
// go when the request ends.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"vnfurniture/internal/authz"
	"vnfurniture/internal/middleware"
	"vnfurniture/internal/models"
	"vnfurniture/internal/payment"
	"vnfurniture/internal/storage"
	"vnfurniture/internal/store"
	"vnfurniture/internal/web"
)

// Handler carries the page dependencies.
type Handler struct {
	Store  *store.Backend
	Bucket storage.Bucket
	QR     *payment.QR
}

func New(backend *store.Backend, bucket storage.Bucket, qr *payment.QR) *Handler {
	return &Handler{Store: backend, Bucket: bucket, QR: qr}
}

// RegisterValidators adds the "category" binding rule.
func RegisterValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return models.Category(fl.Field().String()).Valid()
		})
	}
}

func (h *Handler) render(c *gin.Context, status int, page, title string, data any) {
	u := middleware.Auth(c).User()
	view := web.View{
		Title:            title,
		User:             u,
		CanManageCatalog: authz.CanManageCatalog(u),
		CartCount:        0,
		Flashes:          middleware.Flashes(c),
		Data:             data,
	}
	middleware.Persist(c)
	c.HTML(status, page, view)
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// formError turns a binding failure into one user-facing sentence.
func formError(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Please check the form and try again"
	}
	fe := verrs[0]
	field := fieldLabel(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "category":
		return "Please choose a category"
	default:
		return field + " is invalid"
	}
}

func fieldLabel(name string) string {
	switch name {
	case "FullName":
		return "Full name"
	case "ImageURL":
		return "Image"
	case "":
		return "Field"
	default:
		return strings.ToUpper(name[:1]) + name[1:]
	}
}

// Healthz reports liveness.
func Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
