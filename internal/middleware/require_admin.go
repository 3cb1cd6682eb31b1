package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/authz"
	"vnfurniture/internal/logger"
)

// RequireAuth sends anonymous visitors to the login page.
func RequireAuth(c *gin.Context) {
	if Auth(c).User() == nil {
		Redirect(c, "/login")
		return
	}
	c.Next()
}

// RequireAdmin guards the catalog pages: anonymous visitors go to the login
// page, signed-in users without the capability go home with an error.
func RequireAdmin(c *gin.Context) {
	u := Auth(c).User()
	if u == nil {
		Redirect(c, "/login")
		return
	}
	if !authz.CanManageCatalog(u) {
		logger.Warn(c, "⛔ admin page refused", zap.String("user_id", u.ID.String()))
		Notifier(c).Error("You do not have access to the admin panel")
		Redirect(c, "/")
		return
	}
	c.Next()
}

// RequireAdminAPI is RequireAdmin for JSON routes.
func RequireAdminAPI(c *gin.Context) {
	u := Auth(c).User()
	if u == nil {
		_ = c.Error(apperror.Unauthorized("Please sign in"))
		c.Abort()
		return
	}
	if !authz.CanManageCatalog(u) {
		_ = c.Error(apperror.Forbidden("Admin access required"))
		c.Abort()
		return
	}
	c.Next()
}
