// Package authz holds the capability checks behind restricted pages.
package authz

import "vnfurniture/internal/models"

// CanManageCatalog reports whether u may create and delete products.
func CanManageCatalog(u *models.User) bool {
	return u != nil && u.Role == models.RoleAdmin
}
