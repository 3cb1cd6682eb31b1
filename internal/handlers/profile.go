package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vnfurniture/internal/middleware"
	"vnfurniture/internal/models"
	"vnfurniture/internal/state"
)

type profileData struct {
	Profile models.Profile
}

func (h *Handler) ProfilePage(c *gin.Context) {
	form := state.NewProfileForm(middleware.Auth(c).User(), h.Store.Profiles, middleware.Notifier(c))
	_ = form.Load(c)
	h.render(c, http.StatusOK, "profile", "Profile", profileData{Profile: form.Values()})
}

// SaveProfile upserts the profile; on failure the submitted values are shown again.
func (h *Handler) SaveProfile(c *gin.Context) {
	form := state.NewProfileForm(middleware.Auth(c).User(), h.Store.Profiles, middleware.Notifier(c))

	var in models.Profile
	if err := c.ShouldBind(&in); err != nil {
		middleware.Notifier(c).Error(formError(err))
		h.render(c, http.StatusUnprocessableEntity, "profile", "Profile", profileData{Profile: in})
		return
	}
	if err := form.Save(c, in); err != nil {
		h.render(c, http.StatusUnprocessableEntity, "profile", "Profile", profileData{Profile: form.Values()})
		return
	}
	middleware.Redirect(c, "/profile")
}
