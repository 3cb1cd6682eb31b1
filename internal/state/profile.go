package state

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"vnfurniture/internal/apperror"
	"vnfurniture/internal/logger"
	"vnfurniture/internal/models"
	"vnfurniture/internal/store"
)

// ProfileForm loads and saves the single profile of the signed-in user.
type ProfileForm struct {
	user     *models.User
	profiles store.Profiles
	notify   Notifier
	values   models.Profile
}

func NewProfileForm(user *models.User, profiles store.Profiles, notify Notifier) *ProfileForm {
	if notify == nil {
		notify = Discard{}
	}
	return &ProfileForm{user: user, profiles: profiles, notify: notify}
}

// Load fills the form. A user without a profile yet gets empty values.
func (f *ProfileForm) Load(ctx context.Context) error {
	if f.user == nil {
		return apperror.Unauthorized("Please sign in to view your profile")
	}
	p, err := f.profiles.GetByUser(ctx, f.user.ID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		f.values = models.Profile{UserID: f.user.ID}
		return nil
	case err != nil:
		logger.Error(ctx, "loading profile failed", err, zap.String("user_id", f.user.ID.String()))
		f.notify.Error("Failed to load profile")
		return apperror.Remote("Failed to load profile", err)
	}
	f.values = *p
	return nil
}

// Save upserts the profile keyed by the user id. Saving the same values twice
// leaves a single row.
func (f *ProfileForm) Save(ctx context.Context, values models.Profile) error {
	if f.user == nil {
		return apperror.Unauthorized("Please sign in to update your profile")
	}
	values.UserID = f.user.ID
	values.FullName = strings.TrimSpace(values.FullName)
	values.Address = strings.TrimSpace(values.Address)
	values.Phone = strings.TrimSpace(values.Phone)
	f.values = values

	if err := f.profiles.Upsert(ctx, &values); err != nil {
		logger.Error(ctx, "saving profile failed", err, zap.String("user_id", f.user.ID.String()))
		f.notify.Error("Error updating profile")
		return apperror.Remote("Error updating profile", err)
	}
	f.values = values
	f.notify.Success("Profile updated successfully")
	return nil
}

func (f *ProfileForm) Values() models.Profile {
	return f.values
}
