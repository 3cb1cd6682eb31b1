package models

import "github.com/google/uuid"

// Profile is unique per user and written with an upsert on UserID.
type Profile struct {
	ID       uuid.UUID `json:"id" form:"-"`
	UserID   uuid.UUID `json:"user_id" form:"-"`
	FullName string    `json:"full_name" form:"full_name" binding:"required,max=200"`
	Address  string    `json:"address" form:"address" binding:"required,max=1000"`
	Phone    string    `json:"phone" form:"phone" binding:"required,max=40"`
}
