package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account. A user is created either on email registration
// or on first device pairing; device-paired users may attach an email later.
type User struct {
	ID       uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	Name     string    `json:"name" gorm:"size:100;not null"`
	Email    *string   `json:"email,omitempty" gorm:"uniqueIndex;size:255"` // NULL for device-only users
	Password string    `json:"-" gorm:"size:255"`                           // empty for device-only users
	DeviceID *string   `json:"-" gorm:"uniqueIndex;size:255"`               // pairing identifier, NULL for email users
	Avatar   string    `json:"avatar" gorm:"size:500;default:''"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasEmail checks if an email is attached to this account
func (u *User) HasEmail() bool {
	return u.Email != nil && *u.Email != ""
}

// UserResponse is the safe version of User for API responses
type UserResponse struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Email  string    `json:"email,omitempty"`
	Avatar string    `json:"avatar"`
}

// ToResponse converts User to safe UserResponse
func (u *User) ToResponse() UserResponse {
	resp := UserResponse{
		ID:     u.ID,
		Name:   u.Name,
		Avatar: u.Avatar,
	}
	if u.Email != nil {
		resp.Email = *u.Email
	}
	return resp
}
