package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserConnection is one entry in a sender's connection ledger: a recipient
// display name that may or may not have been claimed by a real account yet.
// A given name is unique per connector; matching is case-insensitive on the
// trim-normalized name.
type UserConnection struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ConnectorID uuid.UUID `json:"connector_id" gorm:"type:uuid;not null;uniqueIndex:idx_connector_name"`
	Name        string    `json:"name" gorm:"size:100;not null"`
	NameKey     string    `json:"-" gorm:"size:100;not null;uniqueIndex:idx_connector_name"`

	ConnectedUserID *uuid.UUID `json:"connected_user_id,omitempty" gorm:"type:uuid;index"` // NULL until claimed
	ConnectedAt     *time.Time `json:"connected_at,omitempty"`                             // set once on claim

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	ConnectedUser *User `json:"connected_user,omitempty" gorm:"foreignKey:ConnectedUserID"`
}

func (c *UserConnection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.NameKey == "" {
		c.NameKey = NormalizeName(c.Name)
	}
	return nil
}

// IsClaimed checks whether this connection is linked to a real account
func (c *UserConnection) IsClaimed() bool {
	return c.ConnectedUserID != nil
}

// NormalizeName produces the ledger's case-insensitive trim-normalized key
// for a recipient display name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
