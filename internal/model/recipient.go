package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DumpRecipient is one resolved recipient of a sent dump. Exactly one of
// UserID and ClaimCode is set at creation time: a recipient already connected
// to the sender gets a UserID and a silent push, anyone else gets a single-use
// claim code alongside their private view token.
type DumpRecipient struct {
	ID     uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DumpID uuid.UUID `json:"dump_id" gorm:"type:uuid;index;not null"`
	Name   string    `json:"name" gorm:"size:100;not null"` // display label, not a unique key
	Email  string    `json:"email,omitempty" gorm:"size:255"`

	Token     string     `json:"token" gorm:"uniqueIndex;size:64;not null"` // private view link capability
	UserID    *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	ClaimCode *string    `json:"claim_code,omitempty" gorm:"uniqueIndex;size:16"`
	ClaimedAt *time.Time `json:"claimed_at,omitempty"` // set once, irreversible

	ViewedAt      *time.Time `json:"viewed_at,omitempty"` // first view only
	ViewCount     int        `json:"view_count" gorm:"default:0"`
	RecipientNote string     `json:"recipient_note" gorm:"type:text"` // last write wins
	Notified      bool       `json:"notified" gorm:"default:false"`   // push delivery outcome

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Dump Dump  `json:"-" gorm:"foreignKey:DumpID"`
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (r *DumpRecipient) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// IsClaimed checks whether the claim code has already been redeemed
func (r *DumpRecipient) IsClaimed() bool {
	return r.ClaimedAt != nil
}

// Reaction is the single current emoji a recipient holds on one meme of a
// dump. At most one row per (recipient, meme); removing a reaction deletes
// the row rather than blanking it.
type Reaction struct {
	ID              uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DumpRecipientID uuid.UUID `json:"dump_recipient_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipient_meme"`
	MemeID          uuid.UUID `json:"meme_id" gorm:"type:uuid;not null;uniqueIndex:idx_recipient_meme"`
	Emoji           string    `json:"emoji" gorm:"size:16;not null"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`

	// Relations
	DumpRecipient DumpRecipient `json:"-" gorm:"foreignKey:DumpRecipientID"`
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
