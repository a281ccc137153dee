package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Dump is an ordered bundle of memes owned by one sender. A dump starts as a
// draft; is_draft flips to false exactly once, on first send or first
// share-link generation, and never flips back.
type Dump struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	SenderID   uuid.UUID `json:"sender_id" gorm:"type:uuid;index;not null"`
	Note       string    `json:"note" gorm:"type:text"`
	IsDraft    bool      `json:"is_draft" gorm:"default:true"`
	ShareToken *string   `json:"share_token,omitempty" gorm:"uniqueIndex;size:64"` // assigned once, never reassigned

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Sender     User            `json:"-" gorm:"foreignKey:SenderID"`
	Memes      []DumpMeme      `json:"memes,omitempty" gorm:"foreignKey:DumpID"`
	Recipients []DumpRecipient `json:"recipients,omitempty" gorm:"foreignKey:DumpID"`
}

func (d *Dump) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// DumpMeme fixes the membership and insertion order of a meme within a dump.
// SortOrder is monotonically increasing per dump and never reused.
type DumpMeme struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	DumpID    uuid.UUID `json:"dump_id" gorm:"type:uuid;not null;uniqueIndex:idx_dump_meme"`
	MemeID    uuid.UUID `json:"meme_id" gorm:"type:uuid;not null;uniqueIndex:idx_dump_meme"`
	SortOrder int       `json:"sort_order" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	Meme Meme `json:"meme" gorm:"foreignKey:MemeID"`
}

func (dm *DumpMeme) BeforeCreate(tx *gorm.DB) error {
	if dm.ID == uuid.Nil {
		dm.ID = uuid.New()
	}
	return nil
}
