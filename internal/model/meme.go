package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Meme represents an uploaded media item owned by its creator. The binary
// lives in object storage; this row only carries the reference.
type Meme struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID   uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	URL       string    `json:"url" gorm:"size:500;not null"`
	ObjectKey string    `json:"-" gorm:"size:500"` // key in object storage
	MimeType  string    `json:"mime_type" gorm:"size:100"`
	FileSize  int64     `json:"file_size"`

	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (m *Meme) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
