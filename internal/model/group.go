package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Group is a sender-owned list of recurring recipients
type Group struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	Name    string    `json:"name" gorm:"size:100;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Members []GroupMember `json:"members,omitempty" gorm:"foreignKey:GroupID"`
}

func (g *Group) BeforeCreate(tx *gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

// GroupMember is one named (and usually emailed) person inside a group
type GroupMember struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	GroupID uuid.UUID `json:"group_id" gorm:"type:uuid;index;not null"`
	Name    string    `json:"name" gorm:"size:100;not null"`
	Email   string    `json:"email" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
}

func (m *GroupMember) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Collection is a sender-owned folder of memes used as a bulk source when
// assembling a dump
type Collection struct {
	ID      uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	OwnerID uuid.UUID `json:"owner_id" gorm:"type:uuid;index;not null"`
	Name    string    `json:"name" gorm:"size:100;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Memes []CollectionMeme `json:"memes,omitempty" gorm:"foreignKey:CollectionID"`
}

func (c *Collection) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// CollectionMeme is the ordered membership of a meme in a collection
type CollectionMeme struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	CollectionID uuid.UUID `json:"collection_id" gorm:"type:uuid;not null;uniqueIndex:idx_collection_meme"`
	MemeID       uuid.UUID `json:"meme_id" gorm:"type:uuid;not null;uniqueIndex:idx_collection_meme"`
	SortOrder    int       `json:"sort_order" gorm:"not null"`
	CreatedAt    time.Time `json:"created_at"`

	// Relations
	Meme Meme `json:"meme" gorm:"foreignKey:MemeID"`
}

func (cm *CollectionMeme) BeforeCreate(tx *gorm.DB) error {
	if cm.ID == uuid.Nil {
		cm.ID = uuid.New()
	}
	return nil
}
