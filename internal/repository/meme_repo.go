package repository

import (
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
)

// MemeRepository handles database operations for Meme and Collection
type MemeRepository struct {
	db *gorm.DB
}

func NewMemeRepository(db *gorm.DB) *MemeRepository {
	return &MemeRepository{db: db}
}

// Create inserts a new meme
func (r *MemeRepository) Create(meme *model.Meme) error {
	return r.db.Create(meme).Error
}

// ListByOwner returns a user's memes, newest first
func (r *MemeRepository) ListByOwner(ownerID uuid.UUID) ([]model.Meme, error) {
	var memes []model.Meme
	err := r.db.
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&memes).Error
	return memes, err
}

// FindOwned returns the given memes in input order, verifying every id exists
// and belongs to the owner
func (r *MemeRepository) FindOwned(ownerID uuid.UUID, ids []uuid.UUID) ([]model.Meme, error) {
	var memes []model.Meme
	err := r.db.
		Where("owner_id = ? AND id IN ?", ownerID, ids).
		Find(&memes).Error
	if err != nil {
		return nil, err
	}
	if len(memes) != len(ids) {
		return nil, gorm.ErrRecordNotFound
	}
	byID := make(map[uuid.UUID]model.Meme, len(memes))
	for _, m := range memes {
		byID[m.ID] = m
	}
	ordered := make([]model.Meme, 0, len(ids))
	for _, id := range ids {
		ordered = append(ordered, byID[id])
	}
	return ordered, nil
}

// FindCollection returns an owner's collection with its memes in sort order
func (r *MemeRepository) FindCollection(ownerID, collectionID uuid.UUID) (*model.Collection, error) {
	var collection model.Collection
	err := r.db.
		Preload("Memes", func(db *gorm.DB) *gorm.DB {
			return db.Order("collection_memes.sort_order ASC")
		}).
		Preload("Memes.Meme").
		Where("id = ? AND owner_id = ?", collectionID, ownerID).
		First(&collection).Error
	if err != nil {
		return nil, err
	}
	return &collection, nil
}
