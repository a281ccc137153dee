package repository

import (
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
)

// DumpRepository handles database operations for Dump and DumpMeme
type DumpRepository struct {
	db *gorm.DB
}

func NewDumpRepository(db *gorm.DB) *DumpRepository {
	return &DumpRepository{db: db}
}

// Create inserts a new dump, optionally with initial memes
func (r *DumpRepository) Create(dump *model.Dump) error {
	return r.db.Create(dump).Error
}

// FindOwned finds a dump by id scoped to its sender. Callers cannot tell an
// unknown id from someone else's dump; both come back as record-not-found.
func (r *DumpRepository) FindOwned(dumpID, senderID uuid.UUID) (*model.Dump, error) {
	var dump model.Dump
	err := r.db.
		Where("id = ? AND sender_id = ?", dumpID, senderID).
		First(&dump).Error
	if err != nil {
		return nil, err
	}
	return &dump, nil
}

// FindByID finds a dump by id alone (recipient-facing lookups)
func (r *DumpRepository) FindByID(id uuid.UUID) (*model.Dump, error) {
	var dump model.Dump
	err := r.db.Where("id = ?", id).First(&dump).Error
	if err != nil {
		return nil, err
	}
	return &dump, nil
}

// FindByShareToken finds a dump by its public share token
func (r *DumpRepository) FindByShareToken(shareToken string) (*model.Dump, error) {
	var dump model.Dump
	err := r.db.Where("share_token = ?", shareToken).First(&dump).Error
	if err != nil {
		return nil, err
	}
	return &dump, nil
}

// ListBySender returns a sender's dumps with membership preloaded, newest first
func (r *DumpRepository) ListBySender(senderID uuid.UUID) ([]model.Dump, error) {
	var dumps []model.Dump
	err := r.db.
		Preload("Memes", func(db *gorm.DB) *gorm.DB {
			return db.Order("dump_memes.sort_order ASC")
		}).
		Preload("Memes.Meme").
		Preload("Recipients").
		Where("sender_id = ?", senderID).
		Order("created_at DESC").
		Find(&dumps).Error
	return dumps, err
}

// UpdateNote overwrites the sender's note on a dump. The update is guarded on
// the draft flag: a sent dump's note is frozen. Returns the number of rows
// touched so callers can tell the two apart.
func (r *DumpRepository) UpdateNote(dumpID uuid.UUID, note string) (int64, error) {
	res := r.db.Model(&model.Dump{}).
		Where("id = ? AND is_draft = ?", dumpID, true).
		Update("note", note)
	return res.RowsAffected, res.Error
}

// MarkSent flips is_draft to false. The flip is one-way: an already sent dump
// is left untouched.
func (r *DumpRepository) MarkSent(dumpID uuid.UUID) error {
	return r.db.Model(&model.Dump{}).
		Where("id = ? AND is_draft = ?", dumpID, true).
		Update("is_draft", false).Error
}

// SetShareToken assigns the share token and flips is_draft in one update,
// guarded so an existing token is never overwritten
func (r *DumpRepository) SetShareToken(dumpID uuid.UUID, token string) error {
	return r.db.Model(&model.Dump{}).
		Where("id = ? AND share_token IS NULL", dumpID).
		Updates(map[string]interface{}{
			"share_token": token,
			"is_draft":    false,
		}).Error
}

// ShareTokenExists checks whether a share token is already taken
func (r *DumpRepository) ShareTokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Model(&model.Dump{}).
		Where("share_token = ?", token).
		Count(&count).Error
	return count > 0, err
}

// CountMemes returns the number of memes in a dump
func (r *DumpRepository) CountMemes(dumpID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.Model(&model.DumpMeme{}).
		Where("dump_id = ?", dumpID).
		Count(&count).Error
	return count, err
}

// AppendMemes adds memes after the current end of the dump. Prior rows keep
// their sort_order; new rows continue the sequence.
func (r *DumpRepository) AppendMemes(dumpID uuid.UUID, memeIDs []uuid.UUID) error {
	if len(memeIDs) == 0 {
		return nil
	}
	return r.db.Transaction(func(tx *gorm.DB) error {
		var max *int
		if err := tx.Model(&model.DumpMeme{}).
			Where("dump_id = ?", dumpID).
			Select("MAX(sort_order)").
			Scan(&max).Error; err != nil {
			return err
		}
		next := 1
		if max != nil {
			next = *max + 1
		}
		rows := make([]model.DumpMeme, 0, len(memeIDs))
		for i, memeID := range memeIDs {
			rows = append(rows, model.DumpMeme{
				DumpID:    dumpID,
				MemeID:    memeID,
				SortOrder: next + i,
			})
		}
		return tx.Create(&rows).Error
	})
}

// GetMemes returns the memes of a dump in insertion order
func (r *DumpRepository) GetMemes(dumpID uuid.UUID) ([]model.Meme, error) {
	var memes []model.Meme
	err := r.db.
		Table("memes").
		Joins("JOIN dump_memes ON dump_memes.meme_id = memes.id").
		Where("dump_memes.dump_id = ?", dumpID).
		Order("dump_memes.sort_order ASC").
		Find(&memes).Error
	return memes, err
}

// ContainsMeme checks whether a meme belongs to a dump
func (r *DumpRepository) ContainsMeme(dumpID, memeID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&model.DumpMeme{}).
		Where("dump_id = ? AND meme_id = ?", dumpID, memeID).
		Count(&count).Error
	return count > 0, err
}
