package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RecipientRepository handles database operations for DumpRecipient and Reaction
type RecipientRepository struct {
	db *gorm.DB
}

func NewRecipientRepository(db *gorm.DB) *RecipientRepository {
	return &RecipientRepository{db: db}
}

// Create inserts a new dump recipient
func (r *RecipientRepository) Create(recipient *model.DumpRecipient) error {
	return r.db.Create(recipient).Error
}

// FindByToken finds a recipient row by its private view token
func (r *RecipientRepository) FindByToken(token string) (*model.DumpRecipient, error) {
	var recipient model.DumpRecipient
	err := r.db.Where("token = ?", token).First(&recipient).Error
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}

// FindByClaimCode finds a recipient row by claim code with its dump preloaded
func (r *RecipientRepository) FindByClaimCode(code string) (*model.DumpRecipient, error) {
	var recipient model.DumpRecipient
	err := r.db.
		Preload("Dump").
		Where("claim_code = ?", code).
		First(&recipient).Error
	if err != nil {
		return nil, err
	}
	return &recipient, nil
}

// NamesForDump returns the display names already holding a slot on a dump
func (r *RecipientRepository) NamesForDump(dumpID uuid.UUID) ([]string, error) {
	var names []string
	err := r.db.Model(&model.DumpRecipient{}).
		Where("dump_id = ?", dumpID).
		Pluck("name", &names).Error
	return names, err
}

// ListForDump returns all recipients of a dump in creation order
func (r *RecipientRepository) ListForDump(dumpID uuid.UUID) ([]model.DumpRecipient, error) {
	var recipients []model.DumpRecipient
	err := r.db.
		Where("dump_id = ?", dumpID).
		Order("created_at ASC").
		Find(&recipients).Error
	return recipients, err
}

// TokenExists checks whether a recipient view token is already taken
func (r *RecipientRepository) TokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Model(&model.DumpRecipient{}).
		Where("token = ?", token).
		Count(&count).Error
	return count > 0, err
}

// ClaimCodeExists checks whether a claim code is already taken
func (r *RecipientRepository) ClaimCodeExists(code string) (bool, error) {
	var count int64
	err := r.db.Model(&model.DumpRecipient{}).
		Where("claim_code = ?", code).
		Count(&count).Error
	return count > 0, err
}

// SetNotified records the push delivery outcome on a recipient row
func (r *RecipientRepository) SetNotified(recipientID uuid.UUID, delivered bool) error {
	return r.db.Model(&model.DumpRecipient{}).
		Where("id = ?", recipientID).
		Update("notified", delivered).Error
}

// RegisterView records one view in a single atomic update: viewed_at is set
// only if still null, view_count always increments. Concurrent duplicate
// requests for the same token cannot double-set viewed_at. Returns the number
// of rows touched so callers can detect an unknown token.
func (r *RecipientRepository) RegisterView(token string, now time.Time) (int64, error) {
	res := r.db.Model(&model.DumpRecipient{}).
		Where("token = ?", token).
		Updates(map[string]interface{}{
			"viewed_at":  gorm.Expr("COALESCE(viewed_at, ?)", now),
			"view_count": gorm.Expr("view_count + 1"),
		})
	return res.RowsAffected, res.Error
}

// UpdateNote overwrites the recipient's free-text note, last write wins
func (r *RecipientRepository) UpdateNote(recipientID uuid.UUID, note string) error {
	return r.db.Model(&model.DumpRecipient{}).
		Where("id = ?", recipientID).
		Update("recipient_note", note).Error
}

// MarkClaimed sets claimed_at and the claiming user, guarded so a code can be
// redeemed at most once even under concurrent attempts. Returns the number of
// rows touched; zero means the slot was already claimed.
func (r *RecipientRepository) MarkClaimed(tx *gorm.DB, recipientID, claimingUserID uuid.UUID, now time.Time) (int64, error) {
	if tx == nil {
		tx = r.db
	}
	res := tx.Model(&model.DumpRecipient{}).
		Where("id = ? AND claimed_at IS NULL", recipientID).
		Updates(map[string]interface{}{
			"claimed_at": now,
			"user_id":    claimingUserID,
		})
	return res.RowsAffected, res.Error
}

// UpsertReaction sets the single current emoji for a (recipient, meme) pair,
// replacing any prior emoji in place
func (r *RecipientRepository) UpsertReaction(recipientID, memeID uuid.UUID, emoji string) error {
	reaction := model.Reaction{
		DumpRecipientID: recipientID,
		MemeID:          memeID,
		Emoji:           emoji,
	}
	return r.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "dump_recipient_id"}, {Name: "meme_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"emoji":      emoji,
			"updated_at": time.Now(),
		}),
	}).Create(&reaction).Error
}

// DeleteReaction removes the reaction row for a (recipient, meme) pair.
// Deleting an absent row is not an error.
func (r *RecipientRepository) DeleteReaction(recipientID, memeID uuid.UUID) error {
	return r.db.
		Where("dump_recipient_id = ? AND meme_id = ?", recipientID, memeID).
		Delete(&model.Reaction{}).Error
}

// GetReactions returns all reactions a recipient holds on their dump
func (r *RecipientRepository) GetReactions(recipientID uuid.UUID) ([]model.Reaction, error) {
	var reactions []model.Reaction
	err := r.db.
		Where("dump_recipient_id = ?", recipientID).
		Find(&reactions).Error
	return reactions, err
}
