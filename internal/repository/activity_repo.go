package repository

import (
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
)

// ActivityRepository reads the persisted effects of sends, views, reactions
// and notes back out as feed events, always scoped to one sender's dumps
type ActivityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// SentEvents returns one event per dump, timestamped at creation
func (r *ActivityRepository) SentEvents(senderID uuid.UUID, limit int) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := r.db.
		Table("dumps").
		Select("'sent' AS type, dumps.created_at AS timestamp, dumps.id AS dump_id, dumps.note AS dump_note").
		Where("dumps.sender_id = ? AND dumps.deleted_at IS NULL", senderID).
		Order("dumps.created_at DESC").
		Limit(limit).
		Scan(&events).Error
	return events, err
}

// ViewEvents returns one event per recipient first view
func (r *ActivityRepository) ViewEvents(senderID uuid.UUID, limit int) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := r.db.
		Table("dump_recipients").
		Select("'view' AS type, dump_recipients.viewed_at AS timestamp, dumps.id AS dump_id, dumps.note AS dump_note, dump_recipients.name AS recipient_name").
		Joins("JOIN dumps ON dumps.id = dump_recipients.dump_id").
		Where("dumps.sender_id = ? AND dumps.deleted_at IS NULL AND dump_recipients.viewed_at IS NOT NULL", senderID).
		Order("dump_recipients.viewed_at DESC").
		Limit(limit).
		Scan(&events).Error
	return events, err
}

// ReactionEvents returns one event per reaction row, timestamped at its creation
func (r *ActivityRepository) ReactionEvents(senderID uuid.UUID, limit int) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := r.db.
		Table("reactions").
		Select("'reaction' AS type, reactions.created_at AS timestamp, dumps.id AS dump_id, dumps.note AS dump_note, dump_recipients.name AS recipient_name, reactions.emoji AS emoji").
		Joins("JOIN dump_recipients ON dump_recipients.id = reactions.dump_recipient_id").
		Joins("JOIN dumps ON dumps.id = dump_recipients.dump_id").
		Where("dumps.sender_id = ? AND dumps.deleted_at IS NULL", senderID).
		Order("reactions.created_at DESC").
		Limit(limit).
		Scan(&events).Error
	return events, err
}

// NoteEvents returns one event per non-empty recipient note. Notes have no
// timestamp column of their own: they reuse the recipient's viewed_at, falling
// back to the row's updated_at when the note was written without a page view.
func (r *ActivityRepository) NoteEvents(senderID uuid.UUID, limit int) ([]model.ActivityEvent, error) {
	var events []model.ActivityEvent
	err := r.db.
		Table("dump_recipients").
		Select("'note' AS type, COALESCE(dump_recipients.viewed_at, dump_recipients.updated_at) AS timestamp, dumps.id AS dump_id, dumps.note AS dump_note, dump_recipients.name AS recipient_name, dump_recipients.recipient_note AS note").
		Joins("JOIN dumps ON dumps.id = dump_recipients.dump_id").
		Where("dumps.sender_id = ? AND dumps.deleted_at IS NULL AND dump_recipients.recipient_note <> ''", senderID).
		Order("COALESCE(dump_recipients.viewed_at, dump_recipients.updated_at) DESC").
		Limit(limit).
		Scan(&events).Error
	return events, err
}

// FirstMemeURLs returns the URL of the first meme (lowest sort_order) for each
// of the given dumps, for feed thumbnails
func (r *ActivityRepository) FirstMemeURLs(dumpIDs []uuid.UUID) (map[uuid.UUID]string, error) {
	urls := make(map[uuid.UUID]string)
	if len(dumpIDs) == 0 {
		return urls, nil
	}
	var rows []struct {
		DumpID uuid.UUID
		URL    string
	}
	err := r.db.
		Table("dump_memes").
		Select("dump_memes.dump_id AS dump_id, memes.url AS url").
		Joins("JOIN memes ON memes.id = dump_memes.meme_id").
		Where("dump_memes.dump_id IN ?", dumpIDs).
		Order("dump_memes.dump_id ASC, dump_memes.sort_order ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if _, ok := urls[row.DumpID]; !ok {
			urls[row.DumpID] = row.URL
		}
	}
	return urls, nil
}
