package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
)

// ConnectionRepository handles database operations for the connection ledger
type ConnectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{db: db}
}

// FindClaimed looks up a claimed ledger entry for (sender, name). Entries
// still waiting to be claimed do not match.
func (r *ConnectionRepository) FindClaimed(senderID uuid.UUID, name string) (*model.UserConnection, error) {
	var conn model.UserConnection
	err := r.db.
		Where("connector_id = ? AND name_key = ? AND connected_user_id IS NOT NULL",
			senderID, model.NormalizeName(name)).
		First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// UpsertPending creates a ledger entry for (sender, name) or returns the
// existing one unchanged
func (r *ConnectionRepository) UpsertPending(senderID uuid.UUID, name string) (*model.UserConnection, error) {
	conn := model.UserConnection{
		ConnectorID: senderID,
		Name:        name,
		NameKey:     model.NormalizeName(name),
	}
	err := r.db.
		Where("connector_id = ? AND name_key = ?", senderID, conn.NameKey).
		FirstOrCreate(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

// MarkConnected links a ledger entry to a claimed account. Called from the
// claim flow; creates the entry when the send predates the ledger row.
func (r *ConnectionRepository) MarkConnected(tx *gorm.DB, senderID uuid.UUID, name string, connectedUserID uuid.UUID, now time.Time) error {
	if tx == nil {
		tx = r.db
	}
	conn := model.UserConnection{
		ConnectorID: senderID,
		Name:        name,
		NameKey:     model.NormalizeName(name),
	}
	if err := tx.
		Where("connector_id = ? AND name_key = ?", senderID, conn.NameKey).
		FirstOrCreate(&conn).Error; err != nil {
		return err
	}
	return tx.Model(&model.UserConnection{}).
		Where("id = ?", conn.ID).
		Updates(map[string]interface{}{
			"connected_user_id": connectedUserID,
			"connected_at":      now,
		}).Error
}

// FindOwned returns the requested ledger entries scoped to their connector,
// preserving input order
func (r *ConnectionRepository) FindOwned(senderID uuid.UUID, ids []uuid.UUID) ([]model.UserConnection, error) {
	var conns []model.UserConnection
	err := r.db.
		Where("connector_id = ? AND id IN ?", senderID, ids).
		Find(&conns).Error
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]model.UserConnection, len(conns))
	for _, c := range conns {
		byID[c.ID] = c
	}
	ordered := make([]model.UserConnection, 0, len(conns))
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			ordered = append(ordered, c)
		}
	}
	return ordered, nil
}

// ListByConnector returns a sender's full ledger, oldest first
func (r *ConnectionRepository) ListByConnector(senderID uuid.UUID) ([]model.UserConnection, error) {
	var conns []model.UserConnection
	err := r.db.
		Where("connector_id = ?", senderID).
		Order("created_at ASC").
		Find(&conns).Error
	return conns, err
}
