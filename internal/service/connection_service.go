package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
)

// ConnectionService fronts the connection ledger for the sender's own UI:
// listing entries and the "scan QR, enter name" pending-entry flow.
type ConnectionService struct {
	connRepo *repository.ConnectionRepository
}

func NewConnectionService(connRepo *repository.ConnectionRepository) *ConnectionService {
	return &ConnectionService{connRepo: connRepo}
}

// CreatePending records a recipient name ahead of any send. Idempotent: the
// same name for the same sender always maps to the same ledger entry.
func (s *ConnectionService) CreatePending(senderID uuid.UUID, name string) (*model.UserConnection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArg("name required")
	}
	return s.connRepo.UpsertPending(senderID, name)
}

// List returns the sender's full ledger
func (s *ConnectionService) List(senderID uuid.UUID) ([]model.UserConnection, error) {
	return s.connRepo.ListByConnector(senderID)
}
