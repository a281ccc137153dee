package service

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"github.com/quangdng/memedump/internal/repository"
	"github.com/quangdng/memedump/pkg/apperr"
	"gorm.io/gorm"
)

// GroupService manages the sender-owned recipient groups that feed the
// resolver
type GroupService struct {
	groupRepo *repository.GroupRepository
}

func NewGroupService(groupRepo *repository.GroupRepository) *GroupService {
	return &GroupService{groupRepo: groupRepo}
}

// Create makes a new empty group
func (s *GroupService) Create(ownerID uuid.UUID, name string) (*model.Group, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.InvalidArg("name required")
	}
	group := &model.Group{
		OwnerID: ownerID,
		Name:    name,
	}
	if err := s.groupRepo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMember appends a named person to an owned group
func (s *GroupService) AddMember(ownerID, groupID uuid.UUID, req model.AddGroupMemberRequest) (*model.GroupMember, error) {
	if _, err := s.groupRepo.FindOwned(groupID, ownerID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("group not found")
		}
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperr.InvalidArg("name required")
	}
	member := &model.GroupMember{
		GroupID: groupID,
		Name:    name,
		Email:   strings.ToLower(strings.TrimSpace(req.Email)),
	}
	if err := s.groupRepo.AddMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// List returns the owner's groups with members
func (s *GroupService) List(ownerID uuid.UUID) ([]model.Group, error) {
	return s.groupRepo.ListByOwner(ownerID)
}
