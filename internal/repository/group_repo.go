package repository

import (
	"github.com/google/uuid"
	"github.com/quangdng/memedump/internal/model"
	"gorm.io/gorm"
)

// GroupRepository handles database operations for Group and GroupMember
type GroupRepository struct {
	db *gorm.DB
}

func NewGroupRepository(db *gorm.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// Create inserts a new group
func (r *GroupRepository) Create(group *model.Group) error {
	return r.db.Create(group).Error
}

// FindOwned finds a group by id scoped to its owner
func (r *GroupRepository) FindOwned(groupID, ownerID uuid.UUID) (*model.Group, error) {
	var group model.Group
	err := r.db.
		Where("id = ? AND owner_id = ?", groupID, ownerID).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

// AddMember adds a member to a group
func (r *GroupRepository) AddMember(member *model.GroupMember) error {
	return r.db.Create(member).Error
}

// ListByOwner returns a user's groups with members preloaded
func (r *GroupRepository) ListByOwner(ownerID uuid.UUID) ([]model.Group, error) {
	var groups []model.Group
	err := r.db.
		Preload("Members", func(db *gorm.DB) *gorm.DB {
			return db.Order("group_members.created_at ASC")
		}).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&groups).Error
	return groups, err
}

// MembersOfGroup returns one owned group's members in membership order
func (r *GroupRepository) MembersOfGroup(ownerID, groupID uuid.UUID) ([]model.GroupMember, error) {
	var members []model.GroupMember
	err := r.db.
		Joins("JOIN groups ON groups.id = group_members.group_id").
		Where("groups.owner_id = ? AND group_members.group_id = ?", ownerID, groupID).
		Order("group_members.created_at ASC").
		Find(&members).Error
	return members, err
}
