package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type GroupWithMembers struct {
	entity.Group
	Members int64
}

type GroupRepository interface {
	Create(ctx context.Context, data *entity.Group) error
	GetByID(ctx context.Context, id string) (*entity.Group, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Group, error)
	GetPublicList(ctx context.Context, offset, limit int) ([]GroupWithMembers, error)
	DeleteByID(ctx context.Context, id string) error
}

type groupRepository struct{}

func NewGroupRepository() *groupRepository {
	return &groupRepository{}
}

func (r *groupRepository) Create(ctx context.Context, data *entity.Group) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *groupRepository) GetByID(ctx context.Context, id string) (*entity.Group, error) {
	var result entity.Group
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetByIDForUpdate locks the group row. Joins and the departure of the owner
// take this lock so a group is never dissolved under a new member.
func (r *groupRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Group, error) {
	var result entity.Group
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPublicList returns public groups, newest first, with their number of
// active members.
func (r *groupRepository) GetPublicList(ctx context.Context, offset, limit int) ([]GroupWithMembers, error) {
	var result []GroupWithMembers
	err := xcontext.DB(ctx).
		Model(&entity.Group{}).
		Select("habit_groups.*, "+
			"(SELECT COUNT(*) FROM group_members WHERE group_members.group_id=habit_groups.id "+
			"AND group_members.status=?) AS members", entity.MembershipActive).
		Where("habit_groups.is_public=?", true).
		Order("habit_groups.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *groupRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Group{}, "id=?", id)
	return affectOne(tx)
}
