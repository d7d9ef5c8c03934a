package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type GroupMemberRepository interface {
	Create(ctx context.Context, data *entity.GroupMember) error
	GetByID(ctx context.Context, id string) (*entity.GroupMember, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.GroupMember, error)
	Get(ctx context.Context, userID, groupID string) (*entity.GroupMember, error)
	GetForUpdate(ctx context.Context, userID, groupID string) (*entity.GroupMember, error)
	GetListByGroupID(ctx context.Context, groupID string, status ...entity.MembershipStatus) ([]entity.GroupMember, error)
	CountOthers(ctx context.Context, groupID, exceptUserID string) (int64, error)
	Activate(ctx context.Context, id string) error
	UpdateRole(ctx context.Context, id string, from, to entity.GroupRole) error
	DeleteByID(ctx context.Context, id string) error
	DeleteByGroupID(ctx context.Context, groupID string) error
}

type groupMemberRepository struct{}

func NewGroupMemberRepository() *groupMemberRepository {
	return &groupMemberRepository{}
}

// Create relies on the unique index over (user_id, group_id) and on the unique
// owner_of column.
func (r *groupMemberRepository) Create(ctx context.Context, data *entity.GroupMember) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *groupMemberRepository) GetByID(ctx context.Context, id string) (*entity.GroupMember, error) {
	var result entity.GroupMember
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupMemberRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.GroupMember, error) {
	var result entity.GroupMember
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupMemberRepository) Get(ctx context.Context, userID, groupID string) (*entity.GroupMember, error) {
	var result entity.GroupMember
	err := xcontext.DB(ctx).Take(&result, "user_id=? AND group_id=?", userID, groupID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupMemberRepository) GetForUpdate(ctx context.Context, userID, groupID string) (*entity.GroupMember, error) {
	var result entity.GroupMember
	err := xcontext.DB(ctx).
		Clauses(lockForUpdate).
		Take(&result, "user_id=? AND group_id=?", userID, groupID).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *groupMemberRepository) GetListByGroupID(
	ctx context.Context, groupID string, status ...entity.MembershipStatus,
) ([]entity.GroupMember, error) {
	var result []entity.GroupMember
	tx := xcontext.DB(ctx).
		Preload("User").
		Where("group_id=?", groupID)

	if len(status) > 0 {
		tx = tx.Where("status IN (?)", status)
	}

	if err := tx.Order("joined_at ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

// CountOthers counts active members of the group, not including the given
// user.
func (r *groupMemberRepository) CountOthers(ctx context.Context, groupID, exceptUserID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.GroupMember{}).
		Where("group_id=? AND user_id<>? AND status=?", groupID, exceptUserID, entity.MembershipActive).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

// Activate moves a pending membership to active. It misses if the membership
// is not pending anymore.
func (r *groupMemberRepository) Activate(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).
		Model(&entity.GroupMember{}).
		Where("id=? AND status=?", id, entity.MembershipPending).
		Update("status", entity.MembershipActive)

	return affectOne(tx)
}

// UpdateRole changes the role only if the membership still holds the role the
// caller has read.
func (r *groupMemberRepository) UpdateRole(ctx context.Context, id string, from, to entity.GroupRole) error {
	tx := xcontext.DB(ctx).
		Model(&entity.GroupMember{}).
		Where("id=? AND role=?", id, from).
		Update("role", to)

	return affectOne(tx)
}

func (r *groupMemberRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.GroupMember{}, "id=?", id)
	return affectOne(tx)
}

// DeleteByGroupID removes every membership of the group, pending ones
// included.
func (r *groupMemberRepository) DeleteByGroupID(ctx context.Context, groupID string) error {
	return xcontext.DB(ctx).Delete(&entity.GroupMember{}, "group_id=?", groupID).Error
}
