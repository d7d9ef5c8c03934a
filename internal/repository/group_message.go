package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type GroupMessageRepository interface {
	Create(ctx context.Context, data *entity.GroupMessage) error
	GetListByGroupID(ctx context.Context, groupID string, offset, limit int) ([]entity.GroupMessage, error)
	DeleteByGroupID(ctx context.Context, groupID string) error
}

type groupMessageRepository struct{}

func NewGroupMessageRepository() *groupMessageRepository {
	return &groupMessageRepository{}
}

func (r *groupMessageRepository) Create(ctx context.Context, data *entity.GroupMessage) error {
	return xcontext.DB(ctx).Create(data).Error
}

// GetListByGroupID returns the messages of a group with their authors, newest
// first.
func (r *groupMessageRepository) GetListByGroupID(
	ctx context.Context, groupID string, offset, limit int,
) ([]entity.GroupMessage, error) {
	var result []entity.GroupMessage
	err := xcontext.DB(ctx).
		Preload("User").
		Where("group_id=?", groupID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *groupMessageRepository) DeleteByGroupID(ctx context.Context, groupID string) error {
	return xcontext.DB(ctx).Delete(&entity.GroupMessage{}, "group_id=?", groupID).Error
}
