package repository

import (
	"context"
	"time"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type TodoRepository interface {
	Create(ctx context.Context, data *entity.Todo) error
	GetByID(ctx context.Context, id string) (*entity.Todo, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Todo, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Todo, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time) error
	MarkRewardGranted(ctx context.Context, id string) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}

type todoRepository struct{}

func NewTodoRepository() *todoRepository {
	return &todoRepository{}
}

func (r *todoRepository) Create(ctx context.Context, data *entity.Todo) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *todoRepository) GetByID(ctx context.Context, id string) (*entity.Todo, error) {
	var result entity.Todo
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *todoRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Todo, error) {
	var result entity.Todo
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *todoRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Todo, error) {
	var result []entity.Todo
	err := xcontext.DB(ctx).Where("user_id=?", userID).Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *todoRepository) MarkCompleted(ctx context.Context, id string, completedAt time.Time) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Todo{}).
		Where("id=? AND completed=?", id, false).
		Updates(map[string]any{
			"completed":    true,
			"completed_at": completedAt,
		})

	return affectOne(tx)
}

// MarkRewardGranted sets the one-shot reward flag. It returns false if the
// reward had been granted before.
func (r *todoRepository) MarkRewardGranted(ctx context.Context, id string) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(&entity.Todo{}).
		Where("id=? AND reward_granted=?", id, false).
		Update("reward_granted", true)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}

func (r *todoRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Todo{}, "id=?", id)
	return affectOne(tx)
}
