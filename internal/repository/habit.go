package repository

import (
	"context"
	"time"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type HabitRepository interface {
	Create(ctx context.Context, data *entity.Habit) error
	GetByID(ctx context.Context, id string) (*entity.Habit, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Habit, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Habit, error)
	UpdatePaused(ctx context.Context, id string, paused bool) error
	IncreaseCounter(ctx context.Context, id string, positive, negative int64) error
	UpdateRewardState(ctx context.Context, id string, current, longest int, revertibleGold int64) error
	ClaimRewardLock(ctx context.Context, id string, now, until time.Time) (bool, error)
	DeleteByID(ctx context.Context, id string) error
}

type habitRepository struct{}

func NewHabitRepository() *habitRepository {
	return &habitRepository{}
}

func (r *habitRepository) Create(ctx context.Context, data *entity.Habit) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *habitRepository) GetByID(ctx context.Context, id string) (*entity.Habit, error) {
	var result entity.Habit
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *habitRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Habit, error) {
	var result entity.Habit
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *habitRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Habit, error) {
	var result []entity.Habit
	err := xcontext.DB(ctx).Where("user_id=?", userID).Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *habitRepository) UpdatePaused(ctx context.Context, id string, paused bool) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Habit{}).
		Where("id=?", id).
		Update("is_paused", paused)

	return affectOne(tx)
}

// IncreaseCounter applies relative deltas to the counters. A negative delta
// never takes a counter below zero.
func (r *habitRepository) IncreaseCounter(ctx context.Context, id string, positive, negative int64) error {
	updateMap := map[string]any{}
	if positive > 0 {
		updateMap["positive_counter"] = gorm.Expr("positive_counter+?", positive)
	} else if positive < 0 {
		updateMap["positive_counter"] = gorm.Expr(
			"CASE WHEN positive_counter>? THEN positive_counter-? ELSE 0 END", -positive, -positive)
	}

	if negative > 0 {
		updateMap["negative_counter"] = gorm.Expr("negative_counter+?", negative)
	} else if negative < 0 {
		updateMap["negative_counter"] = gorm.Expr(
			"CASE WHEN negative_counter>? THEN negative_counter-? ELSE 0 END", -negative, -negative)
	}

	if len(updateMap) == 0 {
		return nil
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Habit{}).
		Where("id=?", id).
		Updates(updateMap)

	return affectOne(tx)
}

func (r *habitRepository) UpdateRewardState(
	ctx context.Context, id string, current, longest int, revertibleGold int64,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Habit{}).
		Where("id=?", id).
		Updates(map[string]any{
			"current_streak":  current,
			"longest_streak":  longest,
			"revertible_gold": revertibleGold,
		})

	return affectOne(tx)
}

func (r *habitRepository) ClaimRewardLock(ctx context.Context, id string, now, until time.Time) (bool, error) {
	return claimRewardLock(ctx, &entity.Habit{}, id, now, until)
}

func (r *habitRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Habit{}, "id=?", id)
	return affectOne(tx)
}
