package repository

import (
	"context"
	"time"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type DailyRepository interface {
	Create(ctx context.Context, data *entity.Daily) error
	GetByID(ctx context.Context, id string) (*entity.Daily, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.Daily, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.Daily, error)
	MarkCompleted(ctx context.Context, id string, completedAt time.Time, current, longest int) error
	ResetDay(ctx context.Context, id string, current int) error
	ClaimRewardLock(ctx context.Context, id string, now, until time.Time) (bool, error)
	DeleteByID(ctx context.Context, id string) error

	CreateLog(ctx context.Context, data *entity.DailyLog) error
	GetLogs(ctx context.Context, dailyID string, limit int) ([]entity.DailyLog, error)
}

type dailyRepository struct{}

func NewDailyRepository() *dailyRepository {
	return &dailyRepository{}
}

func (r *dailyRepository) Create(ctx context.Context, data *entity.Daily) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *dailyRepository) GetByID(ctx context.Context, id string) (*entity.Daily, error) {
	var result entity.Daily
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *dailyRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.Daily, error) {
	var result entity.Daily
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *dailyRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.Daily, error) {
	var result []entity.Daily
	err := xcontext.DB(ctx).Where("user_id=?", userID).Order("created_at ASC").Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

// MarkCompleted flips the daily to completed. It only matches a daily which is
// not completed yet, so a second completion of the same day is a miss.
func (r *dailyRepository) MarkCompleted(
	ctx context.Context, id string, completedAt time.Time, current, longest int,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Daily{}).
		Where("id=? AND completed=?", id, false).
		Updates(map[string]any{
			"completed":         true,
			"last_completed_at": completedAt,
			"current_streak":    current,
			"longest_streak":    longest,
		})

	return affectOne(tx)
}

// ResetDay opens a new day for the daily: completed goes back to false and the
// streak is set to current.
func (r *dailyRepository) ResetDay(ctx context.Context, id string, current int) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Daily{}).
		Where("id=?", id).
		Updates(map[string]any{
			"completed":      false,
			"current_streak": current,
		})

	return affectOne(tx)
}

func (r *dailyRepository) ClaimRewardLock(ctx context.Context, id string, now, until time.Time) (bool, error) {
	return claimRewardLock(ctx, &entity.Daily{}, id, now, until)
}

func (r *dailyRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.Daily{}, "id=?", id)
	return affectOne(tx)
}

func (r *dailyRepository) CreateLog(ctx context.Context, data *entity.DailyLog) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *dailyRepository) GetLogs(ctx context.Context, dailyID string, limit int) ([]entity.DailyLog, error) {
	var result []entity.DailyLog
	err := xcontext.DB(ctx).
		Where("daily_id=?", dailyID).
		Order("date DESC").
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
