package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type UserChallengeRepository interface {
	Create(ctx context.Context, data *entity.UserChallenge) error
	GetByID(ctx context.Context, id string) (*entity.UserChallenge, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.UserChallenge, error)
	GetListByUserID(ctx context.Context, userID string) ([]entity.UserChallenge, error)
	GetListByChallengeID(ctx context.Context, challengeID string) ([]entity.UserChallenge, error)
	UpdateProgress(ctx context.Context, id string, progress int64, completed bool) error
	DeleteByID(ctx context.Context, id string) error
}

type userChallengeRepository struct{}

func NewUserChallengeRepository() *userChallengeRepository {
	return &userChallengeRepository{}
}

// Create relies on the unique index over (user_id, challenge_id); a second
// insert of the same pair fails with a duplicated key error.
func (r *userChallengeRepository) Create(ctx context.Context, data *entity.UserChallenge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userChallengeRepository) GetByID(ctx context.Context, id string) (*entity.UserChallenge, error) {
	var result entity.UserChallenge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userChallengeRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.UserChallenge, error) {
	var result entity.UserChallenge
	if err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userChallengeRepository) GetListByUserID(ctx context.Context, userID string) ([]entity.UserChallenge, error) {
	var result []entity.UserChallenge
	err := xcontext.DB(ctx).
		Preload("Challenge").
		Where("user_id=?", userID).
		Order("joined_at DESC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userChallengeRepository) GetListByChallengeID(
	ctx context.Context, challengeID string,
) ([]entity.UserChallenge, error) {
	var result []entity.UserChallenge
	err := xcontext.DB(ctx).
		Preload("User").
		Where("challenge_id=?", challengeID).
		Order("joined_at ASC").
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userChallengeRepository) UpdateProgress(ctx context.Context, id string, progress int64, completed bool) error {
	tx := xcontext.DB(ctx).
		Model(&entity.UserChallenge{}).
		Where("id=?", id).
		Updates(map[string]any{
			"progress":  progress,
			"completed": completed,
		})

	return affectOne(tx)
}

func (r *userChallengeRepository) DeleteByID(ctx context.Context, id string) error {
	tx := xcontext.DB(ctx).Delete(&entity.UserChallenge{}, "id=?", id)
	return affectOne(tx)
}
