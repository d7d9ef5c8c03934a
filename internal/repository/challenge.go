package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type ChallengeWithParticipants struct {
	entity.Challenge
	Participants int64
}

type ChallengeRepository interface {
	Create(ctx context.Context, data *entity.Challenge) error
	GetByID(ctx context.Context, id string) (*entity.Challenge, error)
	GetPublicList(ctx context.Context, offset, limit int) ([]ChallengeWithParticipants, error)
	CountParticipants(ctx context.Context, challengeID string) (int64, error)
}

type challengeRepository struct{}

func NewChallengeRepository() *challengeRepository {
	return &challengeRepository{}
}

func (r *challengeRepository) Create(ctx context.Context, data *entity.Challenge) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *challengeRepository) GetByID(ctx context.Context, id string) (*entity.Challenge, error) {
	var result entity.Challenge
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

// GetPublicList returns public challenges, newest first, each with the number
// of users currently participating.
func (r *challengeRepository) GetPublicList(
	ctx context.Context, offset, limit int,
) ([]ChallengeWithParticipants, error) {
	var result []ChallengeWithParticipants
	err := xcontext.DB(ctx).
		Model(&entity.Challenge{}).
		Select("challenges.*, " +
			"(SELECT COUNT(*) FROM user_challenges WHERE user_challenges.challenge_id=challenges.id) AS participants").
		Where("challenges.is_public=?", true).
		Order("challenges.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *challengeRepository) CountParticipants(ctx context.Context, challengeID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).
		Model(&entity.UserChallenge{}).
		Where("challenge_id=?", challengeID).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}
