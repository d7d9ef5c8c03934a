package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type UserRepository interface {
	Create(ctx context.Context, data *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]entity.User, error)
	GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error)
	IncreaseBalance(ctx context.Context, id string, gold, gems int64) error
	DecreaseBalance(ctx context.Context, id string, gold, gems int64) error
}

type userRepository struct{}

func NewUserRepository() *userRepository {
	return &userRepository{}
}

func (r *userRepository) Create(ctx context.Context, data *entity.User) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *userRepository) GetByIDs(ctx context.Context, ids []string) ([]entity.User, error) {
	var result []entity.User
	if err := xcontext.DB(ctx).Find(&result, "id IN (?)", ids).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*entity.User, error) {
	var result entity.User
	err := xcontext.DB(ctx).Clauses(lockForUpdate).Take(&result, "id=?", id).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

// IncreaseBalance adds the given amounts to the balances of the user. The
// amounts are applied as relative deltas in a single statement.
func (r *userRepository) IncreaseBalance(ctx context.Context, id string, gold, gems int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=?", id).
		Updates(map[string]any{
			"gold": gorm.Expr("gold+?", gold),
			"gems": gorm.Expr("gems+?", gems),
		})

	return affectOne(tx)
}

// DecreaseBalance subtracts the given amounts. The statement only matches if
// both balances are large enough, so it never drives them negative; a miss is
// reported as xcontext.ErrTxConflict.
func (r *userRepository) DecreaseBalance(ctx context.Context, id string, gold, gems int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.User{}).
		Where("id=? AND gold>=? AND gems>=?", id, gold, gems).
		Updates(map[string]any{
			"gold": gorm.Expr("gold-?", gold),
			"gems": gorm.Expr("gems-?", gems),
		})

	if err := affectOne(tx); err != nil {
		if err == gorm.ErrRecordNotFound {
			return xcontext.ErrTxConflict
		}
		return err
	}

	return nil
}
