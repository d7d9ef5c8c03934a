package repository

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

type LedgerEntryRepository interface {
	Create(ctx context.Context, data *entity.LedgerEntry) error
	GetListByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.LedgerEntry, error)
}

type ledgerEntryRepository struct{}

func NewLedgerEntryRepository() *ledgerEntryRepository {
	return &ledgerEntryRepository{}
}

func (r *ledgerEntryRepository) Create(ctx context.Context, data *entity.LedgerEntry) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *ledgerEntryRepository) GetListByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.LedgerEntry, error) {
	var result []entity.LedgerEntry
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}
