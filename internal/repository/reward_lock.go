package repository

import (
	"context"
	"time"

	"github.com/habitquest/backend/pkg/xcontext"
)

// claimRewardLock moves reward_locked_until of the row to until, but only if
// the lock is unset or already elapsed at now. The check and the write are one
// statement, so two concurrent claims cannot both succeed.
func claimRewardLock(ctx context.Context, model any, id string, now, until time.Time) (bool, error) {
	tx := xcontext.DB(ctx).
		Model(model).
		Where("id=?", id).
		Where("reward_locked_until IS NULL OR reward_locked_until<=?", now).
		Update("reward_locked_until", until)
	if tx.Error != nil {
		return false, tx.Error
	}

	return tx.RowsAffected == 1, nil
}
