package xcontext

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ErrTxConflict is returned by storage code when a conditional write lost a
// race. WithTransaction replays the transaction when it sees it.
var ErrTxConflict = errors.New("transaction conflict")

type dbTx struct {
	db     *gorm.DB
	joined bool
	done   bool
}

func activeTx(ctx context.Context) (*dbTx, bool) {
	tx, ok := ctx.Value(dbTxKey{}).(*dbTx)
	if !ok || tx.done {
		return nil, false
	}

	return tx, true
}

// WithDBTransaction begins a transaction and returns a context whose DB() is
// that transaction. If ctx already carries a running transaction, the returned
// context joins it and its commit/rollback are left to the outer owner.
func WithDBTransaction(ctx context.Context) context.Context {
	if outer, ok := activeTx(ctx); ok {
		return context.WithValue(ctx, dbTxKey{}, &dbTx{db: outer.db, joined: true})
	}

	db := DB(ctx).Begin()
	return context.WithValue(ctx, dbTxKey{}, &dbTx{db: db})
}

// WithCommitDBTransaction commits the transaction started by WithDBTransaction.
func WithCommitDBTransaction(ctx context.Context) error {
	tx, ok := activeTx(ctx)
	if !ok {
		return nil
	}

	tx.done = true
	if tx.joined {
		return nil
	}

	if tx.db.Error != nil {
		return tx.db.Error
	}

	return tx.db.Commit().Error
}

// WithRollbackDBTransaction rollbacks the transaction if it has not been
// committed yet. It is safe to defer right after WithDBTransaction.
func WithRollbackDBTransaction(ctx context.Context) {
	tx, ok := activeTx(ctx)
	if !ok {
		return
	}

	tx.done = true
	if tx.joined || tx.db.Error != nil {
		return
	}

	if err := tx.db.Rollback().Error; err != nil {
		Logger(ctx).Warnf("Cannot rollback transaction: %v", err)
	}
}

// WithTransaction runs fn inside a transaction. Any error (or panic) returned
// by fn rolls the transaction back. Transient storage conflicts replay fn up to
// Database.MaxTxRetries times; the last error is returned when retries run out.
// When ctx already carries a transaction, fn simply joins it.
func WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := activeTx(ctx); ok {
		return fn(ctx)
	}

	maxRetries := Configs(ctx).Database.MaxTxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	var err error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			Logger(ctx).Warnf("Retry transaction (attempt %d) after conflict: %v", attempt, err)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 10 * time.Millisecond):
			}
		}

		err = runTransaction(ctx, fn)
		if err == nil || !IsTransient(err) {
			return err
		}
	}

	return err
}

func runTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	txCtx := WithDBTransaction(ctx)
	defer WithRollbackDBTransaction(txCtx)

	if err := DB(txCtx).Error; err != nil {
		return err
	}

	if err := fn(txCtx); err != nil {
		return err
	}

	return WithCommitDBTransaction(txCtx)
}

var transientMessages = []string{
	"deadlock",
	"database is locked",
	"database table is locked",
	"sqlite_busy",
	"could not serialize",
	"lock wait timeout",
	"error 1213",
	"error 1205",
	"sqlstate 40001",
	"sqlstate 40p01",
}

// IsTransient reports whether err is a storage conflict worth replaying.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrTxConflict) {
		return true
	}

	msg := strings.ToLower(err.Error())
	for _, m := range transientMessages {
		if strings.Contains(msg, m) {
			return true
		}
	}

	return false
}
