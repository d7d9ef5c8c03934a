package xcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/habitquest/backend/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type counter struct {
	ID    string `gorm:"primaryKey"`
	Value int
}

func newTestContext(t *testing.T) context.Context {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&counter{}))
	require.NoError(t, db.Create(&counter{ID: "c"}).Error)

	cfg := config.Default()
	cfg.Database.MaxTxRetries = 2

	ctx := WithConfigs(context.Background(), cfg)
	return WithDB(ctx, db)
}

func readCounter(t *testing.T, ctx context.Context) int {
	var c counter
	require.NoError(t, DB(ctx).Take(&c, "id=?", "c").Error)
	return c.Value
}

func increase(ctx context.Context) error {
	return DB(ctx).Model(&counter{}).Where("id=?", "c").
		Update("value", gorm.Expr("value+1")).Error
}

func TestWithTransaction_Commit(t *testing.T) {
	ctx := newTestContext(t)

	err := WithTransaction(ctx, func(ctx context.Context) error {
		return increase(ctx)
	})
	require.NoError(t, err)
	require.Equal(t, 1, readCounter(t, ctx))
}

func TestWithTransaction_RollbackOnError(t *testing.T) {
	ctx := newTestContext(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, func(ctx context.Context) error {
		if err := increase(ctx); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 0, readCounter(t, ctx))
}

func TestWithTransaction_RetryTransient(t *testing.T) {
	ctx := newTestContext(t)

	attempts := 0
	err := WithTransaction(ctx, func(ctx context.Context) error {
		attempts++
		if err := increase(ctx); err != nil {
			return err
		}
		if attempts < 3 {
			return fmt.Errorf("write lost: %w", ErrTxConflict)
		}
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, 3, attempts)

	// Only the last attempt was committed.
	require.Equal(t, 1, readCounter(t, ctx))
}

func TestWithTransaction_RetryExhausted(t *testing.T) {
	ctx := newTestContext(t)

	attempts := 0
	err := WithTransaction(ctx, func(ctx context.Context) error {
		attempts++
		return ErrTxConflict
	})
	require.ErrorIs(t, err, ErrTxConflict)
	require.Equal(t, 3, attempts)
}

func TestWithTransaction_JoinOuter(t *testing.T) {
	ctx := newTestContext(t)
	boom := errors.New("boom")

	err := WithTransaction(ctx, func(ctx context.Context) error {
		if err := WithTransaction(ctx, increase); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	// The inner transaction joined the outer one, so it was rolled back too.
	require.Equal(t, 0, readCounter(t, ctx))
}

func TestIsTransient(t *testing.T) {
	require.True(t, IsTransient(ErrTxConflict))
	require.True(t, IsTransient(errors.New("database is locked")))
	require.True(t, IsTransient(errors.New("Error 1213: Deadlock found when trying to get lock")))
	require.False(t, IsTransient(errors.New("record not found")))
	require.False(t, IsTransient(nil))
}
