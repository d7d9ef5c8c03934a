package repository_test

import (
	"testing"

	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_habitRepository_IncreaseCounter(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	habitRepo := repository.NewHabitRepository()

	require.NoError(t, habitRepo.IncreaseCounter(ctx, testutil.Habit3.ID, 2, 1))
	require.NoError(t, habitRepo.IncreaseCounter(ctx, testutil.Habit3.ID, -1, 0))

	habit, err := habitRepo.GetByID(ctx, testutil.Habit3.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), habit.PositiveCounter)
	require.Equal(t, int64(1), habit.NegativeCounter)

	// Counters never go below zero.
	require.NoError(t, habitRepo.IncreaseCounter(ctx, testutil.Habit3.ID, -5, -5))
	habit, err = habitRepo.GetByID(ctx, testutil.Habit3.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), habit.PositiveCounter)
	require.Equal(t, int64(0), habit.NegativeCounter)

	require.NoError(t, habitRepo.IncreaseCounter(ctx, "unknown", 0, 0))
	require.ErrorIs(t, habitRepo.IncreaseCounter(ctx, "unknown", 1, 0), gorm.ErrRecordNotFound)
}

func Test_habitRepository_GetListByUserID(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	habitRepo := repository.NewHabitRepository()

	habits, err := habitRepo.GetListByUserID(ctx, testutil.User1.ID)
	require.NoError(t, err)
	require.Len(t, habits, 3)

	habits, err = habitRepo.GetListByUserID(ctx, testutil.User2.ID)
	require.NoError(t, err)
	require.Empty(t, habits)

	require.NoError(t, habitRepo.DeleteByID(ctx, testutil.Habit1.ID))
	require.ErrorIs(t, habitRepo.DeleteByID(ctx, testutil.Habit1.ID), gorm.ErrRecordNotFound)
}
