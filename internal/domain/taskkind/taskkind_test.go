package taskkind

import (
	"testing"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/stretchr/testify/require"
)

func TestHabit_Completable(t *testing.T) {
	tests := []struct {
		name      string
		habit     entity.Habit
		direction entity.Direction
		wantErr   bool
	}{
		{
			name:      "positive up",
			habit:     entity.Habit{Type: entity.HabitPositive},
			direction: entity.DirectionUp,
		},
		{
			name:      "positive down reverts",
			habit:     entity.Habit{Type: entity.HabitPositive},
			direction: entity.DirectionDown,
		},
		{
			name:      "negative up",
			habit:     entity.Habit{Type: entity.HabitNegative},
			direction: entity.DirectionUp,
			wantErr:   true,
		},
		{
			name:      "negative down",
			habit:     entity.Habit{Type: entity.HabitNegative},
			direction: entity.DirectionDown,
		},
		{
			name:      "both down",
			habit:     entity.Habit{Type: entity.HabitBoth},
			direction: entity.DirectionDown,
		},
		{
			name:      "paused",
			habit:     entity.Habit{Type: entity.HabitBoth, IsPaused: true},
			direction: entity.DirectionUp,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			habit := tt.habit
			err := FromHabit(&habit).Completable(tt.direction)
			if tt.wantErr {
				require.True(t, errorx.Is(err, errorx.InvalidState))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestDailyTodo_Completable(t *testing.T) {
	require.NoError(t, FromDaily(&entity.Daily{}).Completable(entity.DirectionUp))
	require.True(t, errorx.Is(FromDaily(&entity.Daily{Completed: true}).Completable(entity.DirectionUp), errorx.InvalidState))
	require.True(t, errorx.Is(FromDaily(&entity.Daily{}).Completable(entity.DirectionDown), errorx.InvalidState))

	require.NoError(t, FromTodo(&entity.Todo{}).Completable(entity.DirectionUp))
	require.True(t, errorx.Is(FromTodo(&entity.Todo{Completed: true}).Completable(entity.DirectionUp), errorx.InvalidState))
	require.True(t, errorx.Is(FromTodo(&entity.Todo{}).Completable(entity.DirectionDown), errorx.InvalidState))
}

func TestTask_Capabilities(t *testing.T) {
	habit := &entity.Habit{Base: entity.Base{ID: "h"}, UserID: "u", Type: entity.HabitPositive, Difficulty: entity.DifficultyHard}
	task := FromHabit(habit)
	require.Equal(t, entity.KindHabit, task.Kind())
	require.Equal(t, "h", task.ID())
	require.Equal(t, "u", task.OwnerID())
	require.Equal(t, int64(4), task.RewardBase())
	require.True(t, task.CanRevert())

	require.False(t, FromHabit(&entity.Habit{Type: entity.HabitBoth}).CanRevert())
	require.False(t, FromDaily(&entity.Daily{}).CanRevert())
	require.Equal(t, int64(2), FromTodo(&entity.Todo{Difficulty: entity.DifficultyEasy}).RewardBase())
}

func TestCounterDelta(t *testing.T) {
	tests := []struct {
		name      string
		task      Task
		direction entity.Direction
		want      [2]int64
	}{
		{name: "up", task: FromHabit(&entity.Habit{Type: entity.HabitPositive}), direction: entity.DirectionUp, want: [2]int64{1, 0}},
		{name: "positive down reverts", task: FromHabit(&entity.Habit{Type: entity.HabitPositive}), direction: entity.DirectionDown, want: [2]int64{-1, 0}},
		{name: "both down slips", task: FromHabit(&entity.Habit{Type: entity.HabitBoth}), direction: entity.DirectionDown, want: [2]int64{0, 1}},
		{name: "negative down slips", task: FromHabit(&entity.Habit{Type: entity.HabitNegative}), direction: entity.DirectionDown, want: [2]int64{0, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			positive, negative := CounterDelta(tt.task, tt.direction)
			require.Equal(t, tt.want, [2]int64{positive, negative})
		})
	}
}

func TestCheckOwner(t *testing.T) {
	require.NoError(t, CheckOwner(FromDaily(&entity.Daily{UserID: "u"}), "u"))
	require.True(t, errorx.Is(CheckOwner(FromTodo(&entity.Todo{UserID: "u"}), "v"), errorx.PermissionDenied))
}
