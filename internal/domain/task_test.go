package domain

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/idutil"
	"github.com/habitquest/backend/pkg/pubsub"
	"github.com/habitquest/backend/pkg/testutil"
	"github.com/habitquest/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestTaskDomain(t *testing.T, now *time.Time) *taskDomain {
	idGenerator, err := idutil.NewGenerator(1)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository()
	ledger := NewEconomyLedger(userRepo, repository.NewLedgerEntryRepository(), idGenerator)

	d := NewTaskDomain(
		userRepo,
		repository.NewHabitRepository(),
		repository.NewDailyRepository(),
		repository.NewTodoRepository(),
		ledger,
		&testutil.MockPublisher{},
	).(*taskDomain)
	d.clock = func() time.Time { return *now }

	return d
}

func requireGold(t *testing.T, ctx context.Context, userID string, gold int64) {
	user, err := repository.NewUserRepository().GetByID(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, gold, user.Gold)
	require.GreaterOrEqual(t, user.Gems, int64(0))
}

func Test_taskDomain_Complete_TrivialHabit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit1.ID,
		Direction: string(entity.DirectionUp),
	})
	require.NoError(t, err)
	require.Equal(t, int64(1), resp.Delta.Gold)
	require.Equal(t, int64(1), resp.Balance.Gold)
	require.False(t, resp.RewardLocked)
	require.Equal(t, int64(1), resp.Task.PositiveCounter)
	require.Equal(t, 1, resp.Task.CurrentStreak)
	require.Equal(t, 1, resp.Task.LongestStreak)
	require.Equal(t, now.Add(time.Minute).Format(model.DefaultTimeLayout), resp.Task.RewardLockedUntil)

	requireGold(t, ctx, testutil.User1.ID, 1)

	entries, err := repository.NewLedgerEntryRepository().GetListByUserID(ctx, testutil.User1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, int64(1), entries[0].Gold)
	require.Equal(t, entity.KindHabit, entries[0].TaskKind)
	require.Equal(t, testutil.Habit1.ID, entries[0].TaskID)
	require.Equal(t, "habit_up", entries[0].Reason)
}

func Test_taskDomain_Complete_ToggleInsideLockWindow(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	start := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	now := start
	d := newTestTaskDomain(t, &now)

	complete := func(direction entity.Direction) *model.CompleteTaskResponse {
		resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
			Kind:      string(entity.KindHabit),
			ID:        testutil.Habit1.ID,
			Direction: string(direction),
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, resp.Task.LongestStreak, resp.Task.CurrentStreak)
		return resp
	}

	// First UP pays.
	resp := complete(entity.DirectionUp)
	require.Equal(t, int64(1), resp.Delta.Gold)
	require.Equal(t, 1, resp.Task.CurrentStreak)

	// DOWN reverts the completion and takes the reward back.
	now = start.Add(10 * time.Second)
	resp = complete(entity.DirectionDown)
	require.Equal(t, int64(-1), resp.Delta.Gold)
	require.Equal(t, int64(0), resp.Balance.Gold)
	require.Equal(t, int64(0), resp.Task.PositiveCounter)
	require.Equal(t, 0, resp.Task.CurrentStreak)
	require.Equal(t, 1, resp.Task.LongestStreak)

	// UP again inside the lock window counts but does not pay.
	now = start.Add(20 * time.Second)
	resp = complete(entity.DirectionUp)
	require.Equal(t, int64(0), resp.Delta.Gold)
	require.True(t, resp.RewardLocked)
	require.Equal(t, int64(1), resp.Task.PositiveCounter)
	require.Equal(t, 0, resp.Task.CurrentStreak)
	requireGold(t, ctx, testutil.User1.ID, 0)

	// Once the window elapsed, the habit pays again.
	now = start.Add(time.Minute)
	resp = complete(entity.DirectionUp)
	require.Equal(t, int64(1), resp.Delta.Gold)
	require.False(t, resp.RewardLocked)
	require.Equal(t, int64(2), resp.Task.PositiveCounter)
	require.Equal(t, 1, resp.Task.CurrentStreak)
	requireGold(t, ctx, testutil.User1.ID, 1)
}

func Test_taskDomain_Complete_HardDailyAtStreakCap(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	err := xcontext.DB(ctx).Model(&entity.Daily{}).
		Where("id=?", testutil.Daily1.ID).
		Updates(map[string]any{
			"completed":           true,
			"last_completed_at":   now.Add(-24 * time.Hour),
			"current_streak":      14,
			"longest_streak":      14,
			"reward_locked_until": now.Add(-23 * time.Hour),
		}).Error
	require.NoError(t, err)

	resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindDaily),
		ID:        testutil.Daily1.ID,
		Direction: string(entity.DirectionUp),
	})
	require.NoError(t, err)
	require.Equal(t, int64(5), resp.Delta.Gold)
	require.Equal(t, int64(5), resp.Balance.Gold)
	require.True(t, resp.Task.Completed)
	require.Equal(t, 15, resp.Task.CurrentStreak)
	require.Equal(t, 15, resp.Task.LongestStreak)

	logs, err := repository.NewDailyRepository().GetLogs(ctx, testutil.Daily1.ID, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "2024-05-10", logs[0].Date)
}

func Test_taskDomain_Complete_DailyTwiceSameDay(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 8, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	req := &model.CompleteTaskRequest{
		Kind:      string(entity.KindDaily),
		ID:        testutil.Daily1.ID,
		Direction: string(entity.DirectionUp),
	}

	resp, err := d.Complete(ctx, req)
	require.NoError(t, err)
	require.Equal(t, int64(4), resp.Delta.Gold)

	// Even after the lock window, the same day cannot be completed again.
	now = now.Add(10 * time.Hour)
	_, err = d.Complete(ctx, req)
	require.True(t, errorx.Is(err, errorx.InvalidState))
	requireGold(t, ctx, testutil.User1.ID, 4)

	// The next day opens a new window and keeps the streak.
	now = now.Add(12 * time.Hour)
	resp, err = d.Complete(ctx, req)
	require.NoError(t, err)
	require.Equal(t, 2, resp.Task.CurrentStreak)
	require.Equal(t, int64(4), resp.Delta.Gold)
	requireGold(t, ctx, testutil.User1.ID, 8)
}

func Test_taskDomain_Get_DailyMissedDay(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	err := xcontext.DB(ctx).Model(&entity.Daily{}).
		Where("id=?", testutil.Daily1.ID).
		Updates(map[string]any{
			"completed":         true,
			"last_completed_at": now.Add(-72 * time.Hour),
			"current_streak":    5,
			"longest_streak":    7,
		}).Error
	require.NoError(t, err)

	resp, err := d.Get(ctx, &model.GetTaskRequest{Kind: string(entity.KindDaily), ID: testutil.Daily1.ID})
	require.NoError(t, err)
	require.False(t, resp.Task.Completed)
	require.Equal(t, 0, resp.Task.CurrentStreak)
	require.Equal(t, 7, resp.Task.LongestStreak)

	daily, err := repository.NewDailyRepository().GetByID(ctx, testutil.Daily1.ID)
	require.NoError(t, err)
	require.False(t, daily.Completed)
	require.Equal(t, 0, daily.CurrentStreak)
}

func Test_taskDomain_Complete_Todo(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	_, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindTodo),
		ID:        testutil.Todo1.ID,
		Direction: string(entity.DirectionDown),
	})
	require.True(t, errorx.Is(err, errorx.InvalidState))

	resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindTodo),
		ID:        testutil.Todo1.ID,
		Direction: string(entity.DirectionUp),
	})
	require.NoError(t, err)
	require.Equal(t, int64(2), resp.Delta.Gold)
	require.True(t, resp.Task.Completed)

	now = now.Add(time.Hour)
	_, err = d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindTodo),
		ID:        testutil.Todo1.ID,
		Direction: string(entity.DirectionUp),
	})
	require.True(t, errorx.Is(err, errorx.InvalidState))
	requireGold(t, ctx, testutil.User1.ID, 2)
}

func Test_taskDomain_Complete_NegativeHabit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	_, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit2.ID,
		Direction: string(entity.DirectionUp),
	})
	require.True(t, errorx.Is(err, errorx.InvalidState))

	// The balance is empty, the penalty is clamped.
	resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit2.ID,
		Direction: string(entity.DirectionDown),
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Delta.Gold)
	require.Equal(t, int64(0), resp.Balance.Gold)
	require.Equal(t, int64(1), resp.Task.NegativeCounter)
	require.Equal(t, 0, resp.Task.CurrentStreak)

	// A second slip in the same second leaves the streak and the balance as
	// they are and still succeeds.
	resp, err = d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit2.ID,
		Direction: string(entity.DirectionDown),
	})
	require.NoError(t, err)
	require.Equal(t, int64(0), resp.Delta.Gold)
	require.Equal(t, int64(2), resp.Task.NegativeCounter)
	require.Equal(t, 0, resp.Task.CurrentStreak)

	entries, err := repository.NewLedgerEntryRepository().GetListByUserID(ctx, testutil.User1.ID, 0, 10)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func Test_taskDomain_Complete_DebitIgnoresLock(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", testutil.User1.ID).
		Update("gold", 10).Error
	require.NoError(t, err)

	err = xcontext.DB(ctx).Model(&entity.Habit{}).
		Where("id=?", testutil.Habit3.ID).
		Updates(map[string]any{
			"current_streak":      3,
			"longest_streak":      3,
			"reward_locked_until": now.Add(time.Hour),
		}).Error
	require.NoError(t, err)

	resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit3.ID,
		Direction: string(entity.DirectionDown),
	})
	require.NoError(t, err)
	require.Equal(t, int64(-2), resp.Delta.Gold)
	require.Equal(t, int64(8), resp.Balance.Gold)
	require.Equal(t, int64(1), resp.Task.NegativeCounter)
	require.Equal(t, 2, resp.Task.CurrentStreak)
	require.Equal(t, 3, resp.Task.LongestStreak)
}

func Test_taskDomain_Complete_Errors(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		userID  string
		req     *model.CompleteTaskRequest
		prepare func(ctx context.Context)
		want    errorx.Code
	}{
		{
			name:   "not found",
			userID: testutil.User1.ID,
			req:    &model.CompleteTaskRequest{Kind: "habit", ID: "unknown", Direction: "UP"},
			want:   errorx.NotFound,
		},
		{
			name:   "not the owner",
			userID: testutil.User2.ID,
			req:    &model.CompleteTaskRequest{Kind: "habit", ID: testutil.Habit1.ID, Direction: "UP"},
			want:   errorx.PermissionDenied,
		},
		{
			name:   "invalid direction",
			userID: testutil.User1.ID,
			req:    &model.CompleteTaskRequest{Kind: "habit", ID: testutil.Habit1.ID, Direction: "SIDEWAYS"},
			want:   errorx.BadRequest,
		},
		{
			name:   "invalid kind",
			userID: testutil.User1.ID,
			req:    &model.CompleteTaskRequest{Kind: "chore", ID: testutil.Habit1.ID, Direction: "UP"},
			want:   errorx.BadRequest,
		},
		{
			name:   "daily down",
			userID: testutil.User1.ID,
			req:    &model.CompleteTaskRequest{Kind: "daily", ID: testutil.Daily1.ID, Direction: "DOWN"},
			want:   errorx.InvalidState,
		},
		{
			name:   "paused habit",
			userID: testutil.User1.ID,
			req:    &model.CompleteTaskRequest{Kind: "habit", ID: testutil.Habit1.ID, Direction: "DOWN"},
			prepare: func(ctx context.Context) {
				err := repository.NewHabitRepository().UpdatePaused(ctx, testutil.Habit1.ID, true)
				if err != nil {
					panic(err)
				}
			},
			want: errorx.InvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := testutil.NewMockContext()
			testutil.CreateFixtureDb(ctx)
			ctx = testutil.MockContextWithUserID(ctx, tt.userID)
			if tt.prepare != nil {
				tt.prepare(ctx)
			}

			d := newTestTaskDomain(t, &now)
			_, err := d.Complete(ctx, tt.req)
			require.Error(t, err)
			require.True(t, errorx.Is(err, tt.want), "got %v", err)

			requireGold(t, ctx, testutil.User1.ID, 0)
		})
	}
}

func Test_taskDomain_Complete_StreakInvariant(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	directions := []entity.Direction{
		entity.DirectionUp, entity.DirectionUp, entity.DirectionDown, entity.DirectionUp,
		entity.DirectionDown, entity.DirectionDown, entity.DirectionDown, entity.DirectionUp,
	}
	for _, direction := range directions {
		now = now.Add(2 * time.Minute)
		resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
			Kind:      string(entity.KindHabit),
			ID:        testutil.Habit3.ID,
			Direction: string(direction),
		})
		require.NoError(t, err)
		require.GreaterOrEqual(t, resp.Task.LongestStreak, resp.Task.CurrentStreak)
		require.GreaterOrEqual(t, resp.Task.CurrentStreak, 0)
		require.GreaterOrEqual(t, resp.Balance.Gold, int64(0))
	}
}

func Test_taskDomain_CRUD(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User3.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	_, err := d.CreateHabit(ctx, &model.CreateHabitRequest{Title: "", Type: "POSITIVE", Difficulty: "EASY"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	_, err = d.CreateHabit(ctx, &model.CreateHabitRequest{Title: "Stretch", Type: "GOOD", Difficulty: "EASY"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	habit, err := d.CreateHabit(ctx, &model.CreateHabitRequest{Title: "Stretch", Type: "BOTH", Difficulty: "EASY"})
	require.NoError(t, err)
	require.Equal(t, "BOTH", habit.Type)

	_, err = d.CreateDaily(ctx, &model.CreateDailyRequest{Title: "Meditate", Difficulty: "MEDIUM"})
	require.NoError(t, err)

	_, err = d.CreateTodo(ctx, &model.CreateTodoRequest{Title: "Call mom", Difficulty: "HARD", DueDate: "tomorrow"})
	require.True(t, errorx.Is(err, errorx.BadRequest))

	todo, err := d.CreateTodo(ctx, &model.CreateTodoRequest{
		Title: "Call mom", Difficulty: "HARD", DueDate: "2024-05-11T10:00:00Z",
	})
	require.NoError(t, err)
	require.Equal(t, "2024-05-11T10:00:00Z", todo.DueDate)

	list, err := d.GetList(ctx, &model.GetTasksRequest{})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 3)

	list, err = d.GetList(ctx, &model.GetTasksRequest{Kind: "todo"})
	require.NoError(t, err)
	require.Len(t, list.Tasks, 1)

	paused, err := d.PauseHabit(ctx, &model.PauseHabitRequest{ID: habit.ID, Paused: true})
	require.NoError(t, err)
	require.True(t, paused.IsPaused)

	got, err := d.Get(ctx, &model.GetTaskRequest{Kind: "habit", ID: habit.ID})
	require.NoError(t, err)
	require.True(t, got.Task.IsPaused)

	// Other users cannot see or delete the habit.
	otherCtx := testutil.MockContextWithUserID(ctx, testutil.User1.ID)
	_, err = d.Get(otherCtx, &model.GetTaskRequest{Kind: "habit", ID: habit.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.Delete(otherCtx, &model.DeleteTaskRequest{Kind: "habit", ID: habit.ID})
	require.True(t, errorx.Is(err, errorx.PermissionDenied))

	_, err = d.Delete(ctx, &model.DeleteTaskRequest{Kind: "habit", ID: habit.ID})
	require.NoError(t, err)

	_, err = d.Get(ctx, &model.GetTaskRequest{Kind: "habit", ID: habit.ID})
	require.True(t, errorx.Is(err, errorx.NotFound))
}

func Test_taskDomain_Complete_PublishesEvent(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	events := []model.TaskCompletedEvent{}
	d.publisher = &testutil.MockPublisher{
		PublishFunc: func(ctx context.Context, topic string, pack *pubsub.Pack) error {
			require.Equal(t, "task_completed", topic)
			require.Equal(t, testutil.User1.ID, string(pack.Key))

			var event model.TaskCompletedEvent
			require.NoError(t, json.Unmarshal(pack.Msg, &event))
			events = append(events, event)
			return errors.New("broker is down")
		},
	}

	req := &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit1.ID,
		Direction: string(entity.DirectionUp),
	}

	// A failed publish does not fail the completion.
	_, err := d.Complete(ctx, req)
	require.NoError(t, err)
	_, err = d.Complete(ctx, req)
	require.NoError(t, err)

	require.Len(t, events, 2)
	require.Equal(t, model.TaskCompletedEvent{
		UserID:      testutil.User1.ID,
		TaskKind:    string(entity.KindHabit),
		TaskID:      testutil.Habit1.ID,
		Direction:   string(entity.DirectionUp),
		GoldDelta:   1,
		CompletedAt: now.Format(model.DefaultTimeLayout),
	}, events[0])
	require.True(t, events[1].RewardLocked)
	require.Equal(t, int64(0), events[1].GoldDelta)

	// Rejected completions publish nothing.
	_, err = d.Complete(ctx, &model.CompleteTaskRequest{
		Kind:      string(entity.KindHabit),
		ID:        testutil.Habit2.ID,
		Direction: string(entity.DirectionUp),
	})
	require.True(t, errorx.Is(err, errorx.InvalidState))
	require.Len(t, events, 2)
}

func Test_taskDomain_Complete_RevertMirrorsCredit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	start := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	now := start
	d := newTestTaskDomain(t, &now)

	err := xcontext.DB(ctx).Model(&entity.User{}).
		Where("id=?", testutil.User1.ID).
		Update("gold", 10).Error
	require.NoError(t, err)

	err = xcontext.DB(ctx).Model(&entity.Habit{}).
		Where("id=?", testutil.Habit1.ID).
		Updates(map[string]any{
			"difficulty":     entity.DifficultyHard,
			"current_streak": 12,
			"longest_streak": 12,
		}).Error
	require.NoError(t, err)

	complete := func(direction entity.Direction) *model.CompleteTaskResponse {
		resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
			Kind:      string(entity.KindHabit),
			ID:        testutil.Habit1.ID,
			Direction: string(direction),
		})
		require.NoError(t, err)
		return resp
	}

	// floor(4 * 1.24) at streak 12.
	resp := complete(entity.DirectionUp)
	require.Equal(t, int64(4), resp.Delta.Gold)
	require.Equal(t, 13, resp.Task.CurrentStreak)

	now = start.Add(10 * time.Second)
	resp = complete(entity.DirectionDown)
	require.Equal(t, int64(-4), resp.Delta.Gold)
	require.Equal(t, int64(10), resp.Balance.Gold)
	require.Equal(t, 12, resp.Task.CurrentStreak)

	// The locked UP paid nothing, so its revert takes nothing back.
	now = start.Add(20 * time.Second)
	resp = complete(entity.DirectionUp)
	require.True(t, resp.RewardLocked)

	now = start.Add(30 * time.Second)
	resp = complete(entity.DirectionDown)
	require.Equal(t, int64(0), resp.Delta.Gold)
	require.Equal(t, int64(10), resp.Balance.Gold)
	require.Equal(t, 11, resp.Task.CurrentStreak)
	require.Equal(t, 13, resp.Task.LongestStreak)

	requireGold(t, ctx, testutil.User1.ID, 10)
}

func Test_taskDomain_ConcurrentCompleteSameHabit(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	var wg sync.WaitGroup
	resps := make([]*model.CompleteTaskResponse, 4)
	errs := make([]error, len(resps))
	for i := range resps {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resps[i], errs[i] = d.Complete(ctx, &model.CompleteTaskRequest{
				Kind:      string(entity.KindHabit),
				ID:        testutil.Habit1.ID,
				Direction: string(entity.DirectionUp),
			})
		}(i)
	}
	wg.Wait()

	paid, locked := 0, 0
	for i := range resps {
		require.NoError(t, errs[i])
		if resps[i].RewardLocked {
			locked++
		} else {
			paid++
			require.Equal(t, int64(1), resps[i].Delta.Gold)
		}
	}
	require.Equal(t, 1, paid)
	require.Equal(t, len(resps)-1, locked)

	requireGold(t, ctx, testutil.User1.ID, 1)

	habit, err := repository.NewHabitRepository().GetByID(ctx, testutil.Habit1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(len(resps)), habit.PositiveCounter)
	require.Equal(t, 1, habit.CurrentStreak)
}

func Test_taskDomain_ConcurrentCreditsSameUser(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)

	reqs := []*model.CompleteTaskRequest{
		{Kind: string(entity.KindHabit), ID: testutil.Habit1.ID, Direction: string(entity.DirectionUp)},
		{Kind: string(entity.KindHabit), ID: testutil.Habit3.ID, Direction: string(entity.DirectionUp)},
		{Kind: string(entity.KindDaily), ID: testutil.Daily1.ID, Direction: string(entity.DirectionUp)},
		{Kind: string(entity.KindTodo), ID: testutil.Todo1.ID, Direction: string(entity.DirectionUp)},
	}

	var wg sync.WaitGroup
	deltas := make([]int64, len(reqs))
	errs := make([]error, len(reqs))
	for i := range reqs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := d.Complete(ctx, reqs[i])
			errs[i] = err
			if err == nil {
				deltas[i] = resp.Delta.Gold
			}
		}(i)
	}
	wg.Wait()

	var total int64
	for i := range reqs {
		require.NoError(t, errs[i])
		require.Positive(t, deltas[i])
		total += deltas[i]
	}

	// TRIVIAL + EASY + HARD + EASY without streak.
	require.Equal(t, int64(1+2+4+2), total)
	requireGold(t, ctx, testutil.User1.ID, total)

	entries, err := repository.NewLedgerEntryRepository().GetListByUserID(ctx, testutil.User1.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, entries, len(reqs))
}

// unchangedHabitRepo fails every reward state write the way MySQL reports an
// update which matched a row without changing it.
type unchangedHabitRepo struct {
	repository.HabitRepository
}

func (r *unchangedHabitRepo) UpdateRewardState(context.Context, string, int, int, int64) error {
	return gorm.ErrRecordNotFound
}

func Test_taskDomain_Complete_SlipKeepsRewardStateUnwritten(t *testing.T) {
	ctx := testutil.NewMockContext()
	testutil.CreateFixtureDb(ctx)
	ctx = testutil.MockContextWithUserID(ctx, testutil.User1.ID)

	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	d := newTestTaskDomain(t, &now)
	d.habitRepo = &unchangedHabitRepo{HabitRepository: repository.NewHabitRepository()}

	// A negative habit never has a streak, so a slip changes only its counter.
	for i := 1; i <= 2; i++ {
		resp, err := d.Complete(ctx, &model.CompleteTaskRequest{
			Kind:      string(entity.KindHabit),
			ID:        testutil.Habit2.ID,
			Direction: string(entity.DirectionDown),
		})
		require.NoError(t, err)
		require.Equal(t, int64(i), resp.Task.NegativeCounter)
		require.Equal(t, 0, resp.Task.CurrentStreak)
	}
}
