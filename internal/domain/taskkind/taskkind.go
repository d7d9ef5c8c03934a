package taskkind

import (
	"github.com/habitquest/backend/internal/domain/reward"
	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/errorx"
)

// Task is the part of a habit, daily or todo the completion engine works with.
type Task interface {
	Kind() entity.TaskKind
	ID() string
	OwnerID() string

	// Completable returns an InvalidState error if the task does not accept
	// the direction in its current state. Always return errorx in this method.
	Completable(direction entity.Direction) error

	// CanRevert reports whether a DOWN undoes a previous UP.
	CanRevert() bool

	// RewardBase is the base units of currency the task is worth.
	RewardBase() int64
}

func FromHabit(h *entity.Habit) Task {
	return habitTask{habit: h}
}

func FromDaily(d *entity.Daily) Task {
	return dailyTask{daily: d}
}

func FromTodo(t *entity.Todo) Task {
	return todoTask{todo: t}
}

type habitTask struct{ habit *entity.Habit }

func (t habitTask) Kind() entity.TaskKind { return entity.KindHabit }
func (t habitTask) ID() string            { return t.habit.ID }
func (t habitTask) OwnerID() string       { return t.habit.UserID }
func (t habitTask) RewardBase() int64     { return reward.Base(t.habit.Difficulty) }

func (t habitTask) CanRevert() bool {
	return t.habit.Type == entity.HabitPositive
}

func (t habitTask) Completable(direction entity.Direction) error {
	if t.habit.IsPaused {
		return errorx.New(errorx.InvalidState, "The habit is paused")
	}

	if direction == entity.DirectionUp && t.habit.Type == entity.HabitNegative {
		return errorx.New(errorx.InvalidState, "A negative habit only accepts %s", entity.DirectionDown)
	}

	return nil
}

type dailyTask struct{ daily *entity.Daily }

func (t dailyTask) Kind() entity.TaskKind { return entity.KindDaily }
func (t dailyTask) ID() string            { return t.daily.ID }
func (t dailyTask) OwnerID() string       { return t.daily.UserID }
func (t dailyTask) RewardBase() int64     { return reward.Base(t.daily.Difficulty) }
func (t dailyTask) CanRevert() bool       { return false }

func (t dailyTask) Completable(direction entity.Direction) error {
	if direction != entity.DirectionUp {
		return errorx.New(errorx.InvalidState, "A daily only accepts %s", entity.DirectionUp)
	}

	if t.daily.Completed {
		return errorx.New(errorx.InvalidState, "The daily is already completed today")
	}

	return nil
}

type todoTask struct{ todo *entity.Todo }

func (t todoTask) Kind() entity.TaskKind { return entity.KindTodo }
func (t todoTask) ID() string            { return t.todo.ID }
func (t todoTask) OwnerID() string       { return t.todo.UserID }
func (t todoTask) RewardBase() int64     { return reward.Base(t.todo.Difficulty) }
func (t todoTask) CanRevert() bool       { return false }

func (t todoTask) Completable(direction entity.Direction) error {
	if direction != entity.DirectionUp {
		return errorx.New(errorx.InvalidState, "A todo only accepts %s", entity.DirectionUp)
	}

	if t.todo.Completed {
		return errorx.New(errorx.InvalidState, "The todo is already completed")
	}

	return nil
}

// CheckOwner returns PermissionDenied unless userID owns the task.
func CheckOwner(task Task, userID string) error {
	if task.OwnerID() != userID {
		return errorx.New(errorx.PermissionDenied, "User does not own the task")
	}

	return nil
}

// CounterDelta returns how a completion in the direction moves the positive
// and negative counters. A DOWN on a revertible task undoes an UP, any other
// DOWN counts as a slip.
func CounterDelta(task Task, direction entity.Direction) (positive, negative int64) {
	if direction == entity.DirectionUp {
		return 1, 0
	}

	if task.CanRevert() {
		return -1, 0
	}

	return 0, 1
}
