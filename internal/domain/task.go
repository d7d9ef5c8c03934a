package domain

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/habitquest/backend/internal/common"
	"github.com/habitquest/backend/internal/domain/reward"
	"github.com/habitquest/backend/internal/domain/streak"
	"github.com/habitquest/backend/internal/domain/taskkind"
	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/internal/model"
	"github.com/habitquest/backend/internal/repository"
	"github.com/habitquest/backend/pkg/enum"
	"github.com/habitquest/backend/pkg/errorx"
	"github.com/habitquest/backend/pkg/pubsub"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"

	mathUtil "github.com/pkg/math"
)

// dailyHistorySize is the number of daily logs returned with a daily.
const dailyHistorySize = 7

type TaskDomain interface {
	CreateHabit(context.Context, *model.CreateHabitRequest) (*model.CreateHabitResponse, error)
	CreateDaily(context.Context, *model.CreateDailyRequest) (*model.CreateDailyResponse, error)
	CreateTodo(context.Context, *model.CreateTodoRequest) (*model.CreateTodoResponse, error)
	Get(context.Context, *model.GetTaskRequest) (*model.GetTaskResponse, error)
	GetList(context.Context, *model.GetTasksRequest) (*model.GetTasksResponse, error)
	Delete(context.Context, *model.DeleteTaskRequest) (*model.DeleteTaskResponse, error)
	PauseHabit(context.Context, *model.PauseHabitRequest) (*model.PauseHabitResponse, error)
	Complete(context.Context, *model.CompleteTaskRequest) (*model.CompleteTaskResponse, error)
}

type taskDomain struct {
	userRepo  repository.UserRepository
	habitRepo repository.HabitRepository
	dailyRepo repository.DailyRepository
	todoRepo  repository.TodoRepository
	ledger    *EconomyLedger
	publisher pubsub.Publisher
	tracker   *streak.Tracker
	clock     clock
}

func NewTaskDomain(
	userRepo repository.UserRepository,
	habitRepo repository.HabitRepository,
	dailyRepo repository.DailyRepository,
	todoRepo repository.TodoRepository,
	ledger *EconomyLedger,
	publisher pubsub.Publisher,
) TaskDomain {
	return &taskDomain{
		userRepo:  userRepo,
		habitRepo: habitRepo,
		dailyRepo: dailyRepo,
		todoRepo:  todoRepo,
		ledger:    ledger,
		publisher: publisher,
		tracker:   streak.NewTracker("UTC"),
		clock:     time.Now,
	}
}

// completion is the outcome of one completion inside the transaction.
type completion struct {
	task   model.Task
	delta  int64
	locked bool
}

func (d *taskDomain) CreateHabit(
	ctx context.Context, req *model.CreateHabitRequest,
) (*model.CreateHabitResponse, error) {
	if err := checkTitle(req.Title); err != nil {
		return nil, err
	}

	habitType, err := enum.ToEnum[entity.HabitType](req.Type)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid habit type")
	}

	difficulty, err := enum.ToEnum[entity.Difficulty](req.Difficulty)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid difficulty")
	}

	habit := &entity.Habit{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     xcontext.RequestUserID(ctx),
		Title:      req.Title,
		Notes:      req.Notes,
		Type:       habitType,
		Difficulty: difficulty,
	}

	if err := d.habitRepo.Create(ctx, habit); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create habit: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.CreateHabitResponse)(ptr(model.ConvertHabit(habit))), nil
}

func (d *taskDomain) CreateDaily(
	ctx context.Context, req *model.CreateDailyRequest,
) (*model.CreateDailyResponse, error) {
	if err := checkTitle(req.Title); err != nil {
		return nil, err
	}

	difficulty, err := enum.ToEnum[entity.Difficulty](req.Difficulty)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid difficulty")
	}

	daily := &entity.Daily{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     xcontext.RequestUserID(ctx),
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: difficulty,
	}

	if err := d.dailyRepo.Create(ctx, daily); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create daily: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.CreateDailyResponse)(ptr(model.ConvertDaily(daily))), nil
}

func (d *taskDomain) CreateTodo(
	ctx context.Context, req *model.CreateTodoRequest,
) (*model.CreateTodoResponse, error) {
	if err := checkTitle(req.Title); err != nil {
		return nil, err
	}

	difficulty, err := enum.ToEnum[entity.Difficulty](req.Difficulty)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid difficulty")
	}

	todo := &entity.Todo{
		Base:       entity.Base{ID: uuid.NewString()},
		UserID:     xcontext.RequestUserID(ctx),
		Title:      req.Title,
		Notes:      req.Notes,
		Difficulty: difficulty,
	}

	if req.DueDate != "" {
		dueDate, err := time.Parse(time.RFC3339, req.DueDate)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid due date")
		}

		todo.DueDate = sql.NullTime{Valid: true, Time: dueDate.UTC().Truncate(time.Second)}
	}

	if err := d.todoRepo.Create(ctx, todo); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create todo: %v", err)
		return nil, errorx.Unknown
	}

	return (*model.CreateTodoResponse)(ptr(model.ConvertTodo(todo))), nil
}

func (d *taskDomain) Get(ctx context.Context, req *model.GetTaskRequest) (*model.GetTaskResponse, error) {
	kind, err := enum.ToEnum[entity.TaskKind](req.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid task kind")
	}

	switch kind {
	case entity.KindHabit:
		habit, err := d.getHabit(ctx, req.ID, false)
		if err != nil {
			return nil, err
		}

		return &model.GetTaskResponse{Task: model.ConvertHabit(habit)}, nil

	case entity.KindTodo:
		todo, err := d.getTodo(ctx, req.ID, false)
		if err != nil {
			return nil, err
		}

		return &model.GetTaskResponse{Task: model.ConvertTodo(todo)}, nil
	}

	var daily *entity.Daily
	err = xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		daily, err = d.getDaily(ctx, req.ID, true)
		if err != nil {
			return err
		}

		return d.refreshDaily(ctx, daily, d.clock.now())
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found task", "get daily")
	}

	logs, err := d.dailyRepo.GetLogs(ctx, daily.ID, dailyHistorySize)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get daily logs: %v", err)
		return nil, errorx.Unknown
	}

	history := []model.DailyLog{}
	for i := range logs {
		history = append(history, model.ConvertDailyLog(&logs[i]))
	}

	return &model.GetTaskResponse{Task: model.ConvertDaily(daily), History: history}, nil
}

func (d *taskDomain) GetList(ctx context.Context, req *model.GetTasksRequest) (*model.GetTasksResponse, error) {
	kinds := []entity.TaskKind{entity.KindHabit, entity.KindDaily, entity.KindTodo}
	if req.Kind != "" {
		kind, err := enum.ToEnum[entity.TaskKind](req.Kind)
		if err != nil {
			return nil, errorx.New(errorx.BadRequest, "Invalid task kind")
		}
		kinds = []entity.TaskKind{kind}
	}

	userID := xcontext.RequestUserID(ctx)
	tasks := []model.Task{}
	for _, kind := range kinds {
		switch kind {
		case entity.KindHabit:
			habits, err := d.habitRepo.GetListByUserID(ctx, userID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get habits: %v", err)
				return nil, errorx.Unknown
			}

			for i := range habits {
				tasks = append(tasks, model.ConvertHabit(&habits[i]))
			}

		case entity.KindDaily:
			var dailies []entity.Daily
			err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
				var err error
				dailies, err = d.dailyRepo.GetListByUserID(ctx, userID)
				if err != nil {
					return err
				}

				now := d.clock.now()
				for i := range dailies {
					if err := d.refreshDaily(ctx, &dailies[i], now); err != nil {
						return err
					}
				}

				return nil
			})
			if err != nil {
				return nil, storageError(ctx, err, "Not found user", "get dailies")
			}

			for i := range dailies {
				tasks = append(tasks, model.ConvertDaily(&dailies[i]))
			}

		case entity.KindTodo:
			todos, err := d.todoRepo.GetListByUserID(ctx, userID)
			if err != nil {
				xcontext.Logger(ctx).Errorf("Cannot get todos: %v", err)
				return nil, errorx.Unknown
			}

			for i := range todos {
				tasks = append(tasks, model.ConvertTodo(&todos[i]))
			}
		}
	}

	return &model.GetTasksResponse{Tasks: tasks}, nil
}

func (d *taskDomain) Delete(ctx context.Context, req *model.DeleteTaskRequest) (*model.DeleteTaskResponse, error) {
	kind, err := enum.ToEnum[entity.TaskKind](req.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid task kind")
	}

	err = xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		switch kind {
		case entity.KindHabit:
			if _, err := d.getHabit(ctx, req.ID, true); err != nil {
				return err
			}
			return d.habitRepo.DeleteByID(ctx, req.ID)

		case entity.KindDaily:
			if _, err := d.getDaily(ctx, req.ID, true); err != nil {
				return err
			}
			return d.dailyRepo.DeleteByID(ctx, req.ID)

		default:
			if _, err := d.getTodo(ctx, req.ID, true); err != nil {
				return err
			}
			return d.todoRepo.DeleteByID(ctx, req.ID)
		}
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found task", "delete task")
	}

	return &model.DeleteTaskResponse{}, nil
}

func (d *taskDomain) PauseHabit(
	ctx context.Context, req *model.PauseHabitRequest,
) (*model.PauseHabitResponse, error) {
	var habit *entity.Habit
	err := xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		habit, err = d.getHabit(ctx, req.ID, true)
		if err != nil {
			return err
		}

		if habit.IsPaused == req.Paused {
			return nil
		}

		if err := d.habitRepo.UpdatePaused(ctx, habit.ID, req.Paused); err != nil {
			return err
		}

		habit.IsPaused = req.Paused
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found task", "pause habit")
	}

	return (*model.PauseHabitResponse)(ptr(model.ConvertHabit(habit))), nil
}

// Complete applies an UP or DOWN completion to a task. The task row, its
// streak, its reward lock and the balance of the owner change in a single
// transaction.
func (d *taskDomain) Complete(
	ctx context.Context, req *model.CompleteTaskRequest,
) (*model.CompleteTaskResponse, error) {
	kind, err := enum.ToEnum[entity.TaskKind](req.Kind)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid task kind")
	}

	direction, err := enum.ToEnum[entity.Direction](req.Direction)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid direction")
	}

	var result completion
	var balance model.Balance
	var completedAt time.Time
	err = xcontext.WithTransaction(ctx, func(ctx context.Context) error {
		now := d.clock.now()
		completedAt = now

		var err error
		switch kind {
		case entity.KindHabit:
			result, err = d.completeHabit(ctx, req.ID, direction, now)
		case entity.KindDaily:
			result, err = d.completeDaily(ctx, req.ID, direction, req.Notes, now)
		default:
			result, err = d.completeTodo(ctx, req.ID, direction, now)
		}
		if err != nil {
			return err
		}

		user, err := d.userRepo.GetByID(ctx, xcontext.RequestUserID(ctx))
		if err != nil {
			return err
		}

		balance = model.ConvertBalance(user)
		return nil
	})
	if err != nil {
		return nil, storageError(ctx, err, "Not found task", "complete task")
	}

	common.PromCounters[common.TaskCompletionTotal].WithLabelValues(string(kind), string(direction)).Inc()
	if result.locked {
		common.PromCounters[common.RewardSuppressedTotal].WithLabelValues(string(kind)).Inc()
	}
	if result.delta > 0 {
		common.PromCounters[common.CurrencyDeltaTotal].WithLabelValues("gold", "credit").Add(float64(result.delta))
	} else if result.delta < 0 {
		common.PromCounters[common.CurrencyDeltaTotal].WithLabelValues("gold", "debit").Add(float64(-result.delta))
	}

	d.publishCompletion(ctx, model.TaskCompletedEvent{
		UserID:       xcontext.RequestUserID(ctx),
		TaskKind:     string(kind),
		TaskID:       req.ID,
		Direction:    string(direction),
		GoldDelta:    result.delta,
		RewardLocked: result.locked,
		CompletedAt:  completedAt.Format(model.DefaultTimeLayout),
	})

	return &model.CompleteTaskResponse{
		Task:         result.task,
		Delta:        model.Balance{Gold: result.delta},
		Balance:      balance,
		RewardLocked: result.locked,
	}, nil
}

// publishCompletion runs after the commit. A failed publish does not undo the
// completion.
func (d *taskDomain) publishCompletion(ctx context.Context, event model.TaskCompletedEvent) {
	msg, err := json.Marshal(event)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal task completed event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.TaskCompletedTopic
	err = d.publisher.Publish(ctx, topic, &pubsub.Pack{Key: []byte(event.UserID), Msg: msg})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish task completed event: %v", err)
	}
}

func (d *taskDomain) completeHabit(
	ctx context.Context, id string, direction entity.Direction, now time.Time,
) (completion, error) {
	habit, err := d.getHabit(ctx, id, true)
	if err != nil {
		return completion{}, err
	}

	task := taskkind.FromHabit(habit)
	if err := task.Completable(direction); err != nil {
		return completion{}, err
	}

	positive, negative := taskkind.CounterDelta(task, direction)
	if err := d.habitRepo.IncreaseCounter(ctx, habit.ID, positive, negative); err != nil {
		return completion{}, err
	}

	rewardCfg := xcontext.Configs(ctx).Reward
	curve := reward.NewCurve(rewardCfg)
	ref := ledgerRef(task, direction)
	result := completion{}
	current, longest := habit.CurrentStreak, habit.LongestStreak
	revertible := habit.RevertibleGold

	if direction == entity.DirectionUp {
		granted, err := d.habitRepo.ClaimRewardLock(
			ctx, habit.ID, now, reward.NextLock(now, rewardCfg.LockDuration))
		if err != nil {
			return completion{}, err
		}

		if granted {
			amount := curve.Amount(task.RewardBase(), current)
			current, longest = streak.Increase(current, longest)
			if err := d.ledger.Credit(ctx, habit.UserID, amount, 0, ref); err != nil {
				return completion{}, err
			}

			revertible += amount
			result.delta = amount
		} else {
			result.locked = true
		}
	} else {
		// A DOWN is priced at the streak it falls back to, the same streak the
		// matching UP was paid at.
		current, longest = streak.Decrease(current, longest)
		amount := curve.Amount(task.RewardBase(), current)
		if task.CanRevert() {
			amount = mathUtil.MinInt64(amount, revertible)
			revertible -= amount
		}

		applied, _, err := d.ledger.Debit(ctx, habit.UserID, amount, 0, ref)
		if err != nil {
			return completion{}, err
		}

		result.delta = -applied
	}

	changed := current != habit.CurrentStreak ||
		longest != habit.LongestStreak ||
		revertible != habit.RevertibleGold
	if changed {
		if err := d.habitRepo.UpdateRewardState(ctx, habit.ID, current, longest, revertible); err != nil {
			return completion{}, err
		}
	}

	habit, err = d.habitRepo.GetByID(ctx, habit.ID)
	if err != nil {
		return completion{}, err
	}

	result.task = model.ConvertHabit(habit)
	return result, nil
}

func (d *taskDomain) completeDaily(
	ctx context.Context, id string, direction entity.Direction, notes string, now time.Time,
) (completion, error) {
	daily, err := d.getDaily(ctx, id, true)
	if err != nil {
		return completion{}, err
	}

	timezone, err := d.refreshDailyWithTimezone(ctx, daily, now)
	if err != nil {
		return completion{}, err
	}

	task := taskkind.FromDaily(daily)
	if err := task.Completable(direction); err != nil {
		return completion{}, err
	}

	rewardCfg := xcontext.Configs(ctx).Reward
	amount := reward.NewCurve(rewardCfg).Amount(task.RewardBase(), daily.CurrentStreak)

	current, longest := streak.Increase(daily.CurrentStreak, daily.LongestStreak)
	if err := d.dailyRepo.MarkCompleted(ctx, daily.ID, now, current, longest); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return completion{}, errorx.New(errorx.InvalidState, "The daily is already completed today")
		}
		return completion{}, err
	}

	err = d.dailyRepo.CreateLog(ctx, &entity.DailyLog{
		ID:      uuid.NewString(),
		DailyID: daily.ID,
		Date:    d.tracker.Day(now, timezone),
		UserID:  daily.UserID,
		Notes:   notes,
	})
	if err != nil {
		if repository.IsDuplicated(err) {
			return completion{}, errorx.New(errorx.InvalidState, "The daily is already completed today")
		}
		return completion{}, err
	}

	result := completion{}
	granted, err := d.dailyRepo.ClaimRewardLock(
		ctx, daily.ID, now, reward.NextLock(now, rewardCfg.LockDuration))
	if err != nil {
		return completion{}, err
	}

	if granted {
		if err := d.ledger.Credit(ctx, daily.UserID, amount, 0, ledgerRef(task, direction)); err != nil {
			return completion{}, err
		}

		result.delta = amount
	} else {
		result.locked = true
	}

	daily, err = d.dailyRepo.GetByID(ctx, daily.ID)
	if err != nil {
		return completion{}, err
	}

	result.task = model.ConvertDaily(daily)
	return result, nil
}

func (d *taskDomain) completeTodo(
	ctx context.Context, id string, direction entity.Direction, now time.Time,
) (completion, error) {
	todo, err := d.getTodo(ctx, id, true)
	if err != nil {
		return completion{}, err
	}

	task := taskkind.FromTodo(todo)
	if err := task.Completable(direction); err != nil {
		return completion{}, err
	}

	if err := d.todoRepo.MarkCompleted(ctx, todo.ID, now); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return completion{}, errorx.New(errorx.InvalidState, "The todo is already completed")
		}
		return completion{}, err
	}

	// A todo has no streak, its reward is paid at most once.
	result := completion{}
	granted, err := d.todoRepo.MarkRewardGranted(ctx, todo.ID)
	if err != nil {
		return completion{}, err
	}

	if granted {
		amount := reward.NewCurve(xcontext.Configs(ctx).Reward).Amount(task.RewardBase(), 0)
		if err := d.ledger.Credit(ctx, todo.UserID, amount, 0, ledgerRef(task, direction)); err != nil {
			return completion{}, err
		}

		result.delta = amount
	} else {
		result.locked = true
	}

	todo, err = d.todoRepo.GetByID(ctx, todo.ID)
	if err != nil {
		return completion{}, err
	}

	result.task = model.ConvertTodo(todo)
	return result, nil
}

// refreshDaily applies the day boundary to a daily which was loaded for update.
func (d *taskDomain) refreshDaily(ctx context.Context, daily *entity.Daily, now time.Time) error {
	_, err := d.refreshDailyWithTimezone(ctx, daily, now)
	return err
}

func (d *taskDomain) refreshDailyWithTimezone(
	ctx context.Context, daily *entity.Daily, now time.Time,
) (string, error) {
	user, err := d.userRepo.GetByID(ctx, daily.UserID)
	if err != nil {
		return "", err
	}

	timezone := user.Timezone
	if timezone == "" {
		timezone = xcontext.Configs(ctx).Reward.DefaultTimezone
	}

	current := daily.CurrentStreak
	switch d.tracker.Status(daily.LastCompletedAt, now, timezone) {
	case streak.CompletedYesterday:
		if !daily.Completed {
			return timezone, nil
		}

	case streak.Missed:
		current = 0
		if !daily.Completed && daily.CurrentStreak == 0 {
			return timezone, nil
		}

	default:
		return timezone, nil
	}

	if err := d.dailyRepo.ResetDay(ctx, daily.ID, current); err != nil {
		return "", err
	}

	daily.Completed = false
	daily.CurrentStreak = current
	return timezone, nil
}

// getHabit loads a habit owned by the request user.
func (d *taskDomain) getHabit(ctx context.Context, id string, forUpdate bool) (*entity.Habit, error) {
	get := d.habitRepo.GetByID
	if forUpdate {
		get = d.habitRepo.GetByIDForUpdate
	}

	habit, err := get(ctx, id)
	if err != nil {
		return nil, taskLoadError(ctx, err)
	}

	if err := taskkind.CheckOwner(taskkind.FromHabit(habit), xcontext.RequestUserID(ctx)); err != nil {
		return nil, err
	}

	return habit, nil
}

func (d *taskDomain) getDaily(ctx context.Context, id string, forUpdate bool) (*entity.Daily, error) {
	get := d.dailyRepo.GetByID
	if forUpdate {
		get = d.dailyRepo.GetByIDForUpdate
	}

	daily, err := get(ctx, id)
	if err != nil {
		return nil, taskLoadError(ctx, err)
	}

	if err := taskkind.CheckOwner(taskkind.FromDaily(daily), xcontext.RequestUserID(ctx)); err != nil {
		return nil, err
	}

	return daily, nil
}

func (d *taskDomain) getTodo(ctx context.Context, id string, forUpdate bool) (*entity.Todo, error) {
	get := d.todoRepo.GetByID
	if forUpdate {
		get = d.todoRepo.GetByIDForUpdate
	}

	todo, err := get(ctx, id)
	if err != nil {
		return nil, taskLoadError(ctx, err)
	}

	if err := taskkind.CheckOwner(taskkind.FromTodo(todo), xcontext.RequestUserID(ctx)); err != nil {
		return nil, err
	}

	return todo, nil
}

func taskLoadError(ctx context.Context, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.New(errorx.NotFound, "Not found task")
	}

	// Transient errors are left untouched so the transaction can be replayed.
	if xcontext.IsTransient(err) {
		return err
	}

	xcontext.Logger(ctx).Errorf("Cannot get task: %v", err)
	return errorx.Unknown
}

func ledgerRef(task taskkind.Task, direction entity.Direction) LedgerRef {
	return LedgerRef{
		TaskKind: task.Kind(),
		TaskID:   task.ID(),
		Reason:   fmt.Sprintf("%s_%s", task.Kind(), strings.ToLower(string(direction))),
	}
}

func ptr[T any](v T) *T {
	return &v
}
