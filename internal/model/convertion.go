package model

import (
	"database/sql"
	"strconv"
	"time"

	"github.com/habitquest/backend/internal/entity"
)

const DefaultTimeLayout string = time.RFC3339Nano

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(DefaultTimeLayout)
}

func ConvertShortUser(user *entity.User, id string) ShortUser {
	if user == nil || user.ID == "" {
		return ShortUser{ID: id}
	}

	return ShortUser{ID: user.ID, Name: user.Name}
}

func ConvertBalance(user *entity.User) Balance {
	if user == nil {
		return Balance{}
	}

	return Balance{Gold: user.Gold, Gems: user.Gems}
}

func ConvertHabit(habit *entity.Habit) Task {
	if habit == nil {
		return Task{}
	}

	return Task{
		ID:                habit.ID,
		Kind:              string(entity.KindHabit),
		UserID:            habit.UserID,
		Title:             habit.Title,
		Notes:             habit.Notes,
		Difficulty:        string(habit.Difficulty),
		CreatedAt:         habit.CreatedAt.Format(DefaultTimeLayout),
		Type:              string(habit.Type),
		IsPaused:          habit.IsPaused,
		PositiveCounter:   habit.PositiveCounter,
		NegativeCounter:   habit.NegativeCounter,
		CurrentStreak:     habit.CurrentStreak,
		LongestStreak:     habit.LongestStreak,
		RewardLockedUntil: formatNullTime(habit.RewardLockedUntil),
	}
}

func ConvertDaily(daily *entity.Daily) Task {
	if daily == nil {
		return Task{}
	}

	return Task{
		ID:                daily.ID,
		Kind:              string(entity.KindDaily),
		UserID:            daily.UserID,
		Title:             daily.Title,
		Notes:             daily.Notes,
		Difficulty:        string(daily.Difficulty),
		CreatedAt:         daily.CreatedAt.Format(DefaultTimeLayout),
		Completed:         daily.Completed,
		LastCompletedAt:   formatNullTime(daily.LastCompletedAt),
		CurrentStreak:     daily.CurrentStreak,
		LongestStreak:     daily.LongestStreak,
		RewardLockedUntil: formatNullTime(daily.RewardLockedUntil),
	}
}

func ConvertTodo(todo *entity.Todo) Task {
	if todo == nil {
		return Task{}
	}

	return Task{
		ID:          todo.ID,
		Kind:        string(entity.KindTodo),
		UserID:      todo.UserID,
		Title:       todo.Title,
		Notes:       todo.Notes,
		Difficulty:  string(todo.Difficulty),
		CreatedAt:   todo.CreatedAt.Format(DefaultTimeLayout),
		Completed:   todo.Completed,
		CompletedAt: formatNullTime(todo.CompletedAt),
		DueDate:     formatNullTime(todo.DueDate),
	}
}

func ConvertDailyLog(log *entity.DailyLog) DailyLog {
	if log == nil {
		return DailyLog{}
	}

	return DailyLog{
		ID:        log.ID,
		Date:      log.Date,
		Notes:     log.Notes,
		CreatedAt: log.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertLedgerEntry(entry *entity.LedgerEntry) LedgerEntry {
	if entry == nil {
		return LedgerEntry{}
	}

	return LedgerEntry{
		ID:        strconv.FormatInt(entry.ID, 10),
		TaskKind:  string(entry.TaskKind),
		TaskID:    entry.TaskID,
		Gold:      entry.Gold,
		Gems:      entry.Gems,
		Reason:    entry.Reason,
		CreatedAt: entry.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertChallenge(challenge *entity.Challenge, participants int64) Challenge {
	if challenge == nil {
		return Challenge{}
	}

	return Challenge{
		ID:           challenge.ID,
		Creator:      ConvertShortUser(&challenge.Creator, challenge.CreatorID),
		Title:        challenge.Title,
		Description:  challenge.Description,
		Goal:         challenge.Goal,
		IsPublic:     challenge.IsPublic,
		Participants: participants,
		CreatedAt:    challenge.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertUserChallenge(userChallenge *entity.UserChallenge, challenge *Challenge) UserChallenge {
	if userChallenge == nil {
		return UserChallenge{}
	}

	return UserChallenge{
		ID:          userChallenge.ID,
		User:        ConvertShortUser(&userChallenge.User, userChallenge.UserID),
		ChallengeID: userChallenge.ChallengeID,
		Challenge:   challenge,
		Progress:    userChallenge.Progress,
		Completed:   userChallenge.Completed,
		JoinedAt:    userChallenge.JoinedAt.Format(DefaultTimeLayout),
	}
}

func ConvertGroup(group *entity.Group, members int64) Group {
	if group == nil {
		return Group{}
	}

	return Group{
		ID:          group.ID,
		Name:        group.Name,
		Description: group.Description,
		IsPublic:    group.IsPublic,
		CreatedBy:   group.CreatedBy,
		Members:     members,
		CreatedAt:   group.CreatedAt.Format(DefaultTimeLayout),
	}
}

func ConvertGroupMember(member *entity.GroupMember) GroupMember {
	if member == nil {
		return GroupMember{}
	}

	return GroupMember{
		ID:       member.ID,
		GroupID:  member.GroupID,
		User:     ConvertShortUser(&member.User, member.UserID),
		Role:     string(member.Role),
		Status:   string(member.Status),
		JoinedAt: member.JoinedAt.Format(DefaultTimeLayout),
	}
}

func ConvertGroupMessage(message *entity.GroupMessage) GroupMessage {
	if message == nil {
		return GroupMessage{}
	}

	return GroupMessage{
		ID:        message.ID,
		GroupID:   message.GroupID,
		User:      ConvertShortUser(&message.User, message.UserID),
		Content:   message.Content,
		CreatedAt: message.CreatedAt.Format(DefaultTimeLayout),
	}
}
