package entity

import "github.com/habitquest/backend/pkg/enum"

type Difficulty string

var (
	DifficultyTrivial = enum.New(Difficulty("TRIVIAL"))
	DifficultyEasy    = enum.New(Difficulty("EASY"))
	DifficultyMedium  = enum.New(Difficulty("MEDIUM"))
	DifficultyHard    = enum.New(Difficulty("HARD"))
)

type HabitType string

var (
	HabitPositive = enum.New(HabitType("POSITIVE"))
	HabitNegative = enum.New(HabitType("NEGATIVE"))
	HabitBoth     = enum.New(HabitType("BOTH"))
)

type TaskKind string

var (
	KindHabit = enum.New(TaskKind("habit"))
	KindDaily = enum.New(TaskKind("daily"))
	KindTodo  = enum.New(TaskKind("todo"))
)

type Direction string

var (
	DirectionUp   = enum.New(Direction("UP"))
	DirectionDown = enum.New(Direction("DOWN"))
)

type GroupRole string

var (
	RoleOwner  = enum.New(GroupRole("OWNER"))
	RoleAdmin  = enum.New(GroupRole("ADMIN"))
	RoleMember = enum.New(GroupRole("MEMBER"))
)

// Rank orders roles from the least to the most privileged.
func (r GroupRole) Rank() int {
	switch r {
	case RoleOwner:
		return 3
	case RoleAdmin:
		return 2
	case RoleMember:
		return 1
	}

	return 0
}

type MembershipStatus string

var (
	MembershipActive  = enum.New(MembershipStatus("ACTIVE"))
	MembershipPending = enum.New(MembershipStatus("PENDING"))
)
