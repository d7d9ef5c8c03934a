package entity

import "database/sql"

type Habit struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Title      string
	Notes      string
	Type       HabitType
	Difficulty Difficulty
	IsPaused   bool

	PositiveCounter int64
	NegativeCounter int64

	CurrentStreak int
	LongestStreak int

	// RevertibleGold is the gold paid by UP completions which no DOWN took
	// back yet.
	RevertibleGold int64

	RewardLockedUntil sql.NullTime
}
