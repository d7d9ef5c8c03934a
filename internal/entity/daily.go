package entity

import (
	"database/sql"
	"time"
)

type Daily struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Title      string
	Notes      string
	Difficulty Difficulty

	Completed       bool
	LastCompletedAt sql.NullTime

	CurrentStreak int
	LongestStreak int

	RewardLockedUntil sql.NullTime
}

// DailyLog records one completion of a Daily. Date is YYYY-MM-DD in the owner's
// timezone.
type DailyLog struct {
	ID        string `gorm:"primaryKey"`
	CreatedAt time.Time

	DailyID string `gorm:"uniqueIndex:idx_daily_log_date"`
	Daily   Daily  `gorm:"foreignKey:DailyID"`
	Date    string `gorm:"uniqueIndex:idx_daily_log_date;size:10"`

	UserID string `gorm:"index"`
	Notes  string
}
