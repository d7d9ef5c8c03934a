package entity

import "database/sql"

type Todo struct {
	Base

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	Title      string
	Notes      string
	Difficulty Difficulty
	DueDate    sql.NullTime

	Completed     bool
	CompletedAt   sql.NullTime
	RewardGranted bool
}
