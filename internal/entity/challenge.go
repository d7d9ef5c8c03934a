package entity

import "time"

type Challenge struct {
	Base

	CreatorID string
	Creator   User `gorm:"foreignKey:CreatorID"`

	Title       string
	Description string
	Goal        string
	IsPublic    bool `gorm:"index"`
}

// UserChallenge is the participation of a user in a challenge. Rows are
// hard-deleted on leave so that the unique pair can be joined again.
type UserChallenge struct {
	ID        string    `gorm:"primaryKey"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time

	UserID string `gorm:"uniqueIndex:idx_user_challenge"`
	User   User   `gorm:"foreignKey:UserID"`

	ChallengeID string    `gorm:"uniqueIndex:idx_user_challenge;index"`
	Challenge   Challenge `gorm:"foreignKey:ChallengeID"`

	Progress  int64
	Completed bool
}
