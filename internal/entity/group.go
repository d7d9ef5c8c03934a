package entity

import (
	"database/sql"
	"time"
)

type Group struct {
	Base

	CreatedBy     string
	CreatedByUser User `gorm:"foreignKey:CreatedBy"`

	Name        string
	Description string
	IsPublic    bool `gorm:"index"`
}

func (Group) TableName() string {
	return "habit_groups"
}

type GroupMember struct {
	ID        string    `gorm:"primaryKey"`
	JoinedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time

	UserID string `gorm:"uniqueIndex:idx_group_member"`
	User   User   `gorm:"foreignKey:UserID"`

	GroupID string `gorm:"uniqueIndex:idx_group_member;index"`
	Group   Group  `gorm:"foreignKey:GroupID"`

	Role   GroupRole
	Status MembershipStatus

	// OwnerOf equals GroupID for the owner row and is NULL otherwise. Its
	// unique index keeps a single owner per group.
	OwnerOf sql.NullString `gorm:"uniqueIndex"`
}

type GroupMessage struct {
	ID        string    `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	GroupID string `gorm:"index"`
	Group   Group  `gorm:"foreignKey:GroupID"`

	UserID string
	User   User `gorm:"foreignKey:UserID"`

	Content string
}
