package entity

// LedgerEntry is an append-only record of a currency delta applied to a user.
type LedgerEntry struct {
	SnowFlakeBase

	UserID string `gorm:"index"`
	User   User   `gorm:"foreignKey:UserID"`

	TaskKind TaskKind
	TaskID   string

	Gold   int64
	Gems   int64
	Reason string
}
