package entity

type User struct {
	Base
	Name string `gorm:"unique"`

	// Timezone is an IANA location name used for day boundaries. Empty means
	// the configured default.
	Timezone string

	Gold int64 `gorm:"not null;default:0"`
	Gems int64 `gorm:"not null;default:0"`
}
