package entity

import (
	"context"

	"github.com/habitquest/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&User{},
		&Habit{},
		&Daily{},
		&DailyLog{},
		&Todo{},
		&Challenge{},
		&UserChallenge{},
		&Group{},
		&GroupMember{},
		&GroupMessage{},
		&LedgerEntry{},
	)
}
