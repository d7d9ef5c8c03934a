package migration

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
)

// migrate0002 adds the revertible gold of habits and the group message board
// to databases created before them.
func migrate0002(ctx context.Context) error {
	migrator := xcontext.DB(ctx).Migrator()
	if !migrator.HasColumn(&entity.Habit{}, "RevertibleGold") {
		if err := migrator.AddColumn(&entity.Habit{}, "RevertibleGold"); err != nil {
			return err
		}
	}

	if !migrator.HasTable(&entity.GroupMessage{}) {
		return migrator.CreateTable(&entity.GroupMessage{})
	}

	return nil
}
