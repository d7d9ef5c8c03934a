package migration

import (
	"context"

	"github.com/habitquest/backend/internal/entity"
	"github.com/habitquest/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// migrate0001 repairs rows whose longest streak fell behind the current one.
func migrate0001(ctx context.Context) error {
	for _, model := range []any{&entity.Habit{}, &entity.Daily{}} {
		err := xcontext.DB(ctx).
			Model(model).
			Where("longest_streak<current_streak").
			Update("longest_streak", gorm.Expr("current_streak")).Error
		if err != nil {
			return err
		}
	}

	return nil
}
