package migration

import (
	"context"
	"fmt"
	"time"

	"github.com/habitquest/backend/pkg/xcontext"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// AppliedMigration records a version which has already run on the database.
type AppliedMigration struct {
	Version   string `gorm:"primaryKey"`
	AppliedAt time.Time
}

func (AppliedMigration) TableName() string {
	return "schema_migrations"
}

// Migrators are keyed by version. Versions are applied in lexical order.
var Migrators = map[string]func(context.Context) error{
	"0000": migrate0000,
	"0001": migrate0001,
	"0002": migrate0002,
}

// Migrate runs every migrator whose version has not been applied yet.
func Migrate(ctx context.Context) error {
	db := xcontext.DB(ctx)
	if err := db.AutoMigrate(&AppliedMigration{}); err != nil {
		return err
	}

	var applied []AppliedMigration
	if err := db.Find(&applied).Error; err != nil {
		return err
	}

	done := map[string]bool{}
	for _, m := range applied {
		done[m.Version] = true
	}

	versions := maps.Keys(Migrators)
	slices.Sort(versions)
	for _, version := range versions {
		if done[version] {
			continue
		}

		if err := Run(ctx, version); err != nil {
			return err
		}
	}

	return nil
}

// Run applies a single version and records it.
func Run(ctx context.Context, version string) error {
	migrator, ok := Migrators[version]
	if !ok {
		return fmt.Errorf("not found version %s", version)
	}

	if err := migrator(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", version, err)
	}

	xcontext.Logger(ctx).Infof("Applied migration %s", version)
	return xcontext.DB(ctx).
		Save(&AppliedMigration{Version: version, AppliedAt: time.Now().UTC()}).Error
}
