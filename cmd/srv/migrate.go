package main

import (
	"github.com/habitquest/backend/migration"
	"github.com/urfave/cli/v2"
)

func (s *srv) startMigrate(cctx *cli.Context) error {
	s.loadLogger()
	s.loadDatabase()

	if version := cctx.String("version"); version != "" {
		return migration.Run(s.ctx, version)
	}

	return migration.Migrate(s.ctx)
}
