package main

import "github.com/urfave/cli/v2"

func (s *srv) loadApp() {
	app := cli.NewApp()
	app.Action = cli.ShowAppHelp
	app.Name = "habitquest"
	app.Usage = "Habit tracker backend"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path of the TOML configuration file",
			EnvVars: []string{"HABITQUEST_CONFIG"},
		},
	}
	app.Before = func(cctx *cli.Context) error {
		return s.loadConfig(cctx.String("config"))
	}
	app.Commands = []*cli.Command{
		{
			Action:      s.startApi,
			Name:        "api",
			Usage:       "Start service api",
			Category:    "Api",
			Description: `Used for start service api, it serves every task, economy and participation api.`,
		},
		{
			Action:   s.startMigrate,
			Name:     "migrate",
			Usage:    "Migrate the database",
			Category: "Database",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "version",
					Usage: "Apply only this version, even if it already ran",
				},
			},
			Description: `Used to apply pending migrations, or a single version with --version.`,
		},
		{
			Action:   s.issueToken,
			Name:     "token",
			Usage:    "Issue an access token",
			Category: "Auth",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "user", Usage: "User id", Required: true},
				&cli.StringFlag{Name: "name", Usage: "Name of the user if it is created"},
				&cli.StringFlag{Name: "timezone", Usage: "IANA timezone of the user if it is created"},
				&cli.DurationFlag{Name: "expiration", Usage: "Lifetime of the token"},
			},
			Description: `Used to create a user if it does not exist and print an access token for it.`,
		},
	}

	s.app = app
}
