package main

import (
	"os"

	"sherk_portal/internal/config"
	"sherk_portal/internal/logger"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "sherk-portal",
		Usage: "Sherk NFT staking portal backend",
		// config is loaded per command so `help` works without env
		Action: func(c *cli.Context) error {
			return serve(c.Context, load())
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "start the http server",
				Action: func(c *cli.Context) error {
					return serve(c.Context, load())
				},
			},
			{
				Name:  "export",
				Usage: "write every stake as CSV (uses the service role key or DATABASE_URL)",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: sherk-staking-<date>.csv, - for stdout)"},
				},
				Action: func(c *cli.Context) error {
					return export(c.Context, load(), c.String("out"))
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		logger.Fatal("command failed", "error", err)
	}
}

func load() *config.Config {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	return cfg
}
