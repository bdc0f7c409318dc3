package main

import (
	"context"
	"os"

	"github.com/rubiojr/kashif/cmd"
	"github.com/rubiojr/kashif/pkg/config"
	"github.com/rubiojr/kashif/pkg/log"
	"github.com/urfave/cli/v3"
)

var logger = log.ForService("kashif")

func main() {
	app := &cli.Command{
		Name:  "kashif",
		Usage: "Full-text hadith search bot for Telegram",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
				Value: false,
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file path",
				Value: getDefaultConfigPathOrExit(),
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			if c.Bool("debug") {
				log.SetGlobalDebug(true)
			}
			return ctx, nil
		},
		Commands: []*cli.Command{
			cmd.InitCommand(),
			cmd.MigrateCommand(),
			cmd.ImportCommand(),
			cmd.SearchCommand(),
			cmd.ServeCommand(),
			cmd.StatsCommand(),
			cmd.OptimizeCommand(),
			cmd.VersionCommand(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		logger.Fatalf("%v", err)
	}
}

func getDefaultConfigPathOrExit() string {
	path, err := config.GetDefaultConfigPath()
	if err != nil {
		logger.Fatalf("Failed to get default config path: %v", err)
	}
	return path
}
