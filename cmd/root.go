package cmd

import (
	"context"
	"log/slog"

	"github.com/urfave/cli/v3"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/version"
)

// Root returns the root CLI command.
func Root() *cli.Command {
	var (
		configPath string
		envFile    string
	)

	return &cli.Command{
		Name:    "mp3relay",
		Usage:   "Stream YouTube and big.az tracks as MP3 downloads",
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to configuration file",
				Value:       "config.yaml",
				Destination: &configPath,
			},
			&cli.StringFlag{
				Name:        "env-file",
				Usage:       "Path to a dotenv file loaded before the environment is read",
				Value:       ".env",
				Destination: &envFile,
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Enable debug logging",
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if err := app.LoadDotEnv(envFile); err != nil {
				return ctx, err
			}

			cfg, err := app.Load(configPath, cmd.IsSet("config"))
			if err != nil {
				return ctx, err
			}
			slog.SetDefault(cfg.Log.Logger(cmd.Bool("debug")))

			cmd.Metadata["config"] = cfg
			return ctx, nil
		},
		Commands: []*cli.Command{
			serveCommand(),
			resolveCommand(),
			infoCommand(),
			searchCommand(),
			songCommand(),
			{
				Name:  "version",
				Usage: "Print build information",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					slog.Info("build",
						"version", version.Version,
						"commit", version.Commit,
						"build_time", version.BuildTime,
					)
					return nil
				},
			},
		},
		Metadata: map[string]any{},
	}
}
