package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// infoCommand returns the "info" CLI subcommand.
func infoCommand() *cli.Command {
	var target string

	return &cli.Command{
		Name:      "info",
		Usage:     "Print track metadata for a YouTube video",
		ArgsUsage: "<video ID or YouTube URL>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "video",
				Destination: &target,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			videoID, ok := media.ExtractVideoID(target)
			if !ok {
				return apperr.BadInput(fmt.Sprintf("no YouTube video ID in %q", target))
			}

			svc, err := newServices(cfg)
			if err != nil {
				return err
			}

			meta, err := svc.metadata.Lookup(ctx, videoID)
			if err != nil {
				return fmt.Errorf("looking up %s: %w", videoID, err)
			}
			return printJSON(meta)
		},
	}
}
