package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
)

// searchCommand returns the "search" CLI subcommand.
func searchCommand() *cli.Command {
	var query string

	return &cli.Command{
		Name:      "search",
		Usage:     "Search the big.az catalogue",
		ArgsUsage: "<query>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "query",
				Destination: &query,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			if strings.TrimSpace(query) == "" {
				return apperr.BadInput("query is required")
			}

			svc, err := newServices(cfg)
			if err != nil {
				return err
			}

			result, err := svc.bigaz.Search(ctx, query)
			if err != nil {
				return fmt.Errorf("searching big.az: %w", err)
			}
			return printJSON(result)
		},
	}
}

// songCommand returns the "song" CLI subcommand.
func songCommand() *cli.Command {
	var filename string

	return &cli.Command{
		Name:      "song",
		Usage:     "Print the title and audio tokens of a big.az song page",
		ArgsUsage: "<song page, e.g. aref-kemal-lezginka-868412.html>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "page",
				Destination: &filename,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			svc, err := newServices(cfg)
			if err != nil {
				return err
			}

			page, err := svc.bigaz.SongPage(ctx, filename)
			if err != nil {
				return fmt.Errorf("fetching song page: %w", err)
			}
			return printJSON(page)
		},
	}
}
