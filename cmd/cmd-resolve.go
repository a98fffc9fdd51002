package cmd

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// resolveCommand returns the "resolve" CLI subcommand. It prints the direct
// source URL that a download would hand to ffmpeg.
func resolveCommand() *cli.Command {
	var target string

	return &cli.Command{
		Name:      "resolve",
		Usage:     "Print the direct audio URL for a YouTube video or big.az song",
		ArgsUsage: "<video ID, YouTube URL or big.az song ID>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name:        "target",
				Destination: &target,
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "bigaz",
				Usage: "Treat the argument as a big.az song ID",
			},
			&cli.StringFlag{Name: "lk", Usage: "big.az lk token"},
			&cli.StringFlag{Name: "mh", Usage: "big.az mh token"},
			&cli.StringFlag{Name: "mr", Usage: "big.az mr token"},
			&cli.StringFlag{Name: "hs", Usage: "big.az hs token"},
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

			var src *media.Source
			if cmd.Bool("bigaz") {
				if !media.ValidSongID(target) {
					return apperr.BadInput(fmt.Sprintf("invalid song ID %q", target))
				}
				tokens := media.AudioParams{LK: cmd.String("lk"), MH: cmd.String("mh"), MR: cmd.String("mr"), HS: cmd.String("hs")}
				src, err = svc.bigaz.Resolve(ctx, media.BigAz(target, tokens))
			} else {
				videoID, ok := media.ExtractVideoID(target)
				if !ok {
					return apperr.BadInput(fmt.Sprintf("no YouTube video ID in %q", target))
				}
				src, err = svc.ytdlp.Resolve(ctx, media.YouTube(videoID))
			}
			if err != nil {
				return fmt.Errorf("resolving %s: %w", target, err)
			}

			fmt.Println(src.URL.String())
			return nil
		},
	}
}
