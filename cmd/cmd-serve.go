package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/stupside/mp3relay/internal/app"
)

// serveCommand returns the "serve" CLI subcommand.
func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Run the HTTP API",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := app.ConfigFrom(cmd)
			if err != nil {
				return err
			}

			svc, err := newServices(cfg)
			if err != nil {
				return err
			}

			if cfg.Auth.APIKey == "" {
				slog.WarnContext(ctx, "API_KEY is not set, /api routes will answer 500")
			}

			// Request contexts outlive the signal so that in-flight downloads
			// can finish during the shutdown grace period.
			baseCtx, abortRequests := context.WithCancel(context.WithoutCancel(ctx))
			defer abortRequests()

			srv := &http.Server{
				Addr:              cfg.Server.Address(),
				Handler:           svc.handler(cfg),
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
				IdleTimeout:       cfg.Server.IdleTimeout,
				BaseContext:       func(net.Listener) context.Context { return baseCtx },
			}

			g, ctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				slog.InfoContext(ctx, "listening", "address", srv.Addr, "service", cfg.Server.ServiceName, "metrics", cfg.Metrics.Enabled)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("serving http: %w", err)
				}
				return nil
			})

			g.Go(func() error {
				<-ctx.Done()

				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout)
				defer cancel()

				slog.InfoContext(ctx, "shutting down http server", "active_sessions", svc.downloads.Active())
				if err := srv.Shutdown(shutdownCtx); err == nil {
					return nil
				}

				// Grace period exhausted: abort the remaining sessions and wait
				// until their processes are reaped.
				slog.WarnContext(ctx, "aborting in-flight downloads", "active_sessions", svc.downloads.Active())
				abortRequests()
				_ = srv.Close()

				reapCtx, cancelReap := context.WithTimeout(context.WithoutCancel(ctx), cfg.Transcode.KillGrace+time.Second)
				defer cancelReap()
				if err := svc.downloads.Wait(reapCtx); err != nil {
					return fmt.Errorf("waiting for download sessions: %w", err)
				}
				return nil
			})

			return g.Wait()
		},
	}
}
