package cmd

import (
	"fmt"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/media"
	"github.com/stupside/mp3relay/internal/resolve"
	"github.com/stupside/mp3relay/internal/scraper"
	"github.com/stupside/mp3relay/internal/server"
	"github.com/stupside/mp3relay/internal/stream"
	"github.com/stupside/mp3relay/internal/transcode"
)

// services are the long-lived components built from the configuration.
type services struct {
	ytdlp     *resolve.YTDLP
	metadata  resolve.MetadataLookup
	bigaz     *scraper.Client
	ffmpeg    *transcode.FFmpeg
	metrics   *server.Metrics
	downloads *stream.Manager
}

func newServices(cfg *app.Config) (*services, error) {
	ytdlp := resolve.NewYTDLP(cfg.YouTube)

	bigaz, err := scraper.NewClient(cfg.BigAz)
	if err != nil {
		return nil, fmt.Errorf("creating big.az client: %w", err)
	}

	ffmpeg, err := transcode.NewFFmpeg(cfg.Transcode)
	if err != nil {
		return nil, fmt.Errorf("creating transcoder: %w", err)
	}

	metrics := server.NewMetrics()

	return &services{
		ytdlp:    ytdlp,
		metadata: resolve.NewMetadataLookup(cfg.YouTube, ytdlp),
		bigaz:    bigaz,
		ffmpeg:   ffmpeg,
		metrics:  metrics,
		downloads: stream.NewManager(ffmpeg, cfg.Transcode,
			stream.WithResolver(media.ProviderYouTube, ytdlp),
			stream.WithResolver(media.ProviderBigAz, bigaz),
			stream.WithObserver(metrics),
		),
	}, nil
}

// handler builds the HTTP API on top of s.
func (s *services) handler(cfg *app.Config) *server.Server {
	return server.New(cfg, s.metadata, s.bigaz, s.downloads, server.WithMetrics(s.metrics))
}
