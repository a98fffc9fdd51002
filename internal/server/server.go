// Package server exposes the HTTP API: health, track info, search and the
// streamed MP3 downloads.
package server

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/media"
	"github.com/stupside/mp3relay/internal/stream"
)

// MetadataLookup fetches track metadata for a YouTube video.
type MetadataLookup interface {
	Lookup(ctx context.Context, videoID string) (*media.TrackMetadata, error)
}

// Catalog is the big.az catalogue.
type Catalog interface {
	Search(ctx context.Context, query string) (*media.SearchResult, error)
	SongPage(ctx context.Context, htmlFileName string) (*media.SongPage, error)
	AudioURL(ctx context.Context, songID string, tokens media.AudioParams) (*url.URL, error)
}

// Server routes API requests to the metadata lookup, the catalogue and the
// download sessions.
type Server struct {
	cfg       *app.Config
	metadata  MetadataLookup
	catalog   Catalog
	downloads *stream.Manager
	metrics   *Metrics
	now       func() time.Time

	handler http.Handler
}

// Option configures a Server.
type Option func(*Server)

// WithMetrics records request and session metrics into m and serves them on
// the configured metrics path.
func WithMetrics(m *Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// New builds the API server.
func New(cfg *app.Config, metadata MetadataLookup, catalog Catalog, downloads *stream.Manager, opts ...Option) *Server {
	s := &Server{
		cfg:       cfg,
		metadata:  metadata,
		catalog:   catalog,
		downloads: downloads,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)

	if s.metrics != nil && cfg.Metrics.Enabled {
		mux.Handle("GET "+cfg.Metrics.Path, s.metricsHandler())
	}

	mux.Handle("GET /api/info", s.api(s.handleInfo))
	mux.Handle("GET /api/download", s.api(s.handleDownload))
	mux.Handle("GET /api/bigaz/search", s.api(s.handleSearch))
	mux.Handle("GET /api/bigaz/song/{filename}", s.api(s.handleSongPage))
	mux.Handle("GET /api/bigaz/audio/{songId}", s.api(s.handleAudioURL))
	mux.Handle("GET /api/bigaz/download/{songId}", s.api(s.handleBigAzDownload))

	mux.HandleFunc("/", s.handleNotFound)

	s.handler = s.logRequests(recoverPanics(securityHeaders(cors(cfg.CORS.AllowedOrigins, mux))))
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// api guards an /api handler with API key authentication.
func (s *Server) api(h http.HandlerFunc) http.Handler {
	return s.requireAPIKey(h)
}

func (s *Server) metricsHandler() http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		s.metrics,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if s.downloads != nil {
		reg.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: "mp3relay",
			Subsystem: "stream",
			Name:      "active_sessions",
			Help:      "Number of download sessions currently running",
		}, func() float64 { return float64(s.downloads.Active()) }))
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Service   string `json:"service"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: s.now().UTC().Format("2006-01-02T15:04:05.000Z"),
		Service:   s.cfg.Server.ServiceName,
	})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "Not found"})
}
