package app

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"
)

// Config holds all application configuration.
type Config struct {
	Log       LogConfig       `koanf:"log" validate:"required"`
	Server    ServerConfig    `koanf:"server" validate:"required"`
	Auth      AuthConfig      `koanf:"auth"`
	CORS      CORSConfig      `koanf:"cors"`
	YouTube   YouTubeConfig   `koanf:"youtube" validate:"required"`
	BigAz     BigAzConfig     `koanf:"bigaz" validate:"required"`
	Transcode TranscodeConfig `koanf:"transcode" validate:"required"`
	Metrics   MetricsConfig   `koanf:"metrics"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `koanf:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	Format string `koanf:"format" env:"LOG_FORMAT" validate:"oneof=text json"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host              string        `koanf:"host" env:"HOST"`
	Port              int           `koanf:"port" env:"PORT" validate:"min=1,max=65535"`
	ServiceName       string        `koanf:"service_name" validate:"required"`
	ReadHeaderTimeout time.Duration `koanf:"read_header_timeout" validate:"required"`
	IdleTimeout       time.Duration `koanf:"idle_timeout" validate:"required"`
	ShutdownTimeout   time.Duration `koanf:"shutdown_timeout" validate:"required"`
}

// Address returns the listen address.
func (c ServerConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// AuthConfig holds the shared API key. An empty key is not a startup error:
// /api routes answer 500 until it is configured.
type AuthConfig struct {
	APIKey string `koanf:"api_key" env:"API_KEY"`
}

// CORSConfig holds the origin allow-list. "*" allows every origin.
type CORSConfig struct {
	AllowedOrigins []string `koanf:"allowed_origins" env:"ALLOWED_ORIGINS" envSeparator:","`
}

// YouTubeConfig holds yt-dlp settings used by the tool based resolver.
type YouTubeConfig struct {
	YTDLPPath       string        `koanf:"ytdlp_path" env:"YTDLP_PATH" validate:"required"`
	Format          string        `koanf:"format" validate:"required"`
	Cookies         string        `koanf:"cookies" env:"YTDLP_COOKIES"`
	ResolveTimeout  time.Duration `koanf:"resolve_timeout" validate:"required"`
	MetadataBackend string        `koanf:"metadata_backend" env:"METADATA_BACKEND" validate:"oneof=ytdlp native"`
}

// BigAzConfig holds settings for the big.az scraper.
type BigAzConfig struct {
	BaseURL      string        `koanf:"base_url" validate:"required,url"`
	AnalyticsURL string        `koanf:"analytics_url" validate:"omitempty,url"`
	Analytics    bool          `koanf:"analytics"`
	UserAgent    string        `koanf:"user_agent" validate:"required"`
	Timeout      time.Duration `koanf:"timeout" validate:"required"`

	// RequestsPerSecond paces outgoing requests to big.az; zero disables
	// pacing.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"min=0"`
	Burst             int     `koanf:"burst" validate:"min=0"`
}

// TranscodeConfig holds ffmpeg settings for the conversion stage.
type TranscodeConfig struct {
	FFmpegPath      string        `koanf:"ffmpeg_path" env:"FFMPEG_PATH" validate:"required"`
	OutputFormat    string        `koanf:"output_format" validate:"oneof=mp3 ogg"`
	AudioBitrate    string        `koanf:"audio_bitrate" validate:"required"`
	AudioSampleRate int           `koanf:"audio_sample_rate" validate:"min=8000"`
	ReadBufferSize  int           `koanf:"read_buffer_size" validate:"min=1024"`
	Timeout         time.Duration `koanf:"timeout" validate:"required"`
	KillGrace       time.Duration `koanf:"kill_grace" validate:"required"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled bool   `koanf:"enabled" env:"METRICS_ENABLED"`
	Path    string `koanf:"path" validate:"omitempty,startswith=/"`
}

// Default returns the configuration used when no file or environment
// overrides a value.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Port:              3000,
			ServiceName:       "music-app-back",
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ShutdownTimeout:   15 * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:3000"},
		},
		YouTube: YouTubeConfig{
			YTDLPPath:       "yt-dlp",
			Format:          "bestaudio[ext=m4a]/bestaudio",
			ResolveTimeout:  45 * time.Second,
			MetadataBackend: "ytdlp",
		},
		BigAz: BigAzConfig{
			BaseURL:      "https://mp3.big.az/",
			AnalyticsURL: "https://analytics.google.com/g/collect",
			Analytics:    true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/144.0.0.0 Safari/537.36",
			Timeout:      20 * time.Second,

			RequestsPerSecond: 5,
			Burst:             10,
		},
		Transcode: TranscodeConfig{
			FFmpegPath:      "ffmpeg",
			OutputFormat:    "mp3",
			AudioBitrate:    "192k",
			AudioSampleRate: 44100,
			ReadBufferSize:  32 * 1024,
			Timeout:         15 * time.Minute,
			KillGrace:       5 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path and the
// environment, in that order, then validates it. A missing file is skipped
// unless required is set.
func Load(path string, required bool) (*Config, error) {
	cfg := Default()

	if path != "" {
		_, err := os.Stat(path)
		switch {
		case errors.Is(err, fs.ErrNotExist) && !required:
			slog.Debug("config file not found, using defaults and environment", "path", path)
		case err != nil:
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		default:
			k := koanf.New(".")
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("loading config from %s: %w", path, err)
			}
			if err := k.Unmarshal("", cfg); err != nil {
				return nil, fmt.Errorf("unmarshaling config: %w", err)
			}
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	cfg.CORS.AllowedOrigins = normalizeOrigins(cfg.CORS.AllowedOrigins)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func normalizeOrigins(origins []string) []string {
	out := make([]string, 0, len(origins))
	for _, o := range origins {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// SlogLevel returns the configured log level.
func (c LogConfig) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Level)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Logger builds the process logger. debug forces the debug level.
func (c LogConfig) Logger(debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if debug {
		opts.Level = slog.LevelDebug
	}
	if c.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

// ConfigFrom extracts the Config from the CLI command metadata.
func ConfigFrom(cmd *cli.Command) (*Config, error) {
	v, ok := cmd.Root().Metadata["config"]
	if !ok {
		return nil, fmt.Errorf("config not found in command metadata")
	}
	cfg, ok := v.(*Config)
	if !ok {
		return nil, fmt.Errorf("config has unexpected type %T", v)
	}
	return cfg, nil
}
