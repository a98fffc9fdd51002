package app

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "bestaudio[ext=m4a]/bestaudio", cfg.YouTube.Format)
	assert.Equal(t, "192k", cfg.Transcode.AudioBitrate)
	assert.Empty(t, cfg.Auth.APIKey)
}

func TestLoadMissingRequiredFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"), true)
	require.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8080
auth:
  api_key: from-file
youtube:
  resolve_timeout: 10s
transcode:
  audio_bitrate: 128k
`)

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "from-file", cfg.Auth.APIKey)
	assert.Equal(t, 10*time.Second, cfg.YouTube.ResolveTimeout)
	assert.Equal(t, "128k", cfg.Transcode.AudioBitrate)
	// Untouched keys keep their defaults
	assert.Equal(t, "yt-dlp", cfg.YouTube.YTDLPPath)
	assert.Equal(t, 44100, cfg.Transcode.AudioSampleRate)
}

func TestLoadExampleMatchesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "config.example.yaml"), true)
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  api_key: from-file
`)
	t.Setenv("API_KEY", "from-env")
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("YTDLP_COOKIES", "# Netscape HTTP Cookie File")

	cfg, err := Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, "# Netscape HTTP Cookie File", cfg.YouTube.Cookies)
}

func TestLoadInvalid(t *testing.T) {
	testCases := []struct {
		Name    string
		Content string
	}{
		{Name: "port", Content: "server:\n  port: 70000\n"},
		{Name: "metadata backend", Content: "youtube:\n  metadata_backend: scraper\n"},
		{Name: "output format", Content: "transcode:\n  output_format: wav\n"},
		{Name: "base url", Content: "bigaz:\n  base_url: not a url\n"},
		{Name: "log level", Content: "log:\n  level: loud\n"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			_, err := Load(writeConfig(t, testCase.Content), true)
			require.Error(t, err)
		})
	}
}

func TestServerAddress(t *testing.T) {
	assert.Equal(t, ":3000", ServerConfig{Port: 3000}.Address())
	assert.Equal(t, "127.0.0.1:8080", ServerConfig{Host: "127.0.0.1", Port: 8080}.Address())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, LogConfig{Level: "debug"}.SlogLevel())
	assert.Equal(t, slog.LevelWarn, LogConfig{Level: "warn"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, LogConfig{Level: "nonsense"}.SlogLevel())
}
