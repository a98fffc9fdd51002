package resolve

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// waitDelay bounds how long a cancelled yt-dlp may ignore SIGTERM before it
// is killed.
const waitDelay = 5 * time.Second

// commandFunc builds the *exec.Cmd for a yt-dlp invocation. It must use
// exec.CommandContext.
type commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// YTDLP resolves YouTube videos with the yt-dlp binary.
type YTDLP struct {
	path    string
	format  string
	cookies string
	timeout time.Duration
	command commandFunc
}

// NewYTDLP creates a YTDLP from cfg.
func NewYTDLP(cfg app.YouTubeConfig) *YTDLP {
	return &YTDLP{
		path:    cfg.YTDLPPath,
		format:  cfg.Format,
		cookies: cfg.Cookies,
		timeout: cfg.ResolveTimeout,
		command: exec.CommandContext,
	}
}

// Resolve returns a direct, time-limited URL for the best audio-only format
// of the video. yt-dlp exits before Resolve returns.
func (y *YTDLP) Resolve(ctx context.Context, id media.Identifier) (*media.Source, error) {
	if id.Provider != media.ProviderYouTube {
		return nil, fmt.Errorf("yt-dlp cannot resolve %s identifiers", id.Provider)
	}

	out, err := y.run(ctx,
		// Prefer a specific container, fall back to any audio-only format
		"-f", y.format,
		// Print the media URL instead of downloading
		"-g",
		"--no-playlist",
		"--no-warnings",
		watchURL(id.Value),
	)
	if err != nil {
		return nil, err
	}

	raw := firstLine(out)
	if raw == "" {
		return nil, apperr.New(apperr.KindResolutionFailed, "yt-dlp returned no audio URL")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindResolutionFailed, "yt-dlp returned an invalid URL", err)
	}

	slog.DebugContext(ctx, "yt-dlp resolved audio url", "video_id", id.Value, "host", u.Host)

	return &media.Source{
		URL:        u,
		Provider:   media.ProviderYouTube,
		ResolvedAt: time.Now(),
	}, nil
}

// ytdlpInfo is the subset of yt-dlp --dump-json output we read.
type ytdlpInfo struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Duration    float64 `json:"duration"`
	Channel     string  `json:"channel"`
	Uploader    string  `json:"uploader"`
	Thumbnail   string  `json:"thumbnail"`
	Description string  `json:"description"`
	ViewCount   int64   `json:"view_count"`
	UploadDate  string  `json:"upload_date"`
}

// Lookup implements MetadataLookup.
func (y *YTDLP) Lookup(ctx context.Context, videoID string) (*media.TrackMetadata, error) {
	out, err := y.run(ctx,
		"--dump-json",
		"--no-download",
		"--no-playlist",
		"--no-warnings",
		watchURL(videoID),
	)
	if err != nil {
		return nil, err
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, apperr.Wrap(apperr.KindResolutionFailed, "Failed to parse video info", err)
	}

	channel := info.Channel
	if channel == "" {
		channel = info.Uploader
	}
	duration := int64(info.Duration)

	return &media.TrackMetadata{
		ID:           info.ID,
		Title:        info.Title,
		Duration:     duration,
		DurationText: media.FormatDuration(duration),
		Channel:      channel,
		Thumbnail:    info.Thumbnail,
		Description:  media.TruncateDescription(info.Description),
		ViewCount:    info.ViewCount,
		UploadDate:   info.UploadDate,
	}, nil
}

// run executes yt-dlp with args under the resolve timeout and returns its
// stdout. Failures are classified from stderr.
func (y *YTDLP) run(ctx context.Context, args ...string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer

	err := withCookieFile(y.cookies, func(cookiePath string) error {
		if cookiePath != "" {
			args = append([]string{"--cookies", cookiePath}, args...)
		}

		cmd := y.command(ctx, y.path, args...)
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
		cmd.Cancel = func() error { return cmd.Process.Signal(syscall.SIGTERM) }
		cmd.WaitDelay = waitDelay

		slog.DebugContext(ctx, "yt-dlp starting", "args", redactArgs(args))
		return cmd.Run()
	})
	if err == nil {
		return stdout.Bytes(), nil
	}

	var exitErr *exec.ExitError
	switch {
	case errors.Is(err, exec.ErrNotFound):
		return nil, apperr.Wrap(apperr.KindMisconfigured, "yt-dlp not found or failed to start", err)
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, &apperr.Error{Kind: apperr.KindUpstream, Reason: apperr.ReasonUnknown, Message: "yt-dlp timed out", Err: err}
	case ctx.Err() != nil:
		return nil, fmt.Errorf("yt-dlp cancelled: %w", ctx.Err())
	case errors.As(err, &exitErr):
		slog.WarnContext(ctx, "yt-dlp failed", "exit_code", exitErr.ExitCode(), "stderr", strings.TrimSpace(stderr.String()))
		return nil, upstreamError(stderr.String(), err)
	default:
		return nil, apperr.Wrap(apperr.KindMisconfigured, "yt-dlp not found or failed to start", err)
	}
}

// firstLine returns the first non-empty trimmed line of out.
func firstLine(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line
		}
	}
	return ""
}

// redactArgs hides the cookie file path from logs.
func redactArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i++ {
		if out[i] == "--cookies" {
			out[i+1] = "<redacted>"
		}
	}
	return out
}
