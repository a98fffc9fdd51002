// Package transcode runs the ffmpeg conversion stage that turns a resolved
// source URL into an audio byte stream on stdout.
package transcode

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strconv"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/media"
)

// stderrTailLines is how many diagnostic lines are kept for exit errors.
const stderrTailLines = 8

// diagnosticRe marks stderr lines worth surfacing above debug level.
var diagnosticRe = regexp.MustCompile(`(?i)error|invalid`)

// commandFunc builds the *exec.Cmd for an ffmpeg invocation.
type commandFunc func(name string, args ...string) *exec.Cmd

// FFmpeg converts sources to a single fixed-bitrate audio format.
type FFmpeg struct {
	cfg     app.TranscodeConfig
	format  media.FormatInfo
	command commandFunc
}

// NewFFmpeg creates an FFmpeg stage from cfg.
func NewFFmpeg(cfg app.TranscodeConfig) (*FFmpeg, error) {
	format, ok := media.LookupFormat(cfg.OutputFormat)
	if !ok {
		return nil, fmt.Errorf("unsupported output format %q", cfg.OutputFormat)
	}
	return &FFmpeg{
		cfg:     cfg,
		format:  format,
		command: exec.Command,
	}, nil
}

// ContentType returns the MIME type of the produced stream.
func (f *FFmpeg) ContentType() string { return f.format.ContentType }

// Extension returns the file extension of the produced stream.
func (f *FFmpeg) Extension() string { return f.format.Extension }

// Args returns the ffmpeg arguments used to convert src.
func (f *FFmpeg) Args(src *media.Source) []string {
	args := []string{
		"-hide_banner",
		// Never read from stdin, ffmpeg would otherwise steal the terminal
		"-nostdin",
		// Warnings and errors only, stderr is monitored line by line
		"-loglevel", "warning",
	}

	// Forward any HTTP headers (e.g. Referer, User-Agent) to the source server
	if h := media.FormatHTTPHeaders(src.Headers); h != "" {
		args = append(args, "-headers", h)
	}

	if src.URL.Scheme == "http" || src.URL.Scheme == "https" {
		// Survive short upstream hiccups on long tracks
		args = append(args, "-reconnect", "1", "-reconnect_streamed", "1", "-reconnect_delay_max", "5")
	}

	args = append(args,
		"-i", src.URL.String(),
		// Drop cover art and video tracks
		"-vn",
		// Audio codec (e.g. libmp3lame)
		"-c:a", f.format.Codec,
		// Fixed output bitrate (e.g. 192k)
		"-b:a", f.cfg.AudioBitrate,
		// Audio sample rate in Hz
		"-ar", strconv.Itoa(f.cfg.AudioSampleRate),
		// Container format for the output stream
		"-f", f.cfg.OutputFormat,
		// Write output to stdout for pipe consumption
		"pipe:1",
	)
	return args
}

// Transcode starts ffmpeg reading from src and returns the readable end of
// its stdout together with the process handle. The caller owns the process:
// it must read stdout until EOF or Terminate it, then Wait.
func (f *FFmpeg) Transcode(ctx context.Context, src *media.Source) (io.ReadCloser, Process, error) {
	cmd := f.command(f.cfg.FFmpegPath, f.Args(src)...)
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("creating stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting ffmpeg: %w", err)
	}

	slog.InfoContext(ctx, "ffmpeg process started", "pid", cmd.Process.Pid, "source_host", src.URL.Host, "output_format", f.cfg.OutputFormat, "bitrate", f.cfg.AudioBitrate)

	p := newProcess("ffmpeg", cmd, f.cfg.KillGrace)
	p.monitor(func() error {
		monitorStderr(ctx, stderr, p.tail)
		return nil
	})

	return stdout, p, nil
}

// monitorStderr reads stderr line by line. Lines that look like errors are
// logged at warn level and kept in t; everything else is debug output.
func monitorStderr(ctx context.Context, r io.Reader, t *tail) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if diagnosticRe.MatchString(line) {
			slog.WarnContext(ctx, "ffmpeg", "line", line)
			t.Add(line)
			continue
		}
		slog.DebugContext(ctx, "ffmpeg", "line", line)
	}
	if err := scanner.Err(); err != nil {
		slog.WarnContext(ctx, "ffmpeg stderr scanner error", "err", err)
	}
}
