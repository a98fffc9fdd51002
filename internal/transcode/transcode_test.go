package transcode

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// TestHelperProcess is not a real test. It stands in for the ffmpeg binary
// when re-executed by helperCommand.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("HELPER_BEHAVIOUR") {
	case "stream":
		fmt.Fprintln(os.Stderr, "Input #0, mov,mp4,m4a,3gp,3g2,mj2")
		fmt.Fprintln(os.Stderr, "[mp3 @ 0x1] Invalid frame header skipped")
		os.Stdout.WriteString("ID3")
		os.Stdout.WriteString(strings.Repeat("\xff\xfb", 1024))
	case "crash":
		os.Stdout.WriteString("ID3partial")
		fmt.Fprintln(os.Stderr, "Error while decoding stream #0:0: Invalid data found when processing input")
		os.Exit(1)
	case "hang":
		os.Stdout.WriteString("ID3")
		time.Sleep(time.Minute)
	}
	os.Exit(0)
}

func helperCommand(behaviour string) commandFunc {
	return func(name string, args ...string) *exec.Cmd {
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.Command(os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_BEHAVIOUR="+behaviour)
		return cmd
	}
}

func testConfig() app.TranscodeConfig {
	cfg := app.Default().Transcode
	cfg.KillGrace = time.Second
	return cfg
}

func newTestFFmpeg(t *testing.T, behaviour string) *FFmpeg {
	t.Helper()

	f, err := NewFFmpeg(testConfig())
	require.NoError(t, err)
	f.command = helperCommand(behaviour)
	return f
}

func testSource(t *testing.T) *media.Source {
	t.Helper()

	u, err := url.Parse("https://cdn.example/audio.m4a?sig=abc")
	require.NoError(t, err)
	return &media.Source{URL: u, Headers: map[string]string{"Referer": "https://mp3.big.az/"}}
}

func TestNewFFmpegUnsupportedFormat(t *testing.T) {
	cfg := testConfig()
	cfg.OutputFormat = "wav"

	_, err := NewFFmpeg(cfg)
	require.Error(t, err)
}

func TestArgs(t *testing.T) {
	f, err := NewFFmpeg(testConfig())
	require.NoError(t, err)

	args := f.Args(testSource(t))
	joined := strings.Join(args, " ")

	assert.Contains(t, joined, "-headers Referer: https://mp3.big.az/\r\n")
	assert.Contains(t, joined, "-reconnect 1")
	assert.Contains(t, joined, "-i https://cdn.example/audio.m4a?sig=abc")
	assert.Contains(t, joined, "-c:a libmp3lame -b:a 192k -ar 44100 -f mp3")
	assert.Equal(t, "pipe:1", args[len(args)-1])
	assert.Equal(t, media.MP3, f.ContentType())
	assert.Equal(t, ".mp3", f.Extension())
}

func TestArgsLocalSource(t *testing.T) {
	f, err := NewFFmpeg(testConfig())
	require.NoError(t, err)

	u, _ := url.Parse("file:///tmp/a.m4a")
	args := f.Args(&media.Source{URL: u})

	assert.NotContains(t, args, "-reconnect")
	assert.NotContains(t, args, "-headers")
}

func TestTranscodeStream(t *testing.T) {
	f := newTestFFmpeg(t, "stream")

	reader, proc, err := f.Transcode(context.Background(), testSource(t))
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = io.Copy(&out, reader)
	require.NoError(t, err)
	require.NoError(t, proc.Wait())

	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("ID3")))
	assert.Equal(t, 3+2048, out.Len())
}

func TestTranscodeCrash(t *testing.T) {
	f := newTestFFmpeg(t, "crash")

	reader, proc, err := f.Transcode(context.Background(), testSource(t))
	require.NoError(t, err)

	_, err = io.ReadAll(reader)
	require.NoError(t, err)

	err = proc.Wait()
	require.Error(t, err)
	assert.Equal(t, apperr.KindPipelineIO, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "Invalid data found")
}

func TestTranscodeTerminate(t *testing.T) {
	f := newTestFFmpeg(t, "hang")

	reader, proc, err := f.Transcode(context.Background(), testSource(t))
	require.NoError(t, err)

	buf := make([]byte, 3)
	_, err = io.ReadFull(reader, buf)
	require.NoError(t, err)

	require.NoError(t, proc.Terminate())

	done := make(chan error, 1)
	go func() {
		_, _ = io.Copy(io.Discard, reader)
		done <- proc.Wait()
	}()

	select {
	case err := <-done:
		require.Error(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("process was not terminated")
	}

	// Terminating a reaped process is a no-op
	assert.NoError(t, proc.Terminate())
}

func TestTranscodeMissingBinary(t *testing.T) {
	cfg := testConfig()
	cfg.FFmpegPath = "ffmpeg-does-not-exist-on-this-host"

	f, err := NewFFmpeg(cfg)
	require.NoError(t, err)

	_, _, err = f.Transcode(context.Background(), testSource(t))
	require.Error(t, err)
}

type fakeProcess struct {
	terminated int
	waited     int
	err        error
}

func (p *fakeProcess) Terminate() error { p.terminated++; return nil }
func (p *fakeProcess) Wait() error      { p.waited++; return p.err }

func TestGroup(t *testing.T) {
	a := &fakeProcess{}
	b := &fakeProcess{err: assert.AnError}
	g := Group{a, b}

	require.NoError(t, g.Terminate())
	err := g.Wait()

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, a.terminated)
	assert.Equal(t, 1, b.terminated)
	assert.Equal(t, 1, a.waited)
	assert.Equal(t, 1, b.waited)
}
