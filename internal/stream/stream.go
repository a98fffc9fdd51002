// Package stream supervises download sessions: it resolves a source, runs
// the transcoder and relays its output to an HTTP response, making sure
// every external process is terminated and reaped before the request ends.
package stream

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
	"github.com/stupside/mp3relay/internal/transcode"
)

// ErrTimeout is the cancellation cause of a session that ran past its
// deadline.
var ErrTimeout = errors.New("download session timed out")

// Resolver turns an identifier into a directly fetchable source.
type Resolver interface {
	Resolve(ctx context.Context, id media.Identifier) (*media.Source, error)
}

// Transcoder starts the conversion stage for a resolved source.
type Transcoder interface {
	Transcode(ctx context.Context, src *media.Source) (io.ReadCloser, transcode.Process, error)
	ContentType() string
	Extension() string
}

// Observer receives session events. Implementations must be safe for
// concurrent use.
type Observer interface {
	Resolved(provider media.Provider, elapsed time.Duration, err error)
	Finished(provider media.Provider, state State, written int64)
}

type nopObserver struct{}

func (nopObserver) Resolved(media.Provider, time.Duration, error) {}
func (nopObserver) Finished(media.Provider, State, int64)         {}

// Manager creates sessions sharing one transcoder and a resolver per
// provider.
type Manager struct {
	resolvers  map[media.Provider]Resolver
	transcoder Transcoder
	observer   Observer

	bufferSize int
	timeout    time.Duration

	active   atomic.Int64
	sessions sync.WaitGroup
}

// Option configures a Manager.
type Option func(*Manager)

// WithResolver registers r for identifiers of provider p.
func WithResolver(p media.Provider, r Resolver) Option {
	return func(m *Manager) { m.resolvers[p] = r }
}

// WithObserver sets the session event observer.
func WithObserver(o Observer) Option {
	return func(m *Manager) { m.observer = o }
}

// NewManager creates a Manager relaying with cfg's buffer size and deadline.
func NewManager(t Transcoder, cfg app.TranscodeConfig, opts ...Option) *Manager {
	m := &Manager{
		resolvers:  make(map[media.Provider]Resolver),
		transcoder: t,
		observer:   nopObserver{},
		bufferSize: cfg.ReadBufferSize,
		timeout:    cfg.Timeout,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Active returns the number of sessions currently running.
func (m *Manager) Active() int64 { return m.active.Load() }

// Wait blocks until every running session has returned or ctx is done.
func (m *Manager) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.sessions.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Extension returns the file extension of the produced stream.
func (m *Manager) Extension() string { return m.transcoder.Extension() }

func (m *Manager) resolver(p media.Provider) (Resolver, error) {
	r, ok := m.resolvers[p]
	if !ok {
		return nil, apperr.New(apperr.KindMisconfigured, "no resolver registered for "+string(p))
	}
	return r, nil
}
