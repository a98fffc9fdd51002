package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// ErrClientGone marks sessions aborted because the client went away.
var ErrClientGone = errors.New("client disconnected")

var errNoOutput = errors.New("transcoder produced no output")

// Session is a single download. It owns the processes it starts and has
// exclusive write access to its response.
type Session struct {
	ID string

	manager  *Manager
	filename string

	state       atomic.Int32
	written     atomic.Int64
	headersSent atomic.Bool
}

// NewSession creates an idle session that will serve the stream as
// filename.
func (m *Manager) NewSession(filename string) *Session {
	return &Session{
		ID:       uuid.NewString(),
		manager:  m,
		filename: filename,
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return State(s.state.Load()) }

// HeadersSent reports whether the response status and headers have been
// written. Once true, errors can no longer be reported to the client.
func (s *Session) HeadersSent() bool { return s.headersSent.Load() }

// Written returns the number of body bytes relayed so far.
func (s *Session) Written() int64 { return s.written.Load() }

func (s *Session) setState(st State) { s.state.Store(int32(st)) }

// Run resolves id, transcodes the source and streams the result to w. It
// returns only after every process it started has been reaped. A session can
// run once.
func (s *Session) Run(ctx context.Context, w http.ResponseWriter, id media.Identifier) (err error) {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateResolving)) {
		return fmt.Errorf("session %s already started", s.ID)
	}

	m := s.manager
	m.active.Add(1)
	m.sessions.Add(1)

	started := time.Now()
	logger := slog.With("session_id", s.ID, "provider", id.Provider, "id", id.Value)

	defer func() {
		defer m.sessions.Done()
		m.active.Add(-1)

		state := s.State()
		m.observer.Finished(id.Provider, state, s.Written())

		attrs := []any{"state", state, "bytes", s.Written(), "duration", time.Since(started)}
		switch state {
		case StateCompleted:
			logger.InfoContext(ctx, "download completed", attrs...)
		case StateAborted:
			logger.InfoContext(ctx, "download aborted", attrs...)
		default:
			logger.WarnContext(ctx, "download failed", append(attrs, "error", err)...)
		}
	}()

	ctx, cancel := context.WithTimeoutCause(ctx, m.timeout, ErrTimeout)
	defer cancel()

	resolver, err := m.resolver(id.Provider)
	if err != nil {
		return s.end(ctx, err)
	}

	resolveStart := time.Now()
	src, err := resolver.Resolve(ctx, id)
	m.observer.Resolved(id.Provider, time.Since(resolveStart), err)
	if err != nil {
		return s.end(ctx, err)
	}
	logger.DebugContext(ctx, "source resolved", "host", src.URL.Host, "elapsed", time.Since(resolveStart))

	s.setState(StatePiping)

	reader, proc, err := m.transcoder.Transcode(ctx, src)
	if err != nil {
		return s.end(ctx, apperr.Wrap(apperr.KindPipelineIO, "failed to start transcoder", err))
	}

	// Terminate the pipeline as soon as the client goes away or the
	// deadline passes, even while a read is blocked.
	stop := context.AfterFunc(ctx, func() {
		logger.DebugContext(ctx, "terminating pipeline", "cause", context.Cause(ctx))
		if err := proc.Terminate(); err != nil {
			logger.WarnContext(ctx, "failed to terminate pipeline", "error", err)
		}
	})

	relayErr := s.relay(w, reader)
	stop()

	if relayErr != nil && !errors.Is(relayErr, errNoOutput) {
		if err := proc.Terminate(); err != nil {
			logger.WarnContext(ctx, "failed to terminate pipeline", "error", err)
		}
	}
	if err := reader.Close(); err != nil {
		logger.DebugContext(ctx, "closing transcoder output", "error", err)
	}
	waitErr := proc.Wait()

	switch {
	case errors.Is(relayErr, errNoOutput) && waitErr != nil:
		err = waitErr
	case errors.Is(relayErr, errNoOutput):
		err = apperr.New(apperr.KindPipelineIO, errNoOutput.Error())
	case relayErr != nil:
		err = relayErr
	default:
		err = waitErr
	}
	return s.end(ctx, err)
}

// relay copies r to w. The first chunk is read before any header is
// written so that a stage producing nothing can still be reported.
func (s *Session) relay(w http.ResponseWriter, r io.Reader) error {
	buf := make([]byte, s.manager.bufferSize)
	rc := http.NewResponseController(w)

	n, err := readChunk(r, buf)
	if n == 0 {
		if err == nil || errors.Is(err, io.EOF) {
			return errNoOutput
		}
		return apperr.Wrap(apperr.KindPipelineIO, "reading transcoder output", err)
	}

	s.writeHeaders(w)

	for {
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return fmt.Errorf("%w: %w", ErrClientGone, werr)
			}
			s.written.Add(int64(n))
			if ferr := rc.Flush(); ferr != nil && !errors.Is(ferr, http.ErrNotSupported) {
				return fmt.Errorf("%w: %w", ErrClientGone, ferr)
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return apperr.Wrap(apperr.KindPipelineIO, "reading transcoder output", err)
		}
		n, err = r.Read(buf)
	}
}

// readChunk reads until at least one byte or an error is returned.
func readChunk(r io.Reader, buf []byte) (int, error) {
	for {
		n, err := r.Read(buf)
		if n > 0 || err != nil {
			return n, err
		}
	}
}

func (s *Session) writeHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", s.manager.transcoder.ContentType())
	h.Set("Content-Disposition", media.ContentDisposition(s.filename))
	h.Set("X-Content-Type-Options", "nosniff")
	h.Del("Content-Length")
	w.WriteHeader(http.StatusOK)
	s.headersSent.Store(true)
}

// end records the terminal state for err and returns the error the caller
// should see.
func (s *Session) end(ctx context.Context, err error) error {
	switch {
	case errors.Is(context.Cause(ctx), ErrTimeout):
		s.setState(StateFailed)
		return apperr.Wrap(apperr.KindPipelineIO, "download timed out", ErrTimeout)
	case ctx.Err() != nil:
		s.setState(StateAborted)
		return fmt.Errorf("%w: %w", ErrClientGone, context.Cause(ctx))
	case errors.Is(err, ErrClientGone):
		s.setState(StateAborted)
		return err
	case err != nil:
		s.setState(StateFailed)
		return err
	}
	s.setState(StateCompleted)
	return nil
}
