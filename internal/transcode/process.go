package transcode

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/stupside/mp3relay/internal/apperr"
)

// Process is a running external stage owned by exactly one download session.
type Process interface {
	// Terminate asks the process and its children to exit. It is safe to
	// call more than once and after the process has exited.
	Terminate() error
	// Wait blocks until the process has exited and its output has been
	// drained, then reports how it exited.
	Wait() error
}

// Group terminates and reaps a set of processes together.
type Group []Process

// Terminate implements Process.
func (g Group) Terminate() error {
	var errs []error
	for _, p := range g {
		if err := p.Terminate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Wait implements Process.
func (g Group) Wait() error {
	var errs []error
	for _, p := range g {
		if err := p.Wait(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// process wraps a started *exec.Cmd running in its own process group.
type process struct {
	name  string
	cmd   *exec.Cmd
	grace time.Duration
	tail  *tail

	// stderr monitoring must finish before cmd.Wait closes the pipe
	wg errgroup.Group

	mu        sync.Mutex
	reaped    bool
	killTimer *time.Timer

	waitOnce sync.Once
	waitErr  error
}

func newProcess(name string, cmd *exec.Cmd, grace time.Duration) *process {
	return &process{
		name:  name,
		cmd:   cmd,
		grace: grace,
		tail:  newTail(stderrTailLines),
	}
}

func (p *process) monitor(fn func() error) {
	p.wg.Go(fn)
}

// Terminate sends SIGTERM to the process group and schedules SIGKILL if the
// group is still around after the grace period.
func (p *process) Terminate() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reaped {
		return nil
	}

	slog.Debug("terminating process group", "process", p.name, "pid", p.cmd.Process.Pid)
	if err := terminateGroup(p.cmd.Process); err != nil {
		return fmt.Errorf("terminating %s: %w", p.name, err)
	}

	if p.killTimer == nil {
		p.killTimer = time.AfterFunc(p.grace, p.kill)
	}
	return nil
}

func (p *process) kill() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.reaped {
		return
	}

	slog.Warn("process ignored SIGTERM, killing", "process", p.name, "pid", p.cmd.Process.Pid, "recent_stderr", p.tail.String())
	if err := killGroup(p.cmd.Process); err != nil {
		slog.Warn("failed to kill process group", "process", p.name, "error", err)
	}
}

// Wait implements Process.
func (p *process) Wait() error {
	p.waitOnce.Do(func() {
		_ = p.wg.Wait()
		err := p.cmd.Wait()

		p.mu.Lock()
		p.reaped = true
		if p.killTimer != nil {
			p.killTimer.Stop()
		}
		p.mu.Unlock()

		if err != nil {
			p.waitErr = p.exitError(err)
		}
	})
	return p.waitErr
}

func (p *process) exitError(err error) error {
	msg := fmt.Sprintf("%s exited abnormally", p.name)
	if recent := p.tail.String(); recent != "" {
		msg += ": " + recent
	}
	return apperr.Wrap(apperr.KindPipelineIO, msg, err)
}

var (
	_ Process = (*process)(nil)
	_ Process = Group(nil)
)
