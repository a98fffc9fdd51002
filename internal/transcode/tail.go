package transcode

import (
	"strings"
	"sync"
)

// tail is a fixed-capacity ring of lines. Once full, each new line
// overwrites the oldest one.
type tail struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

func newTail(capacity int) *tail {
	return &tail{lines: make([]string, capacity)}
}

// Add appends line, dropping the oldest line if the ring is full.
func (t *tail) Add(line string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.lines) == 0 {
		return
	}
	t.lines[t.next] = line
	t.next = (t.next + 1) % len(t.lines)
	if t.next == 0 {
		t.full = true
	}
}

// Lines returns the retained lines, oldest first.
func (t *tail) Lines() []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}
	out := make([]string, 0, len(t.lines))
	out = append(out, t.lines[t.next:]...)
	return append(out, t.lines[:t.next]...)
}

func (t *tail) String() string {
	return strings.Join(t.Lines(), "; ")
}
