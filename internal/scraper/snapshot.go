package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/PuerkitoBio/goquery"
)

var (
	snapshotRoot = ".debug"
	snapshotDir  string
	snapshotOnce sync.Once
	snapshotSeq  atomic.Int64
)

// debugSnapshot writes the HTML of a page that did not look as expected to
// a per-process debug directory. It is a no-op unless the default logger has
// debug level enabled, and errors are only logged.
func debugSnapshot(ctx context.Context, label string, doc *goquery.Document) {
	if !slog.Default().Enabled(ctx, slog.LevelDebug) {
		return
	}

	snapshotOnce.Do(func() {
		dir := filepath.Join(snapshotRoot, fmt.Sprintf("mp3relay-debug-%d", time.Now().UnixMilli()))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			slog.Debug("snapshot: failed to create debug directory", "error", err)
			return
		}
		snapshotDir = dir
		slog.Debug("snapshot: debug directory created", "path", snapshotDir)
	})

	if snapshotDir == "" {
		return
	}

	html, err := doc.Html()
	if err != nil {
		slog.Debug("snapshot: rendering html failed", "label", label, "error", err)
		return
	}

	path := filepath.Join(snapshotDir, fmt.Sprintf("%02d-%s.html", snapshotSeq.Add(1), label))
	if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
		slog.Debug("snapshot: failed to write html", "path", path, "error", err)
		return
	}
	slog.Debug("snapshot: saved", "path", path)
}
