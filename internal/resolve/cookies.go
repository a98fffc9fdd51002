package resolve

import (
	"fmt"
	"log/slog"
	"os"
)

// withCookieFile writes cookies to a uniquely named file in the system temp
// directory, calls fn with its path and removes the file before returning,
// whatever fn returns. With no cookies fn receives an empty path and nothing
// touches the disk.
func withCookieFile(cookies string, fn func(path string) error) error {
	if cookies == "" {
		return fn("")
	}

	f, err := os.CreateTemp("", "ytdlp-cookies-*.txt")
	if err != nil {
		return fmt.Errorf("creating cookie file: %w", err)
	}
	path := f.Name()
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove cookie file", "path", path, "error", err)
		}
	}()

	if _, err := f.WriteString(cookies); err != nil {
		f.Close()
		return fmt.Errorf("writing cookie file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing cookie file: %w", err)
	}

	return fn(path)
}
