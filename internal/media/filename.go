package media

import (
	"fmt"
	"strings"
)

const (
	// FallbackFilename is used when nothing survives sanitization.
	FallbackFilename = "download"

	maxFilename = 200
)

// SanitizeFilename turns an arbitrary title into a token that is safe in a
// Content-Disposition header and on common filesystems: printable ASCII only,
// no reserved characters, single spaces, at most 200 bytes.
//
//	SanitizeFilename(`Artist: "Best" / Song?*`) // Artist Best Song
func SanitizeFilename(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	space := false
	for _, r := range s {
		switch {
		case strings.ContainsRune(`<>:"/\|?*`, r):
			continue
		case r == ' ':
			space = true
			continue
		case r < 0x20 || r > 0x7e:
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}

	out := b.String()
	if len(out) > maxFilename {
		out = strings.TrimSpace(out[:maxFilename])
	}
	if out == "" {
		return FallbackFilename
	}
	return out
}

// ContentDisposition returns an attachment header value for name.
func ContentDisposition(name string) string {
	return fmt.Sprintf(`attachment; filename="%s"`, SanitizeFilename(name))
}

// Filename builds "<sanitized title><ext>", using fallback when title is
// empty.
func Filename(title, fallback, ext string) string {
	if strings.TrimSpace(title) == "" {
		return fallback + ext
	}
	return SanitizeFilename(title) + ext
}

// FormatDuration renders seconds as m:ss or h:mm:ss.
func FormatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0:00"
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}
