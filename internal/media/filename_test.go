package media

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    string
		Expected string
	}{
		{Name: "reserved characters", Input: `Artist: "Best" / Song?*`, Expected: "Artist Best Song"},
		{Name: "plain", Input: "Rick Astley - Never Gonna Give You Up", Expected: "Rick Astley - Never Gonna Give You Up"},
		{Name: "collapse spaces", Input: "  a    b  ", Expected: "a b"},
		{Name: "non ascii dropped", Input: "Mirzə Babayev — Sən", Expected: "Mirz Babayev Sn"},
		{Name: "control characters dropped", Input: "a\tb\nc", Expected: "abc"},
		{Name: "empty", Input: "", Expected: "download"},
		{Name: "only non ascii", Input: "Привет мир", Expected: "download"},
		{Name: "only reserved", Input: `<>:"/\|?*`, Expected: "download"},
		{Name: "brackets kept", Input: "Song (Live) [2020]", Expected: "Song (Live) [2020]"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, SanitizeFilename(testCase.Input))
		})
	}
}

func TestSanitizeFilenameProperties(t *testing.T) {
	inputs := []string{
		`Artist: "Best" / Song?*`,
		"",
		"日本語のタイトル",
		strings.Repeat("long title ", 60),
		strings.Repeat("x", 199) + " y",
		"\x00\x01abc\x7f",
		" leading and trailing ",
		`a\b|c<d>e`,
	}

	for _, input := range inputs {
		out := SanitizeFilename(input)

		require.NotEmpty(t, out)
		assert.LessOrEqual(t, len(out), 200)
		assert.Equal(t, out, SanitizeFilename(out), "not idempotent for %q", input)
		assert.NotContains(t, out, "  ")
		assert.Equal(t, strings.TrimSpace(out), out)
		for _, r := range out {
			assert.True(t, r >= 0x20 && r <= 0x7e, "non printable %q in %q", r, out)
			assert.NotContains(t, `<>:"/\|?*`, string(r))
		}
	}
}

func TestContentDisposition(t *testing.T) {
	assert.Equal(t, `attachment; filename="Artist Song.mp3"`, ContentDisposition(`Artist "Song".mp3`))
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "My Song.mp3", Filename("My: Song", "youtube-x", ".mp3"))
	assert.Equal(t, "youtube-x.mp3", Filename("  ", "youtube-x", ".mp3"))
	assert.Equal(t, "download.mp3", Filename("日本", "youtube-x", ".mp3"))
}

func TestFormatDuration(t *testing.T) {
	testCases := []struct {
		Seconds  int64
		Expected string
	}{
		{Seconds: -1, Expected: "0:00"},
		{Seconds: 0, Expected: "0:00"},
		{Seconds: 5, Expected: "0:05"},
		{Seconds: 225, Expected: "3:45"},
		{Seconds: 3750, Expected: "1:02:30"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Expected, func(t *testing.T) {
			assert.Equal(t, testCase.Expected, FormatDuration(testCase.Seconds))
		})
	}
}
