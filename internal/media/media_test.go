package media

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAudioParamsRoundTrip(t *testing.T) {
	q := url.Values{}
	AudioParams{LK: "a", MR: "c"}.Encode(q)

	assert.Equal(t, "a", q.Get("lk"))
	assert.False(t, q.Has("mh"))
	assert.Equal(t, AudioParams{LK: "a", MR: "c"}, AudioParamsFromQuery(q))
}

func TestTruncateDescription(t *testing.T) {
	assert.Equal(t, "short", TruncateDescription("short"))
	assert.Len(t, []rune(TruncateDescription(strings.Repeat("ə", 300))), 200)
}

func TestFormatHTTPHeaders(t *testing.T) {
	assert.Equal(t, "", FormatHTTPHeaders(nil))
	assert.Equal(t, "Referer: https://mp3.big.az/\r\n", FormatHTTPHeaders(map[string]string{
		"Referer": "https://mp3.big.az/",
		":path":   "/",
	}))
}

func TestLookupFormat(t *testing.T) {
	fi, ok := LookupFormat("mp3")
	assert.True(t, ok)
	assert.Equal(t, MP3, fi.ContentType)

	_, ok = LookupFormat("matroska")
	assert.False(t, ok)
}
