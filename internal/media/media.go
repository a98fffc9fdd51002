package media

import (
	"net/url"
	"strings"
	"time"
)

const (
	MP3  = "audio/mpeg"
	OGG  = "audio/ogg"
	JSON = "application/json"
)

// Provider identifies the external site an Identifier refers to.
type Provider string

const (
	ProviderYouTube Provider = "youtube"
	ProviderBigAz   Provider = "bigaz"
)

// AudioParams are the auxiliary tokens big.az requires to hand out an audio
// URL. They are scraped from a song page and echoed back by clients.
type AudioParams struct {
	LK string `json:"lk"`
	MH string `json:"mh"`
	MR string `json:"mr"`
	HS string `json:"hs"`
}

// AudioParamsFromQuery reads lk, mh, mr and hs from q.
func AudioParamsFromQuery(q url.Values) AudioParams {
	return AudioParams{
		LK: q.Get("lk"),
		MH: q.Get("mh"),
		MR: q.Get("mr"),
		HS: q.Get("hs"),
	}
}

// Encode adds the non-empty tokens to q.
func (p AudioParams) Encode(q url.Values) {
	for k, v := range map[string]string{"lk": p.LK, "mh": p.MH, "mr": p.MR, "hs": p.HS} {
		if v != "" {
			q.Set(k, v)
		}
	}
}

// Identifier is a validated reference to a track on a provider.
type Identifier struct {
	Provider Provider
	Value    string
	Tokens   AudioParams
}

func (id Identifier) String() string {
	return string(id.Provider) + ":" + id.Value
}

// Source is a direct, short-lived URL yielding raw media bytes. It is consumed
// once by the transcode stage and never cached.
type Source struct {
	URL        *url.URL
	Headers    map[string]string
	Provider   Provider
	ResolvedAt time.Time
}

// TrackMetadata describes a track for filenames and the info endpoint.
type TrackMetadata struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Duration     int64  `json:"duration"`
	DurationText string `json:"durationText"`
	Channel      string `json:"channel"`
	Thumbnail    string `json:"thumbnail,omitempty"`
	Description  string `json:"description,omitempty"`
	ViewCount    int64  `json:"viewCount"`
	UploadDate   string `json:"uploadDate,omitempty"`
}

// maxDescription bounds TrackMetadata.Description, in runes.
const maxDescription = 200

// TruncateDescription shortens s to the description limit.
func TruncateDescription(s string) string {
	r := []rune(s)
	if len(r) <= maxDescription {
		return s
	}
	return string(r[:maxDescription])
}

// Song is a single big.az search result.
type Song struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Artist       string  `json:"artist"`
	HTMLFileName string  `json:"htmlFileName"`
	DemoID       *string `json:"demoId"`
	FullTitle    string  `json:"fullTitle"`
}

// SearchResult is a page of big.az search results.
type SearchResult struct {
	Songs   []Song `json:"songs"`
	HasMore bool   `json:"hasMore"`
	Query   string `json:"query"`
}

// SongPage holds what is scraped from a big.az song detail page.
type SongPage struct {
	SongID       string      `json:"songId"`
	Title        string      `json:"title"`
	HTMLFileName string      `json:"htmlFileName"`
	AudioParams  AudioParams `json:"audioParams"`
}

// FormatInfo describes an output format.
type FormatInfo struct {
	ContentType string
	Extension   string
	Codec       string
}

// formatRegistry maps ffmpeg output format names to FormatInfo.
var formatRegistry = map[string]FormatInfo{
	"mp3": {ContentType: MP3, Extension: ".mp3", Codec: "libmp3lame"},
	"ogg": {ContentType: OGG, Extension: ".ogg", Codec: "libopus"},
}

// LookupFormat returns format info for an ffmpeg output format name.
func LookupFormat(name string) (FormatInfo, bool) {
	fi, ok := formatRegistry[name]
	return fi, ok
}

// FormatHTTPHeaders formats a map of headers into the ffmpeg -headers flag
// value: "Key: Value\r\nKey2: Value2\r\n".
func FormatHTTPHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}
	var b strings.Builder
	for k, v := range headers {
		if strings.HasPrefix(k, ":") { // skip HTTP/2 pseudo-headers (:method, :path, …)
			continue
		}
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	return b.String()
}
