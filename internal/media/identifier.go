package media

import (
	"regexp"
)

var (
	videoIDRe = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	songIDRe  = regexp.MustCompile(`^[0-9]+$`)
	slugIDRe  = regexp.MustCompile(`-(\d+)\.html$`)

	videoURLRes = []*regexp.Regexp{
		regexp.MustCompile(`(?:youtube\.com/watch\?(?:.*&)?v=|youtu\.be/|youtube\.com/embed/)([A-Za-z0-9_-]{11})`),
		regexp.MustCompile(`youtube\.com/v/([A-Za-z0-9_-]{11})`),
	}
)

// ValidVideoID reports whether s is a YouTube video ID: exactly 11
// characters from [A-Za-z0-9_-].
func ValidVideoID(s string) bool {
	return videoIDRe.MatchString(s)
}

// ExtractVideoID returns the video ID contained in s, which may be a bare ID
// or a watch, short, embed or /v/ URL.
func ExtractVideoID(s string) (string, bool) {
	if ValidVideoID(s) {
		return s, true
	}
	for _, re := range videoURLRes {
		if m := re.FindStringSubmatch(s); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// ValidSongID reports whether s is a big.az song ID.
func ValidSongID(s string) bool {
	return songIDRe.MatchString(s)
}

// SongIDFromSlug extracts the numeric song ID from a detail page slug such
// as "aref-kemal-lezginka-868412.html".
func SongIDFromSlug(slug string) (string, bool) {
	m := slugIDRe.FindStringSubmatch(slug)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// YouTube returns the Identifier for a validated video ID.
func YouTube(videoID string) Identifier {
	return Identifier{Provider: ProviderYouTube, Value: videoID}
}

// BigAz returns the Identifier for a validated song ID.
func BigAz(songID string, tokens AudioParams) Identifier {
	return Identifier{Provider: ProviderBigAz, Value: songID, Tokens: tokens}
}
