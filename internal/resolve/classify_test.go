package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/stupside/mp3relay/internal/apperr"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		Name     string
		Stderr   string
		Expected apperr.Reason
	}{
		{
			Name:     "bot check",
			Stderr:   "ERROR: [youtube] dQw4w9WgXcQ: Sign in to confirm you’re not a bot. Use --cookies-from-browser or --cookies for the authentication.",
			Expected: apperr.ReasonBotCheck,
		},
		{
			Name:     "rate limited",
			Stderr:   "ERROR: unable to download video data: HTTP Error 429: Too Many Requests",
			Expected: apperr.ReasonBotCheck,
		},
		{
			Name:     "age restricted",
			Stderr:   "ERROR: [youtube] abc: Sign in to confirm your age. This video may be inappropriate for some users.",
			Expected: apperr.ReasonAgeRestricted,
		},
		{
			Name:     "region blocked",
			Stderr:   "ERROR: [youtube] abc: Video unavailable. The uploader has not made this video available in your country",
			Expected: apperr.ReasonRegionBlocked,
		},
		{
			Name:     "takedown",
			Stderr:   "ERROR: [youtube] abc: Video unavailable. This video is no longer available due to a copyright claim by Someone",
			Expected: apperr.ReasonTakedown,
		},
		{
			Name:     "live",
			Stderr:   "ERROR: [youtube] abc: This live event will begin in 3 hours.",
			Expected: apperr.ReasonLiveStream,
		},
		{
			Name:     "premiere",
			Stderr:   "ERROR: [youtube] abc: Premieres in 2 days",
			Expected: apperr.ReasonLiveStream,
		},
		{
			Name:     "unavailable",
			Stderr:   "ERROR: [youtube] abc: Video unavailable",
			Expected: apperr.ReasonUnavailable,
		},
		{
			Name:     "private",
			Stderr:   "ERROR: [youtube] abc: Private video. Sign in if you've been granted access to this video",
			Expected: apperr.ReasonUnavailable,
		},
		{
			Name:     "unknown",
			Stderr:   "ERROR: something new went wrong",
			Expected: apperr.ReasonUnknown,
		},
		{
			Name:     "empty",
			Stderr:   "",
			Expected: apperr.ReasonUnknown,
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.Name, func(t *testing.T) {
			reason, message := Classify(testCase.Stderr)
			assert.Equal(t, testCase.Expected, reason)
			assert.NotEmpty(t, message)
		})
	}
}

func TestClassifyUnknownMessage(t *testing.T) {
	_, message := Classify("[youtube] extracting\nERROR: something new went wrong\n")
	assert.Equal(t, "yt-dlp failed: something new went wrong", message)

	_, message = Classify("just a line\n\n")
	assert.Equal(t, "yt-dlp failed: just a line", message)

	_, message = Classify("")
	assert.Equal(t, "yt-dlp failed", message)
}

func TestUpstreamError(t *testing.T) {
	err := upstreamError("ERROR: Video unavailable", assert.AnError)

	assert.Equal(t, apperr.KindUpstream, err.Kind)
	assert.Equal(t, apperr.ReasonUnavailable, err.Reason)
	assert.ErrorIs(t, err, assert.AnError)
}
