package resolve

import (
	"regexp"
	"strings"

	"github.com/stupside/mp3relay/internal/apperr"
)

// classifyRule maps a stderr pattern to an upstream failure reason.
type classifyRule struct {
	pattern *regexp.Regexp
	reason  apperr.Reason
	message string
}

// classifyRules is evaluated top to bottom; the first match wins.
//
//	pattern                              reason          example stderr
//	confirm you're not a bot / HTTP 429  bot_check       Sign in to confirm you’re not a bot
//	confirm your age / age-restricted    age_restricted  Sign in to confirm your age
//	available in your country            region_blocked  The uploader has not made this video available in your country
//	copyright                            takedown        ...due to a copyright claim by X
//	live event / premieres / is live     live_stream     This live event will begin in 3 hours
//	video unavailable / private video    unavailable     Video unavailable
var classifyRules = []classifyRule{
	{
		pattern: regexp.MustCompile(`(?i)confirm you.re not a bot|HTTP Error 429`),
		reason:  apperr.ReasonBotCheck,
		message: "YouTube requested bot verification, configure cookies or retry later",
	},
	{
		pattern: regexp.MustCompile(`(?i)confirm your age|age[- ]restricted|inappropriate for some users`),
		reason:  apperr.ReasonAgeRestricted,
		message: "This video is age-restricted",
	},
	{
		pattern: regexp.MustCompile(`(?i)available in your country|geo[- ]?restrict`),
		reason:  apperr.ReasonRegionBlocked,
		message: "This video is not available in the server's region",
	},
	{
		pattern: regexp.MustCompile(`(?i)copyright`),
		reason:  apperr.ReasonTakedown,
		message: "This video was removed because of a copyright claim",
	},
	{
		pattern: regexp.MustCompile(`(?i)live event will begin|premieres in|is a live stream|is live now|live stream recording is not available`),
		reason:  apperr.ReasonLiveStream,
		message: "Live streams and upcoming premieres cannot be downloaded",
	},
	{
		pattern: regexp.MustCompile(`(?i)video unavailable|private video|has been removed|does not exist`),
		reason:  apperr.ReasonUnavailable,
		message: "This video is unavailable",
	},
}

// Classify maps yt-dlp stderr output to a failure reason and a client-facing
// message.
func Classify(stderr string) (apperr.Reason, string) {
	for _, rule := range classifyRules {
		if rule.pattern.MatchString(stderr) {
			return rule.reason, rule.message
		}
	}

	detail := errorLine(stderr)
	if detail == "" {
		return apperr.ReasonUnknown, "yt-dlp failed"
	}
	return apperr.ReasonUnknown, "yt-dlp failed: " + detail
}

// errorLine returns the last "ERROR:" line of stderr without its prefix, or
// the last non-empty line.
func errorLine(stderr string) string {
	var last string
	lines := strings.Split(stderr, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		if after, ok := strings.CutPrefix(line, "ERROR:"); ok {
			return strings.TrimSpace(after)
		}
		if last == "" {
			last = line
		}
	}
	return last
}

// upstreamError builds the classified error for a failed yt-dlp run.
func upstreamError(stderr string, err error) *apperr.Error {
	reason, message := Classify(stderr)
	return &apperr.Error{
		Kind:    apperr.KindUpstream,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}
