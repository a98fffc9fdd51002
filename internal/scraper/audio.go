package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

// AudioURL exchanges a song ID and its page tokens for a direct audio URL.
func (c *Client) AudioURL(ctx context.Context, songID string, tokens media.AudioParams) (*url.URL, error) {
	if !media.ValidSongID(songID) {
		return nil, apperr.BadInput("Invalid song ID format")
	}

	q := url.Values{}
	q.Set("id", songID)
	q.Set("go", "7")
	// Cache buster, as the site's own player sends
	q.Set("_", strconv.FormatInt(c.now().UnixMilli(), 10))
	tokens.Encode(q)

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint("ajax.php")+"?"+q.Encode(), nil, kindAjax)
	if err != nil {
		return nil, err
	}

	doc, err := c.fetchDocument(req)
	if err != nil {
		return nil, err
	}

	src, _ := doc.Find("audio source").First().Attr("src")
	src = strings.TrimSpace(src)
	if src == "" {
		debugSnapshot(ctx, "ajax-no-source", doc)
		return nil, apperr.New(apperr.KindResolutionFailed, "Audio URL not found in response")
	}

	ref, err := url.Parse(src)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindResolutionFailed, "Audio URL is malformed", err)
	}
	return c.base.ResolveReference(ref), nil
}

// Resolve implements the download session's resolver for big.az songs. The
// source carries the Referer and User-Agent the audio host expects.
func (c *Client) Resolve(ctx context.Context, id media.Identifier) (*media.Source, error) {
	u, err := c.AudioURL(ctx, id.Value, id.Tokens)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "big.az audio url resolved", "song_id", id.Value, "host", u.Host)

	return &media.Source{
		URL: u,
		Headers: map[string]string{
			"Referer":    c.origin() + "/",
			"User-Agent": c.profile.UserAgent,
		},
		Provider:   media.ProviderBigAz,
		ResolvedAt: time.Now(),
	}, nil
}
