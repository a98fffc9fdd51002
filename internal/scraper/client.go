// Package scraper talks to mp3.big.az over plain HTTP: it searches the
// catalogue, reads song pages and exchanges song tokens for audio URLs.
package scraper

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/stupside/mp3relay/internal/app"
	"github.com/stupside/mp3relay/internal/apperr"
)

// Client is a big.az scraping client. It is safe for concurrent use.
type Client struct {
	base         *url.URL
	analyticsURL string
	analytics    bool
	profile      Profile
	http         *http.Client
	limiter      *rate.Limiter
	now          func() time.Time
}

// NewClient creates a Client from cfg.
func NewClient(cfg app.BigAzConfig) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing big.az base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), max(cfg.Burst, 1))
	}

	return &Client{
		base:         base,
		analyticsURL: cfg.AnalyticsURL,
		analytics:    cfg.Analytics && cfg.AnalyticsURL != "",
		profile:      NewProfile(cfg.UserAgent),
		http:         &http.Client{Timeout: cfg.Timeout},
		limiter:      limiter,
		now:          time.Now,
	}, nil
}

// origin returns the scheme and host of the base URL.
func (c *Client) origin() string {
	return c.base.Scheme + "://" + c.base.Host
}

// endpoint resolves ref against the base URL.
func (c *Client) endpoint(ref string) string {
	return c.base.ResolveReference(&url.URL{Path: ref}).String()
}

func (c *Client) newRequest(ctx context.Context, method, target string, body io.Reader, kind requestKind) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", target, err)
	}
	c.profile.apply(req.Header, kind, c.origin())
	return req, nil
}

// do sends req once the pacing limiter admits it.
func (c *Client) do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, fmt.Errorf("waiting to contact big.az: %w", err)
	}
	return c.http.Do(req)
}

// fetchDocument executes req and parses a 2xx HTML response.
func (c *Client) fetchDocument(req *http.Request) (*goquery.Document, error) {
	start := time.Now()

	resp, err := c.do(req)
	if err != nil {
		return nil, &apperr.Error{
			Kind:    apperr.KindUpstream,
			Reason:  apperr.ReasonUnknown,
			Message: "big.az request failed",
			Err:     err,
		}
	}
	defer resp.Body.Close()

	slog.DebugContext(req.Context(), "big.az response", "method", req.Method, "url", req.URL.Redacted(), "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &apperr.Error{
			Kind:    apperr.KindUpstream,
			Reason:  apperr.ReasonUnknown,
			Message: fmt.Sprintf("big.az returned %s", resp.Status),
		}
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUpstream, "parsing big.az response", err)
	}
	return doc, nil
}
