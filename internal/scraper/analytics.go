package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

const analyticsTimeout = 5 * time.Second

// analyticsQuery is the static part of the page_view hit the site's own
// search page reports.
var analyticsQuery = map[string]string{
	"v":     "2",
	"tid":   "G-YGSD0X5QC5",
	"gcd":   "13l3l3l3l1l1",
	"npa":   "0",
	"dma":   "0",
	"ul":    "en-us",
	"sr":    "1536x864",
	"uaa":   "x86",
	"uab":   "64",
	"uamb":  "0",
	"uap":   "Windows",
	"uapv":  "10.0.0",
	"uaw":   "0",
	"are":   "1",
	"frm":   "0",
	"pscdl": "noapi",
	"_s":    "1",
	"seg":   "1",
	"en":    "page_view",
}

// analyticsParams builds the query for a search page view of text.
func (c *Client) analyticsParams(text string) url.Values {
	q := url.Values{}
	for k, v := range analyticsQuery {
		q.Set(k, v)
	}
	q.Set("dl", c.endpoint("search/"))
	q.Set("dr", c.origin()+"/")
	q.Set("dt", text+pageTitleSuffix)
	q.Set("search_text", text)
	return q
}

// sendAnalytics reports a search page view in the background. Failures are
// logged and never affect the search.
func (c *Client) sendAnalytics(ctx context.Context, text string) {
	target := c.analyticsURL + "?" + c.analyticsParams(text).Encode()

	go func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), analyticsTimeout)
		defer cancel()

		req, err := c.newRequest(ctx, http.MethodPost, target, nil, kindBeacon)
		if err != nil {
			slog.DebugContext(ctx, "building analytics request", "error", err)
			return
		}

		resp, err := c.http.Do(req)
		if err != nil {
			slog.DebugContext(ctx, "analytics beacon failed", "error", err)
			return
		}
		resp.Body.Close()

		slog.DebugContext(ctx, "analytics beacon sent", "status", resp.StatusCode)
	}()
}
