package scraper

import (
	"fmt"
	"net/http"
	"strings"
)

// Profile is a coherent browser identity presented to big.az. Every header
// derived from it (User-Agent, Client Hints, language) describes the same
// virtual browser.
type Profile struct {
	UserAgent      string
	Brands         [][2]string // [brand, majorVersion]
	Platform       string      // Client Hints platform (e.g. "Windows")
	AcceptLanguage string
}

// requestKind selects the fetch metadata a browser would send.
type requestKind int

const (
	// kindDocument is a top-level navigation (search, song pages).
	kindDocument requestKind = iota
	// kindAjax is an XMLHttpRequest from a big.az page.
	kindAjax
	// kindBeacon is a cross-site analytics ping.
	kindBeacon
)

// NewProfile returns a desktop Chrome profile using userAgent.
func NewProfile(userAgent string) Profile {
	return Profile{
		UserAgent: userAgent,
		Brands: [][2]string{
			{"Not(A:Brand", "8"},
			{"Chromium", "144"},
			{"Google Chrome", "144"},
		},
		Platform:       "Windows",
		AcceptLanguage: "en-US,en;q=0.9,ru;q=0.8,az;q=0.7",
	}
}

// secCHUA formats Brands as a Sec-CH-UA header value.
func (p Profile) secCHUA() string {
	parts := make([]string, 0, len(p.Brands))
	for _, b := range p.Brands {
		parts = append(parts, fmt.Sprintf("%q;v=%q", b[0], b[1]))
	}
	return strings.Join(parts, ", ")
}

// apply sets the headers a browser with this profile sends for kind. origin
// is the big.az site origin, e.g. "https://mp3.big.az".
func (p Profile) apply(h http.Header, kind requestKind, origin string) {
	h.Set("User-Agent", p.UserAgent)
	h.Set("Accept-Language", p.AcceptLanguage)
	h.Set("Sec-CH-UA", p.secCHUA())
	h.Set("Sec-CH-UA-Mobile", "?0")
	h.Set("Sec-CH-UA-Platform", fmt.Sprintf("%q", p.Platform))
	h.Set("Referer", origin+"/")

	switch kind {
	case kindDocument:
		h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,image/apng,*/*;q=0.8")
		h.Set("Sec-Fetch-Dest", "document")
		h.Set("Sec-Fetch-Mode", "navigate")
		h.Set("Sec-Fetch-Site", "same-origin")
		h.Set("Sec-Fetch-User", "?1")
		h.Set("Upgrade-Insecure-Requests", "1")
	case kindAjax:
		h.Set("Accept", "*/*")
		h.Set("Sec-Fetch-Dest", "empty")
		h.Set("Sec-Fetch-Mode", "cors")
		h.Set("Sec-Fetch-Site", "same-origin")
		h.Set("X-Requested-With", "XMLHttpRequest")
	case kindBeacon:
		h.Set("Accept", "*/*")
		h.Set("Origin", origin)
		h.Set("Priority", "u=1, i")
		h.Set("Sec-Fetch-Dest", "empty")
		h.Set("Sec-Fetch-Mode", "no-cors")
		h.Set("Sec-Fetch-Site", "cross-site")
	}
}
