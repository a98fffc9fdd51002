package scraper

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stupside/mp3relay/internal/media"
)

const (
	unknownArtist = "Unknown Artist"
	// nextPageLabel is the Azerbaijani "Next" pagination link.
	nextPageLabel = "Növbəti"
)

// artistTitleRe splits "Artist - Title" on the first dash.
var artistTitleRe = regexp.MustCompile(`^(.+?)\s*-\s*(.+)$`)

// Search runs a catalogue search. A blank query yields an empty result
// without contacting big.az.
func (c *Client) Search(ctx context.Context, query string) (*media.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return &media.SearchResult{Songs: []media.Song{}}, nil
	}

	if c.analytics {
		c.sendAnalytics(ctx, query)
	}

	form := url.Values{"query": {query}}
	req, err := c.newRequest(ctx, http.MethodPost, c.endpoint("search/"), strings.NewReader(form.Encode()), kindDocument)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	doc, err := c.fetchDocument(req)
	if err != nil {
		return nil, err
	}

	result := parseSearch(doc)
	result.Query = query
	if len(result.Songs) == 0 {
		debugSnapshot(ctx, "search-empty", doc)
	}

	slog.InfoContext(ctx, "big.az search", "query", query, "results", len(result.Songs), "has_more", result.HasMore)
	return result, nil
}

// parseSearch extracts songs from a search results page. Entries without a
// download link, text or song ID are skipped.
func parseSearch(doc *goquery.Document) *media.SearchResult {
	songs := []media.Song{}

	doc.Find(".playlis.playlis2 p").Each(func(_ int, entry *goquery.Selection) {
		link := entry.Find("i.btndown a")
		href, _ := link.Attr("href")
		text := strings.TrimSpace(entry.Text())
		if href == "" || text == "" {
			return
		}

		htmlFileName := strings.TrimPrefix(href, "/")
		id, ok := media.SongIDFromSlug(htmlFileName)
		if !ok {
			return
		}

		linkTitle, _ := link.Attr("title")
		artist, title := splitArtistTitle(text, linkTitle)

		song := media.Song{
			ID:           id,
			Title:        title,
			Artist:       artist,
			HTMLFileName: htmlFileName,
			FullTitle:    text,
		}
		if demo, ok := entry.Find("i.btnplay").Attr("mpdemo"); ok && demo != "" {
			song.DemoID = &demo
		}
		songs = append(songs, song)
	})

	pagination := doc.Find(".pagination a")
	hasMore := pagination.Length() > 0 && strings.Contains(pagination.Text(), nextPageLabel)

	return &media.SearchResult{Songs: songs, HasMore: hasMore}
}

// splitArtistTitle derives artist and title from an entry's text, falling
// back to the download link's title attribute.
func splitArtistTitle(text, linkTitle string) (artist, title string) {
	title = text
	if m := artistTitleRe.FindStringSubmatch(text); m != nil {
		artist = strings.TrimSpace(m[1])
		title = strings.TrimSpace(m[2])
	} else if strings.Contains(linkTitle, " - ") {
		parts := strings.Split(linkTitle, " - ")
		artist = strings.TrimSpace(parts[0])
		if t := strings.TrimSpace(strings.Replace(parts[1], " mp3", "", 1)); t != "" {
			title = t
		}
	}
	if artist == "" {
		artist = unknownArtist
	}
	return artist, title
}
