package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/stupside/mp3relay/internal/apperr"
	"github.com/stupside/mp3relay/internal/media"
)

const pageTitleSuffix = " Mp3 Yukle Mp3 dinle"

// SongPage fetches a song detail page such as
// "aref-kemal-lezginka-868412.html" and extracts its title and audio tokens.
func (c *Client) SongPage(ctx context.Context, htmlFileName string) (*media.SongPage, error) {
	htmlFileName = strings.TrimPrefix(htmlFileName, "/")
	songID, ok := media.SongIDFromSlug(htmlFileName)
	if !ok {
		return nil, apperr.BadInput(fmt.Sprintf("could not extract song ID from %q", htmlFileName))
	}

	req, err := c.newRequest(ctx, http.MethodGet, c.endpoint(htmlFileName), nil, kindDocument)
	if err != nil {
		return nil, err
	}

	doc, err := c.fetchDocument(req)
	if err != nil {
		return nil, err
	}

	page := parseSongPage(doc)
	if page.AudioParams == (media.AudioParams{}) {
		debugSnapshot(ctx, "song-no-tokens", doc)
	}
	page.SongID = songID
	page.HTMLFileName = htmlFileName
	return page, nil
}

// parseSongPage reads the listen button tokens and the page title.
func parseSongPage(doc *goquery.Document) *media.SongPage {
	page := &media.SongPage{}

	listen := doc.Find("#listenbut").First()
	if dt, ok := listen.Attr("data-dt"); ok && dt != "" {
		// data-dt is a query string: "id=869445&go=7&lk=...&mh=...&mr=..."
		if q, err := url.ParseQuery(dt); err == nil {
			page.AudioParams.LK = q.Get("lk")
			page.AudioParams.MH = q.Get("mh")
			page.AudioParams.MR = q.Get("mr")
		}
	}
	if hs, ok := listen.Attr("data-hs"); ok {
		page.AudioParams.HS = hs
	}

	heading := strings.Replace(strings.TrimSpace(doc.Find(".al-info h1").First().Text()), " mp3", "", 1)
	if heading != "" {
		page.Title = heading
	} else {
		page.Title = strings.TrimSpace(strings.Replace(doc.Find("title").First().Text(), pageTitleSuffix, "", 1))
	}
	return page
}
