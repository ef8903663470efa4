package importer

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/nikbrunner/marks/internal/model"
	"golang.org/x/net/html"
)

// UntitledTitle is used for anchors without text content.
const UntitledTitle = "Untitled"

// Options controls how anchors are turned into bookmarks.
type Options struct {
	// BaseURL resolves relative hrefs when the document has no <base href>.
	BaseURL *url.URL

	// Now returns the creation time for anchors without ADD_DATE.
	// Defaults to time.Now.
	Now func() time.Time
}

// ParseHTMLBookmarks parses an HTML bookmark file and returns one bookmark per
// anchor element with an href, in document order.
//
// Anchors whose href is missing, empty, or only whitespace are skipped without
// error, since a bookmark cannot exist without a URL. Callers that need to
// report them should count <a> elements themselves.
func ParseHTMLBookmarks(r io.Reader, opts Options) ([]model.Bookmark, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse bookmarks html: %w", err)
	}
	doc := goquery.NewDocumentFromNode(root)

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	base := documentBase(doc, opts.BaseURL)

	bookmarks := []model.Bookmark{}
	doc.Find("a").Each(func(_ int, a *goquery.Selection) {
		// Skip anchors without a URL: url is a required field
		href, _ := a.Attr("href")
		if strings.TrimSpace(href) == "" {
			return
		}

		title := strings.TrimSpace(a.Text())
		if title == "" {
			title = UntitledTitle
		}

		// Parse ADD_DATE timestamp
		createdAt := now()
		if addDate, ok := a.Attr("add_date"); ok {
			if ts, err := strconv.ParseInt(strings.TrimSpace(addDate), 10, 64); err == nil && ts > 0 {
				createdAt = time.Unix(ts, 0).UTC()
			}
		}

		description, _ := a.Attr("description")

		var tags []string
		if raw, ok := a.Attr("tags"); ok {
			tags = SplitTags(raw)
		}

		bookmark := model.NewBookmark(model.NewBookmarkParams{
			Title:       title,
			URL:         resolveHref(base, href),
			Description: description,
			Tags:        tags,
		})
		bookmark.CreatedAt = createdAt
		bookmarks = append(bookmarks, bookmark)
	})

	return bookmarks, nil
}

// SplitTags splits a comma-separated tag list, trimming each entry and
// dropping empty ones.
func SplitTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if t := strings.TrimSpace(part); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// documentBase returns the URL relative hrefs resolve against: the document's
// <base href> (itself resolved against fallback), else fallback.
func documentBase(doc *goquery.Document, fallback *url.URL) *url.URL {
	href, ok := doc.Find("base[href]").First().Attr("href")
	if !ok {
		return fallback
	}
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return fallback
	}
	if fallback != nil {
		u = fallback.ResolveReference(u)
	}
	if !u.IsAbs() {
		return fallback
	}
	return u
}

// resolveHref resolves href against base. Without a base, or when href does
// not parse, href is returned trimmed but otherwise verbatim.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(u).String()
}
