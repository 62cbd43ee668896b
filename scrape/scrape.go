// Package scrape extracts release and artist metadata from rendered Spotify
// pages. Navigation happens through a Visitor (the shared headless session);
// all extraction works on a captured Snapshot so the strategies can be
// exercised against fixture HTML without a browser.
package scrape

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// A Visitor fetches rendered page HTML. *browser.Session implements it.
type Visitor interface {
	Visit(ctx context.Context, url string) (string, error)
}

// A Snapshot is one parsed page capture.
type Snapshot struct {
	doc *goquery.Document
}

// ParseSnapshot parses rendered page HTML into a Snapshot.
func ParseSnapshot(html string) (*Snapshot, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}
	return &Snapshot{doc: doc}, nil
}

// Meta returns the content of a <meta property=...> tag, or "".
func (snap *Snapshot) Meta(property string) string {
	content, _ := snap.doc.Find(`meta[property="` + property + `"]`).Attr("content")
	return content
}
