package scrape

import (
	"context"
	"fmt"

	"github.com/PuerkitoBio/goquery"
)

const prereleaseURLFormat = "https://open.spotify.com/prerelease/%s"

// PrereleaseInfo is whatever could be pulled off a pre-release landing page.
// Either field may be empty.
type PrereleaseInfo struct {
	ImageURL string
	DateHint string
}

// Prerelease scrapes the pre-release landing page for the given track id.
// There are no retries here; the caller treats any error as "no enrichment
// available".
func Prerelease(ctx context.Context, visitor Visitor, trackID string) (PrereleaseInfo, error) {
	html, err := visitor.Visit(ctx, fmt.Sprintf(prereleaseURLFormat, trackID))
	if err != nil {
		return PrereleaseInfo{}, fmt.Errorf("error scraping prerelease page for track '%s': %w", trackID, err)
	}

	snap, err := ParseSnapshot(html)
	if err != nil {
		return PrereleaseInfo{}, fmt.Errorf("error parsing prerelease page for track '%s': %w", trackID, err)
	}

	return ExtractPrerelease(snap), nil
}

// ExtractPrerelease pulls the page-level image meta tag and any textual
// release-date hint out of a snapshot.
func ExtractPrerelease(snap *Snapshot) PrereleaseInfo {
	info := PrereleaseInfo{
		ImageURL: snap.Meta("og:image"),
	}

	if desc := snap.Meta("og:description"); hasDatePrefix(desc) {
		info.DateHint = desc
		return info
	}

	snap.doc.Find("time, p, span, div").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		if sel.Children().Length() > 0 {
			return true
		}
		if text := sel.Text(); hasDatePrefix(text) {
			info.DateHint = text
			return false
		}
		return true
	})

	return info
}
