package syncer

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/truantmusic/releaseradar/scrape"
	"github.com/truantmusic/releaseradar/spotify"
)

// The catalog API reports unpublished release dates with a zeroed year.
const sentinelYear = "0000"

var releaseDateLayouts = []string{"2006-01-02", "2006-01", "2006"}

// A Resolver determines a release's effective date and cover image through
// an ordered fallback chain. It never fails; something usable always comes
// back.
type Resolver struct {
	// Scraper may be nil, in which case the pre-release fallback is
	// skipped entirely.
	Scraper Scraper
	Log     *log.Logger
	Now     func() time.Time
}

// Resolved is the outcome of date/image resolution for one item.
type Resolved struct {
	Date     time.Time
	ImageURL string
}

// Resolve applies the fallback chain: authoritative album date first, then a
// best-effort pre-release scrape when the image is missing or the date was
// the unknown-year sentinel, then the item's added-at timestamp, then now.
func (r *Resolver) Resolve(ctx context.Context, item spotify.PlaylistItem, full *spotify.Album) Resolved {
	raw := item.Album.ReleaseDate
	image := item.Album.ImageURL
	if full != nil {
		if full.ReleaseDate != "" {
			raw = full.ReleaseDate
		}
		if full.ImageURL != "" {
			image = full.ImageURL
		}
	}

	sentinel := strings.HasPrefix(raw, sentinelYear)

	var date time.Time
	if raw != "" && !sentinel {
		for _, layout := range releaseDateLayouts {
			if t, err := time.Parse(layout, raw); err == nil {
				if t.Year() > 1900 {
					date = t
				}
				break
			}
		}
	}

	// Missing image or a sentinel date both mark a pre-release; the scrape
	// is best-effort and its failure never blocks the item.
	if (image == "" || sentinel) && r.Scraper != nil {
		info, err := r.Scraper.Prerelease(ctx, item.TrackID)
		if err != nil {
			r.Log.Warn("prerelease scrape failed", "track", item.TrackID, "err", err)
		} else {
			if info.ImageURL != "" {
				image = info.ImageURL
			}
			if date.IsZero() && info.DateHint != "" {
				if t, ok := scrape.ParseDateHint(info.DateHint); ok {
					date = t
				}
			}
		}
	}

	if date.IsZero() && !item.AddedAt.IsZero() {
		date = item.AddedAt
	}
	if date.IsZero() {
		date = r.Now()
	}

	return Resolved{Date: date, ImageURL: image}
}
