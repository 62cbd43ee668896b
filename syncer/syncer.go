// Package syncer is the catalog-synchronization pipeline: it reconciles
// tracked playlists against the release database, notifies webhooks about
// newly discovered releases, and refreshes artist statistics.
package syncer

import (
	"context"
	"fmt"

	"github.com/truantmusic/releaseradar/scrape"
	"github.com/truantmusic/releaseradar/spotify"
)

// Catalog is the slice of the Spotify client the pipeline consumes.
type Catalog interface {
	FetchPlaylistItems(ctx context.Context, playlistID string) ([]spotify.PlaylistItem, error)
	FetchAlbums(ctx context.Context, ids []string) ([]spotify.Album, error)
	FetchArtists(ctx context.Context, ids []string) ([]spotify.ArtistDetail, error)
}

// Scraper is the headless-scrape surface the pipeline consumes.
type Scraper interface {
	Prerelease(ctx context.Context, trackID string) (scrape.PrereleaseInfo, error)
	ArtistStats(ctx context.Context, artistID string) (*scrape.Stats, error)
}

// A CollectionFetchError means one playlist's pages could not be read. The
// run skips that playlist and proceeds with the others.
type CollectionFetchError struct {
	PlaylistID string
	Err        error
}

func (e *CollectionFetchError) Error() string {
	return fmt.Sprintf("error fetching playlist '%s': %v", e.PlaylistID, e.Err)
}

func (e *CollectionFetchError) Unwrap() error { return e.Err }

const (
	// EventPlaylistUpdate and EventNewTrack are the webhook event names
	// that qualify a subscriber for new-release notifications.
	EventPlaylistUpdate = "playlist_update"
	EventNewTrack       = "new_track"
)

// chunk partitions ids into fixed-size groups, preserving order.
func chunk(ids []string, size int) [][]string {
	var chunks [][]string
	for len(ids) > 0 {
		n := size
		if n > len(ids) {
			n = len(ids)
		}
		chunks = append(chunks, ids[:n])
		ids = ids[n:]
	}
	return chunks
}

// dedupe drops repeated ids, keeping first-seen order.
func dedupe(ids []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
