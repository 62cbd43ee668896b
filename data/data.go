package data

import (
	"strings"
	"time"
)

// Release is one distinct released work, keyed by its Spotify album id.
// Exactly one row exists per album id no matter how many tracked playlists
// reference it. Rows are created on first sight and refreshed on every later
// sync; the pipeline never deletes them.
type Release struct {
	SpotifyID   string `gorm:"primaryKey"`
	Name        string
	BaseTitle   string
	VersionName string
	ArtistName  string
	ImageURL    string
	ExternalURL string

	// ReleaseDate is always set after resolution; the resolver falls back
	// to the sync time when nothing better is known.
	ReleaseDate time.Time

	// album, single, or compilation
	Type string

	TotalTracks int64
	Popularity  int64
	PreviewURL  string

	Artists []ArtistRef `gorm:"-"`
}

// ArtistRef is an ordered artist credit carried on a Release.
type ArtistRef struct {
	SpotifyID string
	Name      string
}

// ReleaseArtist is the association table between releases and artists.
type ReleaseArtist struct {
	ReleaseSpotifyID string
	ArtistSpotifyID  string
	Position         int64
}

// Artist is one distinct artist encountered in any synced playlist.
//
// MonthlyListeners can only be populated by a scrape. A failed scrape leaves
// it untouched, so stale-but-present data survives bad runs.
type Artist struct {
	SpotifyID        string `gorm:"primaryKey"`
	Name             string
	ImageURL         string
	Followers        *int64
	Popularity       int64
	MonthlyListeners *int64
	LastSyncedAt     *time.Time

	Genres []string `gorm:"-"`
}

// ArtistGenre is the association table between artists and genre names.
type ArtistGenre struct {
	ArtistSpotifyID string
	GenreName       string
}

// ArtistStatsHistory is an append-only snapshot of an artist's stats,
// recorded only when a scrape succeeds with a listener count.
type ArtistStatsHistory struct {
	ID               int64 `gorm:"primaryKey"`
	ArtistSpotifyID  string
	MonthlyListeners int64
	Followers        *int64
	Popularity       int64
	CreatedAt        time.Time
}

// Webhook is an externally configured notification endpoint. The engine only
// ever reads these.
type Webhook struct {
	ID      int64 `gorm:"primaryKey"`
	URL     string
	Enabled bool

	// Events is a comma-joined set, like "playlist_update,new_track".
	Events string

	// PlaylistID scopes the webhook to one playlist. Empty means the
	// default playlist.
	PlaylistID string
}

// HasEvent reports whether the webhook subscribes to the named event.
func (w Webhook) HasEvent(event string) bool {
	for _, name := range strings.Split(w.Events, ",") {
		if strings.TrimSpace(name) == event {
			return true
		}
	}
	return false
}

// DisplayArtists joins artist credits into the display string stored on a
// Release, like "Artist A, Artist B".
func DisplayArtists(artists []ArtistRef) string {
	names := make([]string, len(artists))
	for i, artist := range artists {
		names[i] = artist.Name
	}
	return strings.Join(names, ", ")
}
