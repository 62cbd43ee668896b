package spotify

import (
	"context"
	"fmt"
	"time"
)

// A PlaylistItem is one track entry in a tracked playlist, carrying the
// album brief it belongs to.
type PlaylistItem struct {
	TrackID     string
	TrackName   string
	AddedAt     time.Time
	PreviewURL  string
	ExternalURL string
	Album       AlbumBrief
	Artists     []ArtistRef
}

// An AlbumBrief is the partial album record embedded in playlist items.
type AlbumBrief struct {
	ID          string
	Name        string
	Type        string
	ImageURL    string
	TotalTracks int64
	ReleaseDate string
	ExternalURL string
}

// An ArtistRef is the id/name pair embedded in tracks and albums.
type ArtistRef struct {
	ID   string
	Name string
}

// FetchPlaylistItems fetches every item of the playlist, following the
// 'next' continuation link until the collection is exhausted. Items without
// a track id (local files, removed tracks) are skipped.
func (spo *Client) FetchPlaylistItems(ctx context.Context, playlistID string) ([]PlaylistItem, error) {
	var items []PlaylistItem

	next := fmt.Sprintf("%s/playlists/%s/tracks?limit=100", spo.baseURL, playlistID)
	for next != "" {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		resp, err := spo.getURL(ctx, next)
		if err != nil {
			return nil, err
		}

		var page playlistItemsPage
		if err := decode(resp, &page, "playlist items"); err != nil {
			return nil, err
		}

		for _, entry := range page.Items {
			if entry.Track.ID == "" {
				continue
			}

			var addedAt time.Time
			if entry.AddedAt != "" {
				if t, err := time.Parse(time.RFC3339, entry.AddedAt); err == nil {
					addedAt = t
				}
			}

			artists := make([]ArtistRef, len(entry.Track.Artists))
			for i, artist := range entry.Track.Artists {
				artists[i] = ArtistRef{ID: artist.ID, Name: artist.Name}
			}

			items = append(items, PlaylistItem{
				TrackID:     entry.Track.ID,
				TrackName:   entry.Track.Name,
				AddedAt:     addedAt,
				PreviewURL:  entry.Track.PreviewURL,
				ExternalURL: entry.Track.ExternalURLs.Spotify,
				Album: AlbumBrief{
					ID:          entry.Track.Album.ID,
					Name:        entry.Track.Album.Name,
					Type:        entry.Track.Album.AlbumType,
					ImageURL:    largestImage(entry.Track.Album.Images),
					TotalTracks: entry.Track.Album.TotalTracks,
					ReleaseDate: entry.Track.Album.ReleaseDate,
					ExternalURL: entry.Track.Album.ExternalURLs.Spotify,
				},
				Artists: artists,
			})
		}

		next = page.Next
	}

	return items, nil
}

type playlistItemsPage struct {
	Next  string `json:"next"`
	Items []struct {
		AddedAt string `json:"added_at"`
		Track   struct {
			ID           string `json:"id"`
			Name         string `json:"name"`
			PreviewURL   string `json:"preview_url"`
			ExternalURLs struct {
				Spotify string `json:"spotify"`
			} `json:"external_urls"`
			Album struct {
				ID           string      `json:"id"`
				Name         string      `json:"name"`
				AlbumType    string      `json:"album_type"`
				TotalTracks  int64       `json:"total_tracks"`
				ReleaseDate  string      `json:"release_date"`
				Images       []imageJSON `json:"images"`
				ExternalURLs struct {
					Spotify string `json:"spotify"`
				} `json:"external_urls"`
			} `json:"album"`
			Artists []artistRefJSON `json:"artists"`
		} `json:"track"`
	} `json:"items"`
}
