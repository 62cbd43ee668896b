package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// An Album is the full detail record for one album id.
type Album struct {
	ID          string
	Name        string
	Type        string
	ImageURL    string
	TotalTracks int64
	Popularity  int64
	ExternalURL string

	ReleaseDate          string
	ReleaseDatePrecision string

	Artists []ArtistRef
}

// FetchAlbums fetches full detail records for up to AlbumBatchLimit album
// ids in one request.
func (spo *Client) FetchAlbums(ctx context.Context, albumSpotifyIDs []string) ([]Album, error) {
	if len(albumSpotifyIDs) == 0 {
		return nil, nil
	}
	if len(albumSpotifyIDs) > AlbumBatchLimit {
		return nil, fmt.Errorf("at most %d album ids per request, got %d", AlbumBatchLimit, len(albumSpotifyIDs))
	}

	query := url.Values{}
	query.Add("ids", strings.Join(albumSpotifyIDs, ","))

	resp, err := spo.get(ctx, "/albums", query)
	if err != nil {
		return nil, err
	}

	var results albumsResults
	if err := decode(resp, &results, "albums"); err != nil {
		return nil, err
	}

	var albums []Album
	for _, fetched := range results.Albums {
		if fetched.ID == "" {
			continue
		}
		artists := make([]ArtistRef, len(fetched.Artists))
		for i, artist := range fetched.Artists {
			artists[i] = ArtistRef{ID: artist.ID, Name: artist.Name}
		}
		albums = append(albums, Album{
			ID:                   fetched.ID,
			Name:                 fetched.Name,
			Type:                 fetched.AlbumType,
			ImageURL:             largestImage(fetched.Images),
			TotalTracks:          fetched.TotalTracks,
			Popularity:           fetched.Popularity,
			ExternalURL:          fetched.ExternalURLs.Spotify,
			ReleaseDate:          fetched.ReleaseDate,
			ReleaseDatePrecision: fetched.ReleaseDatePrecision,
			Artists:              artists,
		})
	}
	return albums, nil
}

type albumsResults struct {
	Albums []struct {
		ID           string      `json:"id"`
		Name         string      `json:"name"`
		AlbumType    string      `json:"album_type"`
		TotalTracks  int64       `json:"total_tracks"`
		Popularity   int64       `json:"popularity"`
		Images       []imageJSON `json:"images"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
		ReleaseDate          string          `json:"release_date"`
		ReleaseDatePrecision string          `json:"release_date_precision"`
		Artists              []artistRefJSON `json:"artists"`
	} `json:"albums"`
}
