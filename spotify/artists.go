package spotify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// An ArtistDetail is the full detail record for one artist id.
type ArtistDetail struct {
	ID         string
	Name       string
	ImageURL   string
	Followers  int64
	Popularity int64
	Genres     []string
}

// FetchArtists fetches full detail records for up to ArtistBatchLimit artist
// ids in one request.
func (spo *Client) FetchArtists(ctx context.Context, artistSpotifyIDs []string) ([]ArtistDetail, error) {
	if len(artistSpotifyIDs) == 0 {
		return nil, nil
	}
	if len(artistSpotifyIDs) > ArtistBatchLimit {
		return nil, fmt.Errorf("at most %d artist ids per request, got %d", ArtistBatchLimit, len(artistSpotifyIDs))
	}

	query := url.Values{}
	query.Add("ids", strings.Join(artistSpotifyIDs, ","))

	resp, err := spo.get(ctx, "/artists", query)
	if err != nil {
		return nil, err
	}

	var results artistsResults
	if err := decode(resp, &results, "artists"); err != nil {
		return nil, err
	}

	var artists []ArtistDetail
	for _, fetched := range results.Artists {
		if fetched.ID == "" {
			continue
		}
		artists = append(artists, ArtistDetail{
			ID:         fetched.ID,
			Name:       fetched.Name,
			ImageURL:   largestImage(fetched.Images),
			Followers:  fetched.Followers.Total,
			Popularity: fetched.Popularity,
			Genres:     fetched.Genres,
		})
	}
	return artists, nil
}

type artistsResults struct {
	Artists []struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Followers struct {
			Total int64 `json:"total"`
		} `json:"followers"`
		Genres     []string    `json:"genres"`
		Images     []imageJSON `json:"images"`
		Popularity int64       `json:"popularity"`
	} `json:"artists"`
}
