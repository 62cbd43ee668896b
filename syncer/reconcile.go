package syncer

import (
	"context"
	"fmt"

	"github.com/truantmusic/releaseradar/data"
	"github.com/truantmusic/releaseradar/spotify"
	"github.com/truantmusic/releaseradar/titles"
)

// ReconcileResult classifies one playlist's items after deduplication and
// diffing against persisted state.
type ReconcileResult struct {
	All []*data.Release
	New []*data.Release
}

// reconcile deduplicates playlist items into one record per album id,
// resolves each record's date and image, diffs against the database to find
// which albums are new, and upserts everything. Existing rows are upserted
// too so known releases still pick up refreshed popularity, image, and
// date without re-triggering notifications.
func (r *Runner) reconcile(ctx context.Context, items []spotify.PlaylistItem) (*ReconcileResult, error) {
	// First-seen item per album id wins; later duplicates within the same
	// run are dropped, not merged.
	var order []string
	byAlbum := map[string]spotify.PlaylistItem{}
	for _, item := range items {
		if item.Album.ID == "" {
			continue
		}
		if _, ok := byAlbum[item.Album.ID]; ok {
			continue
		}
		byAlbum[item.Album.ID] = item
		order = append(order, item.Album.ID)
	}

	details := r.batchAlbumDetails(ctx, order)

	resolver := &Resolver{Scraper: r.scraper, Log: r.Log, Now: r.now()}

	var releases []*data.Release
	for _, albumID := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item := byAlbum[albumID]
		var full *spotify.Album
		if detail, ok := details[albumID]; ok {
			full = &detail
		}

		resolved := resolver.Resolve(ctx, item, full)

		name := item.Album.Name
		if name == "" {
			name = item.TrackName
		}
		base, version := titles.Parse(name)

		release := &data.Release{
			SpotifyID:   albumID,
			Name:        name,
			BaseTitle:   base,
			VersionName: version,
			ImageURL:    resolved.ImageURL,
			ReleaseDate: resolved.Date,
			Type:        item.Album.Type,
			TotalTracks: item.Album.TotalTracks,
			ExternalURL: item.Album.ExternalURL,
			PreviewURL:  item.PreviewURL,
		}
		if release.ExternalURL == "" {
			release.ExternalURL = item.ExternalURL
		}

		credits := item.Artists
		if full != nil {
			if len(full.Artists) > 0 {
				credits = full.Artists
			}
			release.Type = full.Type
			release.TotalTracks = full.TotalTracks
			release.Popularity = full.Popularity
			if full.ExternalURL != "" {
				release.ExternalURL = full.ExternalURL
			}
		}
		release.Artists = make([]data.ArtistRef, len(credits))
		for i, credit := range credits {
			release.Artists[i] = data.ArtistRef{SpotifyID: credit.ID, Name: credit.Name}
		}
		release.ArtistName = data.DisplayArtists(release.Artists)

		if release.TotalTracks < 1 {
			release.TotalTracks = 1
		}

		releases = append(releases, release)
	}

	existing, err := r.DB.ExistingReleaseIDs(order)
	if err != nil {
		return nil, fmt.Errorf("error diffing releases: %w", err)
	}

	result := &ReconcileResult{All: releases}
	for _, release := range releases {
		if !existing[release.SpotifyID] {
			result.New = append(result.New, release)
		}
	}

	for _, release := range releases {
		if err := r.DB.UpsertRelease(ctx, release); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// batchAlbumDetails fetches full album records in batches of the upstream
// ceiling. A failed batch is logged and skipped; an id absent from the
// result simply means no enrichment.
func (r *Runner) batchAlbumDetails(ctx context.Context, ids []string) map[string]spotify.Album {
	details := map[string]spotify.Album{}
	for _, batch := range chunk(ids, spotify.AlbumBatchLimit) {
		if ctx.Err() != nil {
			return details
		}
		albums, err := r.Catalog.FetchAlbums(ctx, batch)
		if err != nil {
			r.Log.Error("album detail batch failed", "size", len(batch), "err", err)
			continue
		}
		for _, album := range albums {
			details[album.ID] = album
		}
	}
	return details
}
