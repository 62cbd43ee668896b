package db

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/truantmusic/releaseradar/data"
)

// UpsertArtist inserts the artist or refreshes the catalog-sourced columns
// of an existing row. MonthlyListeners and LastSyncedAt are deliberately
// excluded: only a scrape may touch those.
func (db *DB) UpsertArtist(ctx context.Context, artist *data.Artist) error {
	if artist.SpotifyID == "" {
		return fmt.Errorf("no spotify id")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "spotify_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"name", "image_url", "followers", "popularity"}),
			}).
			Create(artist).
			Error; err != nil {
			return fmt.Errorf("error upserting artist '%s': %w", artist.Name, err)
		}

		for _, genre := range artist.Genres {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("canceled: %w", err)
			}
			if genre == "" {
				continue
			}
			if err := tx.
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&data.ArtistGenre{
					ArtistSpotifyID: artist.SpotifyID,
					GenreName:       genre,
				}).
				Error; err != nil {
				return fmt.Errorf("error inserting artist_genre for '%s' and '%s': %w", artist.Name, genre, err)
			}
		}

		return nil
	})
}

// RecordArtistScrape stores the result of a scrape attempt. LastSyncedAt is
// set on every attempt; monthly_listeners is only written when the scrape
// produced a count, so failures never erase known data.
func (db *DB) RecordArtistScrape(artistSpotifyID string, monthlyListeners *int64, at time.Time) error {
	if artistSpotifyID == "" {
		return fmt.Errorf("no spotify id")
	}

	updates := map[string]interface{}{
		"last_synced_at": at,
	}
	if monthlyListeners != nil {
		updates["monthly_listeners"] = *monthlyListeners
	}

	if err := db.
		Table("artists").
		Where("spotify_id = ?", artistSpotifyID).
		Updates(updates).
		Error; err != nil {
		return fmt.Errorf("error recording scrape for artist '%s': %w", artistSpotifyID, err)
	}
	return nil
}

// InsertStatsHistory appends one stats snapshot. History rows are never
// updated or deleted.
func (db *DB) InsertStatsHistory(history *data.ArtistStatsHistory) error {
	if history.ArtistSpotifyID == "" {
		return fmt.Errorf("no spotify id")
	}
	if err := db.Create(history).Error; err != nil {
		return fmt.Errorf("error inserting stats history for artist '%s': %w", history.ArtistSpotifyID, err)
	}
	return nil
}

// GetArtist loads one artist row.
func (db *DB) GetArtist(spotifyID string) (*data.Artist, error) {
	var artist data.Artist
	if err := db.
		Where("spotify_id = ?", spotifyID).
		First(&artist).
		Error; err != nil {
		return nil, fmt.Errorf("error loading artist '%s': %w", spotifyID, err)
	}
	return &artist, nil
}
