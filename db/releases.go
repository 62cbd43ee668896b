package db

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/truantmusic/releaseradar/data"
)

// UpsertRelease inserts the release or refreshes an existing row in place.
// Existing rows are overwritten on purpose so every sync keeps popularity,
// image, and date current. Artist credits are written alongside.
func (db *DB) UpsertRelease(ctx context.Context, release *data.Release) error {
	if release.SpotifyID == "" {
		return fmt.Errorf("no spotify id")
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Clauses(clause.OnConflict{UpdateAll: true}).
			Create(release).
			Error; err != nil {
			return fmt.Errorf("error upserting release '%s': %w", release.Name, err)
		}

		for i, artist := range release.Artists {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("canceled: %w", err)
			}
			if artist.SpotifyID == "" {
				return fmt.Errorf("no spotify id for artist credit on '%s'", release.Name)
			}
			if err := tx.
				Clauses(clause.OnConflict{DoNothing: true}).
				Create(&data.ReleaseArtist{
					ReleaseSpotifyID: release.SpotifyID,
					ArtistSpotifyID:  artist.SpotifyID,
					Position:         int64(i),
				}).
				Error; err != nil {
				return fmt.Errorf("error inserting release artist {'%s' '%s'}: %w", release.Name, artist.Name, err)
			}
		}

		return nil
	})
}

// ExistingReleaseIDs returns the subset of the given album ids that already
// have a release row.
func (db *DB) ExistingReleaseIDs(ids []string) (map[string]bool, error) {
	existing := map[string]bool{}
	if len(ids) == 0 {
		return existing, nil
	}

	found := []string{}
	if err := db.
		Table("releases").
		Where("spotify_id in ?", ids).
		Pluck("spotify_id", &found).
		Error; err != nil {
		return nil, fmt.Errorf("error querying existing release ids: %w", err)
	}

	for _, id := range found {
		existing[id] = true
	}
	return existing, nil
}
