package db

import (
	"fmt"

	"github.com/truantmusic/releaseradar/data"
)

// EnabledWebhooks returns every enabled webhook in insertion order.
func (db *DB) EnabledWebhooks() ([]data.Webhook, error) {
	hooks := []data.Webhook{}
	if err := db.
		Where("enabled = ?", true).
		Order("id").
		Find(&hooks).
		Error; err != nil {
		return nil, fmt.Errorf("error loading webhooks: %w", err)
	}
	return hooks, nil
}

// Status summarizes the persisted artist state for the read-only status
// endpoint.
type Status struct {
	TotalArtists  int64
	WithListeners int64
	LastSync      *string
}

// ArtistStatus computes the status summary.
func (db *DB) ArtistStatus() (Status, error) {
	var status Status

	if err := db.
		Table("artists").
		Count(&status.TotalArtists).
		Error; err != nil {
		return status, fmt.Errorf("error counting artists: %w", err)
	}

	if err := db.
		Table("artists").
		Where("monthly_listeners is not null").
		Count(&status.WithListeners).
		Error; err != nil {
		return status, fmt.Errorf("error counting artists with listeners: %w", err)
	}

	var lastSync *string
	if err := db.
		Table("artists").
		Select("max(last_synced_at)").
		Scan(&lastSync).
		Error; err != nil {
		return status, fmt.Errorf("error reading last sync time: %w", err)
	}
	status.LastSync = lastSync

	return status, nil
}
