package syncer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truantmusic/releaseradar/scrape"
	"github.com/truantmusic/releaseradar/spotify"
	"github.com/truantmusic/releaseradar/syncer"
)

func statsWith(listeners int64) func(string) (*scrape.Stats, error) {
	return func(string) (*scrape.Stats, error) {
		l := listeners
		return &scrape.Stats{MonthlyListeners: &l, Source: "embedded-script"}, nil
	}
}

func newCoordinator(t *testing.T, scraper *stubScraper, catalog *stubCatalog) *syncer.Coordinator {
	t.Helper()
	return &syncer.Coordinator{
		DB:       openTestDB(t),
		Catalog:  catalog,
		Scraper:  scraper,
		Log:      testLogger(),
		Now:      time.Now,
		Cooldown: time.Millisecond,
	}
}

func TestSyncAllDedupesAndScrapesOnce(t *testing.T) {
	scraper := &stubScraper{statsFn: statsWith(12345)}
	catalog := &stubCatalog{artists: map[string]spotify.ArtistDetail{
		"ar1": {ID: "ar1", Name: "One", Followers: 100, Popularity: 40},
		"ar2": {ID: "ar2", Name: "Two", Followers: 200, Popularity: 60},
	}}
	c := newCoordinator(t, scraper, catalog)

	summary := c.SyncAll(context.Background(), []string{"ar1", "ar2", "ar1", "ar2", "ar1"})
	assert.Equal(t, 2, summary.Processed)
	assert.Equal(t, 2, summary.Scraped)
	assert.Equal(t, 0, summary.Retries)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, 1, scraper.calls("ar1"), "each artist is scraped exactly once")
	assert.Equal(t, 1, scraper.calls("ar2"))

	artist, err := c.DB.GetArtist("ar1")
	require.NoError(t, err)
	require.NotNil(t, artist.MonthlyListeners)
	assert.Equal(t, int64(12345), *artist.MonthlyListeners)
	assert.NotNil(t, artist.LastSyncedAt)

	var histories int64
	require.NoError(t, c.DB.Table("artist_stats_histories").Count(&histories).Error)
	assert.Equal(t, int64(2), histories)
}

func TestSyncAllRetriesFailuresOnce(t *testing.T) {
	scraper := &stubScraper{}
	scraper.statsFn = func(id string) (*scrape.Stats, error) {
		switch id {
		case "flaky":
			// Fails the first attempt, recovers on the retry.
			if scraper.calls(id) == 1 {
				return nil, errors.New("tab crashed")
			}
			return statsWith(777)(id)
		case "broken":
			return nil, errors.New("tab crashed")
		default:
			return statsWith(1000)(id)
		}
	}
	catalog := &stubCatalog{artists: map[string]spotify.ArtistDetail{}}
	c := newCoordinator(t, scraper, catalog)

	summary := c.SyncAll(context.Background(), []string{"ok", "flaky", "broken"})
	assert.Equal(t, 3, summary.Processed)
	assert.Equal(t, 2, summary.Scraped)
	assert.Equal(t, 1, summary.Retries)
	assert.Equal(t, 1, summary.Errors)

	assert.Equal(t, 1, scraper.calls("ok"))
	assert.Equal(t, 2, scraper.calls("flaky"))
	assert.Equal(t, 2, scraper.calls("broken"), "a second failure is final, never a third attempt")
}

func TestSyncAllRecordsMissWithoutHistory(t *testing.T) {
	scraper := &stubScraper{} // nil statsFn: every scrape is a miss
	catalog := &stubCatalog{artists: map[string]spotify.ArtistDetail{
		"ar1": {ID: "ar1", Name: "One", Followers: 100},
	}}
	c := newCoordinator(t, scraper, catalog)

	summary := c.SyncAll(context.Background(), []string{"ar1"})
	assert.Equal(t, 1, summary.Processed)
	assert.Equal(t, 0, summary.Scraped)
	assert.Equal(t, 0, summary.Errors)

	artist, err := c.DB.GetArtist("ar1")
	require.NoError(t, err)
	assert.Nil(t, artist.MonthlyListeners)
	assert.NotNil(t, artist.LastSyncedAt, "the attempt itself is still recorded")

	var histories int64
	require.NoError(t, c.DB.Table("artist_stats_histories").Count(&histories).Error)
	assert.Equal(t, int64(0), histories)
}

func TestSyncAllRefreshesCatalogDetails(t *testing.T) {
	scraper := &stubScraper{}
	catalog := &stubCatalog{artists: map[string]spotify.ArtistDetail{
		"ar1": {ID: "ar1", Name: "Renamed", ImageURL: "pic", Followers: 9000, Popularity: 71,
			Genres: []string{"hyperpop", "glitchcore"}},
	}}
	c := newCoordinator(t, scraper, catalog)

	c.SyncAll(context.Background(), []string{"ar1"})

	artist, err := c.DB.GetArtist("ar1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", artist.Name)
	assert.Equal(t, "pic", artist.ImageURL)
	require.NotNil(t, artist.Followers)
	assert.Equal(t, int64(9000), *artist.Followers)
	assert.Equal(t, int64(71), artist.Popularity)
}

func TestSyncAllEmptyInput(t *testing.T) {
	c := newCoordinator(t, &stubScraper{}, &stubCatalog{})
	summary := c.SyncAll(context.Background(), nil)
	assert.Equal(t, syncer.ArtistSummary{}, summary)
}
