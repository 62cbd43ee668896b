package syncer_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"

	"github.com/truantmusic/releaseradar/scrape"
	"github.com/truantmusic/releaseradar/spotify"
	"github.com/truantmusic/releaseradar/syncer"
)

type stubScraper struct {
	mu sync.Mutex

	prerelease      scrape.PrereleaseInfo
	prereleaseErr   error
	prereleaseCalls int

	statsFn    func(artistID string) (*scrape.Stats, error)
	statsCalls map[string]int
}

func (s *stubScraper) Prerelease(ctx context.Context, trackID string) (scrape.PrereleaseInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.prereleaseCalls++
	return s.prerelease, s.prereleaseErr
}

func (s *stubScraper) ArtistStats(ctx context.Context, artistID string) (*scrape.Stats, error) {
	s.mu.Lock()
	if s.statsCalls == nil {
		s.statsCalls = map[string]int{}
	}
	s.statsCalls[artistID]++
	s.mu.Unlock()
	if s.statsFn == nil {
		return nil, nil
	}
	return s.statsFn(artistID)
}

func (s *stubScraper) calls(artistID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statsCalls[artistID]
}

func testLogger() *log.Logger { return log.New(io.Discard) }

func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestResolveUsesAuthoritativeDate(t *testing.T) {
	scraper := &stubScraper{}
	resolver := &syncer.Resolver{Scraper: scraper, Log: testLogger(), Now: time.Now}

	item := spotify.PlaylistItem{TrackID: "t1", Album: spotify.AlbumBrief{ID: "a1"}}
	full := &spotify.Album{ID: "a1", ReleaseDate: "2025-03-01", ImageURL: "cover"}

	resolved := resolver.Resolve(context.Background(), item, full)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), resolved.Date)
	assert.Equal(t, "cover", resolved.ImageURL)
	assert.Equal(t, 0, scraper.prereleaseCalls, "scrape must not run when the date is authoritative")
}

func TestResolveSentinelTriggersScrape(t *testing.T) {
	scraper := &stubScraper{prerelease: scrape.PrereleaseInfo{
		ImageURL: "scraped-cover",
		DateHint: "Releases on March 14, 2025",
	}}
	resolver := &syncer.Resolver{Scraper: scraper, Log: testLogger(), Now: time.Now}

	item := spotify.PlaylistItem{TrackID: "t1", Album: spotify.AlbumBrief{ID: "a1", ReleaseDate: "0000"}}

	resolved := resolver.Resolve(context.Background(), item, nil)
	assert.Equal(t, 1, scraper.prereleaseCalls)
	assert.Equal(t, "scraped-cover", resolved.ImageURL)
	assert.Equal(t, time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), resolved.Date)
}

func TestResolveFallsBackToAddedAt(t *testing.T) {
	scraper := &stubScraper{} // scrape yields neither image nor date
	resolver := &syncer.Resolver{Scraper: scraper, Log: testLogger(), Now: time.Now}

	addedAt := time.Date(2025, 2, 2, 10, 0, 0, 0, time.UTC)
	item := spotify.PlaylistItem{
		TrackID: "t1",
		AddedAt: addedAt,
		Album:   spotify.AlbumBrief{ID: "a1", ReleaseDate: "0000"},
	}

	resolved := resolver.Resolve(context.Background(), item, nil)
	assert.Equal(t, 1, scraper.prereleaseCalls)
	assert.Equal(t, addedAt, resolved.Date)
}

func TestResolveLastResortIsNow(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	scraper := &stubScraper{prereleaseErr: errors.New("timeout")}
	resolver := &syncer.Resolver{Scraper: scraper, Log: testLogger(), Now: fixedClock(now)}

	item := spotify.PlaylistItem{TrackID: "t1", Album: spotify.AlbumBrief{ID: "a1"}}

	resolved := resolver.Resolve(context.Background(), item, nil)
	assert.Equal(t, now, resolved.Date)
}

func TestResolveRejectsAncientDates(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	resolver := &syncer.Resolver{Log: testLogger(), Now: fixedClock(now)}

	item := spotify.PlaylistItem{
		TrackID: "t1",
		Album:   spotify.AlbumBrief{ID: "a1", ReleaseDate: "1899-12-31", ImageURL: "cover"},
	}

	resolved := resolver.Resolve(context.Background(), item, nil)
	assert.Equal(t, now, resolved.Date)
}
