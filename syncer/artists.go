package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/truantmusic/releaseradar/data"
	"github.com/truantmusic/releaseradar/db"
	"github.com/truantmusic/releaseradar/spotify"
)

// ArtistSummary reports the outcome of one artist-stats refresh pass.
type ArtistSummary struct {
	Processed int `json:"totalArtistsProcessed"`
	Scraped   int `json:"artistsScraped"`
	Retries   int `json:"artistRetries"`
	Errors    int `json:"artistScrapeErrors"`
}

// A Coordinator refreshes artist statistics: it deduplicates ids observed
// across every synced playlist, scrapes them in fixed-size concurrent
// chunks, and retries failures once after a cooldown.
type Coordinator struct {
	DB      *db.DB
	Catalog Catalog
	Scraper Scraper
	Log     *log.Logger
	Now     func() time.Time

	// ChunkSize caps simultaneous browser pages; 5 when zero.
	ChunkSize int
	// Cooldown precedes the single retry pass; 3s when zero.
	Cooldown time.Duration
}

func (c *Coordinator) chunkSize() int {
	if c.ChunkSize <= 0 {
		return 5
	}
	return c.ChunkSize
}

func (c *Coordinator) cooldown() time.Duration {
	if c.Cooldown <= 0 {
		return 3 * time.Second
	}
	return c.Cooldown
}

// SyncAll refreshes stats for the given artist ids. Each distinct artist is
// scraped exactly once, plus at most one retry after the cooldown; a second
// failure is final.
func (c *Coordinator) SyncAll(ctx context.Context, artistIDs []string) ArtistSummary {
	ids := dedupe(artistIDs)
	summary := ArtistSummary{Processed: len(ids)}
	if len(ids) == 0 {
		return summary
	}

	c.refreshDetails(ctx, ids)

	var mu sync.Mutex
	var failed []string
	scraped := 0

	for _, batch := range chunk(ids, c.chunkSize()) {
		if ctx.Err() != nil {
			break
		}
		g := new(errgroup.Group)
		for _, id := range batch {
			id := id
			g.Go(func() error {
				ok, err := c.scrapeOne(ctx, id)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					c.Log.Warn("artist scrape failed", "artist", id, "err", err)
					failed = append(failed, id)
				} else if ok {
					scraped++
				}
				// A failed artist goes on the retry list instead of
				// aborting the chunk.
				return nil
			})
		}
		g.Wait()
	}

	if len(failed) > 0 && ctx.Err() == nil {
		c.Log.Info("retrying failed artists after cooldown",
			"failed", len(failed), "cooldown", c.cooldown())
		select {
		case <-ctx.Done():
		case <-time.After(c.cooldown()):
			for _, id := range failed {
				if ctx.Err() != nil {
					break
				}
				ok, err := c.scrapeOne(ctx, id)
				if err != nil {
					c.Log.Error("artist scrape failed on retry", "artist", id, "err", err)
					summary.Errors++
					continue
				}
				summary.Retries++
				if ok {
					scraped++
				}
			}
		}
	}

	summary.Scraped = scraped
	return summary
}

// refreshDetails batch-fetches artist detail records and upserts the
// catalog-sourced columns. Failed batches degrade to stale details.
func (c *Coordinator) refreshDetails(ctx context.Context, ids []string) {
	for _, batch := range chunk(ids, spotify.ArtistBatchLimit) {
		if ctx.Err() != nil {
			return
		}
		artists, err := c.Catalog.FetchArtists(ctx, batch)
		if err != nil {
			c.Log.Error("artist detail batch failed", "size", len(batch), "err", err)
			continue
		}
		for _, detail := range artists {
			followers := detail.Followers
			artist := &data.Artist{
				SpotifyID:  detail.ID,
				Name:       detail.Name,
				ImageURL:   detail.ImageURL,
				Followers:  &followers,
				Popularity: detail.Popularity,
				Genres:     detail.Genres,
			}
			if err := c.DB.UpsertArtist(ctx, artist); err != nil {
				c.Log.Error("artist upsert failed", "artist", detail.ID, "err", err)
			}
		}
	}
}

// scrapeOne attempts a single stats scrape. It returns whether stats were
// recovered; an error means a hard scrape failure eligible for retry. The
// attempt is recorded either way, but a miss or failure never erases a
// previously known listener count.
func (c *Coordinator) scrapeOne(ctx context.Context, artistID string) (bool, error) {
	stats, err := c.Scraper.ArtistStats(ctx, artistID)
	at := c.Now()
	if err != nil {
		return false, err
	}

	if stats == nil {
		// Normal outcome for artists without enough public data.
		if err := c.DB.RecordArtistScrape(artistID, nil, at); err != nil {
			c.Log.Error("error recording scrape attempt", "artist", artistID, "err", err)
		}
		return false, nil
	}

	if err := c.DB.RecordArtistScrape(artistID, stats.MonthlyListeners, at); err != nil {
		return false, err
	}

	if stats.MonthlyListeners != nil {
		artist, err := c.DB.GetArtist(artistID)
		if err != nil {
			return true, nil
		}
		followers := stats.Followers
		if followers == nil {
			followers = artist.Followers
		}
		history := &data.ArtistStatsHistory{
			ArtistSpotifyID:  artistID,
			MonthlyListeners: *stats.MonthlyListeners,
			Followers:        followers,
			Popularity:       artist.Popularity,
			CreatedAt:        at,
		}
		if err := c.DB.InsertStatsHistory(history); err != nil {
			c.Log.Error("error appending stats history", "artist", artistID, "err", err)
		}
	}

	return true, nil
}
