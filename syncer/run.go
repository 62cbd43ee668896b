package syncer

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/truantmusic/releaseradar/browser"
	"github.com/truantmusic/releaseradar/db"
	"github.com/truantmusic/releaseradar/scrape"
)

// Summary is the JSON result of one whole sync run.
type Summary struct {
	RunID                 string        `json:"runId"`
	Success               bool          `json:"success"`
	Duration              string        `json:"duration"`
	Error                 string        `json:"error,omitempty"`
	PlaylistsSynced       int           `json:"playlistsSynced"`
	NewReleasesFound      int           `json:"newReleasesFound"`
	TotalArtistsProcessed int           `json:"totalArtistsProcessed"`
	ArtistsScraped        int           `json:"artistsScraped"`
	ArtistRetries         int           `json:"artistRetries"`
	ArtistScrapeErrors    int           `json:"artistScrapeErrors"`
	Results               []ResultEntry `json:"results"`
}

// ResultEntry describes one newly discovered release. Summaries carry at
// most the first maxResultEntries of these.
type ResultEntry struct {
	PlaylistID string `json:"playlistId"`
	ReleaseID  string `json:"releaseId"`
	Title      string `json:"title"`
	Artist     string `json:"artist"`
}

const maxResultEntries = 20

// A Runner orchestrates one sync invocation end to end. It owns the
// headless browser session's lifecycle: lazily created on first scrape,
// closed exactly once when the run ends on any path.
type Runner struct {
	DB      *db.DB
	Catalog Catalog
	Log     *log.Logger

	// DefaultPlaylistID is synced first on every run.
	DefaultPlaylistID string
	// NavTimeout bounds each headless navigation.
	NavTimeout time.Duration
	// ArtistChunkSize and RetryCooldown tune the artist coordinator.
	ArtistChunkSize int
	RetryCooldown   time.Duration

	// Scraper overrides the session-backed scraper; tests use this.
	Scraper Scraper
	// HTTPClient delivers webhook payloads; http.DefaultClient when nil.
	HTTPClient *http.Client
	// Clock overrides time.Now; tests use this.
	Clock func() time.Time

	// set for the duration of one Run
	scraper Scraper
}

func (r *Runner) now() func() time.Time {
	if r.Clock != nil {
		return r.Clock
	}
	return time.Now
}

func (r *Runner) httpClient() *http.Client {
	if r.HTTPClient != nil {
		return r.HTTPClient
	}
	return http.DefaultClient
}

// Run executes one full sync: every tracked playlist is reconciled in
// discovery order (default playlist first, then webhook-configured ones),
// new releases are dispatched to their playlist's webhooks, and finally the
// artist-stats refresh runs across the union of observed artist ids.
func (r *Runner) Run(ctx context.Context, skipArtists bool) (*Summary, error) {
	start := r.now()()
	summary := &Summary{RunID: uuid.NewString()}
	logger := r.Log.With("run", summary.RunID)

	finish := func(err error) (*Summary, error) {
		summary.Duration = r.now()().Sub(start).Round(time.Millisecond).String()
		if err != nil {
			summary.Error = err.Error()
			return summary, err
		}
		summary.Success = true
		return summary, nil
	}

	hooks, err := r.DB.EnabledWebhooks()
	if err != nil {
		return finish(err)
	}

	var playlists []string
	if r.DefaultPlaylistID != "" {
		playlists = append(playlists, r.DefaultPlaylistID)
	}
	for _, hook := range hooks {
		if hook.PlaylistID != "" {
			playlists = append(playlists, hook.PlaylistID)
		}
	}
	playlists = dedupe(playlists)

	if r.Scraper != nil {
		r.scraper = r.Scraper
	} else {
		sess := browser.NewSession(logger, r.NavTimeout)
		defer sess.Close()
		r.scraper = &sessionScraper{sess: sess}
	}
	defer func() { r.scraper = nil }()

	notifier := &Notifier{
		Client:            r.httpClient(),
		Log:               logger,
		Now:               r.now(),
		DefaultPlaylistID: r.DefaultPlaylistID,
	}

	var artistIDs []string
	for _, playlistID := range playlists {
		if err := ctx.Err(); err != nil {
			return finish(err)
		}

		result, err := r.syncCollection(ctx, playlistID)
		if err != nil {
			var cfe *CollectionFetchError
			if errors.As(err, &cfe) {
				logger.Error("playlist skipped", "playlist", playlistID, "err", cfe.Err)
				continue
			}
			return finish(err)
		}

		summary.PlaylistsSynced++
		summary.NewReleasesFound += len(result.New)
		for _, release := range result.New {
			if len(summary.Results) < maxResultEntries {
				summary.Results = append(summary.Results, ResultEntry{
					PlaylistID: playlistID,
					ReleaseID:  release.SpotifyID,
					Title:      release.Name,
					Artist:     release.ArtistName,
				})
			}
		}
		for _, release := range result.All {
			for _, credit := range release.Artists {
				artistIDs = append(artistIDs, credit.SpotifyID)
			}
		}

		notifier.Dispatch(ctx, result.New, playlistID, hooks)
		logger.Info("playlist synced",
			"playlist", playlistID, "releases", len(result.All), "new", len(result.New))
	}

	if !skipArtists {
		coordinator := &Coordinator{
			DB:        r.DB,
			Catalog:   r.Catalog,
			Scraper:   r.scraper,
			Log:       logger,
			Now:       r.now(),
			ChunkSize: r.ArtistChunkSize,
			Cooldown:  r.RetryCooldown,
		}
		artistSummary := coordinator.SyncAll(ctx, artistIDs)
		summary.TotalArtistsProcessed = artistSummary.Processed
		summary.ArtistsScraped = artistSummary.Scraped
		summary.ArtistRetries = artistSummary.Retries
		summary.ArtistScrapeErrors = artistSummary.Errors
	}

	if err := ctx.Err(); err != nil {
		return finish(err)
	}

	logger.Info("sync complete",
		"playlists", summary.PlaylistsSynced,
		"new", summary.NewReleasesFound,
		"artists", summary.TotalArtistsProcessed)
	return finish(nil)
}

func (r *Runner) syncCollection(ctx context.Context, playlistID string) (*ReconcileResult, error) {
	items, err := r.Catalog.FetchPlaylistItems(ctx, playlistID)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, &CollectionFetchError{PlaylistID: playlistID, Err: err}
	}
	return r.reconcile(ctx, items)
}

// sessionScraper adapts the shared browser session to the Scraper surface.
type sessionScraper struct {
	sess *browser.Session
}

func (s *sessionScraper) Prerelease(ctx context.Context, trackID string) (scrape.PrereleaseInfo, error) {
	return scrape.Prerelease(ctx, s.sess, trackID)
}

func (s *sessionScraper) ArtistStats(ctx context.Context, artistID string) (*scrape.Stats, error) {
	return scrape.ArtistStats(ctx, s.sess, artistID)
}
