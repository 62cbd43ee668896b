package scrape_test

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truantmusic/releaseradar/scrape"
)

func snapshot(t *testing.T, html string) *scrape.Snapshot {
	t.Helper()
	snap, err := scrape.ParseSnapshot(html)
	require.NoError(t, err)
	return snap
}

func TestExtractStatsEmbeddedScript(t *testing.T) {
	payload := `{"profile":{"verified":true},"stats":{"monthly_listeners":1234567,"followers":89012}}`
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))
	snap := snapshot(t, fmt.Sprintf(
		`<html><head><script id="initial-state">%s</script></head><body></body></html>`, encoded))

	stats := scrape.ExtractStats(snap)
	require.NotNil(t, stats)
	assert.Equal(t, "embedded-script", stats.Source)
	require.NotNil(t, stats.MonthlyListeners)
	assert.Equal(t, int64(1234567), *stats.MonthlyListeners)
	require.NotNil(t, stats.Followers)
	assert.Equal(t, int64(89012), *stats.Followers)
	assert.True(t, stats.Verified)
}

func TestExtractStatsAriaLabel(t *testing.T) {
	snap := snapshot(t, `<html><body>
		<div aria-label="1,234,567 monthly listeners"></div>
	</body></html>`)

	stats := scrape.ExtractStats(snap)
	require.NotNil(t, stats)
	assert.Equal(t, "aria-label", stats.Source)
	require.NotNil(t, stats.MonthlyListeners)
	assert.Equal(t, int64(1234567), *stats.MonthlyListeners)
}

func TestExtractStatsAriaLabelTurkish(t *testing.T) {
	snap := snapshot(t, `<html><body>
		<span aria-label="1.234.567 aylık dinleyici"></span>
	</body></html>`)

	stats := scrape.ExtractStats(snap)
	require.NotNil(t, stats)
	require.NotNil(t, stats.MonthlyListeners)
	assert.Equal(t, int64(1234567), *stats.MonthlyListeners)
}

func TestExtractStatsVisibleText(t *testing.T) {
	snap := snapshot(t, `<html><body>
		<div><p>Some Artist</p><p>2.5M monthly listeners</p></div>
	</body></html>`)

	stats := scrape.ExtractStats(snap)
	require.NotNil(t, stats)
	assert.Equal(t, "visible-text", stats.Source)
	require.NotNil(t, stats.MonthlyListeners)
	assert.Equal(t, int64(2_500_000), *stats.MonthlyListeners)
}

func TestExtractStatsStrategyOrder(t *testing.T) {
	// The embedded script wins even when the page text disagrees.
	payload := `{"stats":{"monthly_listeners":100}}`
	encoded := base64.StdEncoding.EncodeToString([]byte(payload))
	snap := snapshot(t, fmt.Sprintf(`<html><body>
		<script>%s</script>
		<div aria-label="999 monthly listeners"></div>
	</body></html>`, encoded))

	stats := scrape.ExtractStats(snap)
	require.NotNil(t, stats)
	assert.Equal(t, "embedded-script", stats.Source)
	assert.Equal(t, int64(100), *stats.MonthlyListeners)
}

func TestExtractStatsNothing(t *testing.T) {
	snap := snapshot(t, `<html><body><h1>Some Artist</h1><p>Discography</p></body></html>`)
	assert.Nil(t, scrape.ExtractStats(snap))
}

func TestExtractStatsGuardsSmallNumbers(t *testing.T) {
	// "Top 5" style stray numbers next to the phrase must not be taken
	// for a listener count.
	snap := snapshot(t, `<html><body><p>5 monthly listeners charts</p></body></html>`)
	assert.Nil(t, scrape.ExtractStats(snap))
}

type stubVisitor struct {
	html string
	err  error
	urls []string
}

func (v *stubVisitor) Visit(ctx context.Context, url string) (string, error) {
	v.urls = append(v.urls, url)
	return v.html, v.err
}

func TestArtistStatsHardFailure(t *testing.T) {
	visitor := &stubVisitor{err: errors.New("navigation timeout")}
	stats, err := scrape.ArtistStats(context.Background(), visitor, "artist1")
	assert.Nil(t, stats)
	assert.Error(t, err)
}

func TestArtistStatsMissIsNotAnError(t *testing.T) {
	visitor := &stubVisitor{html: "<html><body>nothing here</body></html>"}
	stats, err := scrape.ArtistStats(context.Background(), visitor, "artist1")
	assert.NoError(t, err)
	assert.Nil(t, stats)
	require.Len(t, visitor.urls, 1)
	assert.Equal(t, "https://open.spotify.com/artist/artist1", visitor.urls[0])
}
