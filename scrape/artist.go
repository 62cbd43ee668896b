package scrape

import (
	"context"
	"encoding/base64"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const artistURLFormat = "https://open.spotify.com/artist/%s"

// Stats is what an artist-page scrape recovered. A nil *Stats from
// ExtractStats means no strategy produced anything plausible, which is a
// normal outcome for artists without enough public data.
type Stats struct {
	MonthlyListeners *int64
	Followers        *int64
	Verified         bool

	// Source names the extraction strategy that produced the stats.
	Source string
}

// ArtistStats scrapes the public profile page for the given artist id.
// A hard failure (navigation timeout, browser crash) is an error; a page
// that simply exposes no stats returns (nil, nil).
func ArtistStats(ctx context.Context, visitor Visitor, artistID string) (*Stats, error) {
	html, err := visitor.Visit(ctx, fmt.Sprintf(artistURLFormat, artistID))
	if err != nil {
		return nil, fmt.Errorf("error scraping artist page for '%s': %w", artistID, err)
	}

	snap, err := ParseSnapshot(html)
	if err != nil {
		return nil, fmt.Errorf("error parsing artist page for '%s': %w", artistID, err)
	}

	return ExtractStats(snap), nil
}

// A strategy recovers stats from a page snapshot, returning nil on a miss.
type strategy struct {
	name    string
	extract func(*Snapshot) *Stats
}

// strategies are tried in order; the first hit wins.
var strategies = []strategy{
	{"embedded-script", fromEmbeddedScript},
	{"aria-label", fromAriaLabel},
	{"visible-text", fromVisibleText},
}

// ExtractStats applies the extraction strategies in order and returns the
// first plausible result, or nil when every strategy misses.
func ExtractStats(snap *Snapshot) *Stats {
	for _, strat := range strategies {
		if stats := strat.extract(snap); stats != nil {
			stats.Source = strat.name
			return stats
		}
	}
	return nil
}

var (
	scriptListenersRE = regexp.MustCompile(`"monthly_?[lL]isteners"\s*:\s*\{?\s*"?(?:total"?\s*:\s*)?(\d+)`)
	scriptFollowersRE = regexp.MustCompile(`"followers"\s*:\s*\{?\s*"?(?:total"?\s*:\s*)?(\d+)`)
	scriptVerifiedRE  = regexp.MustCompile(`"(?:is_?[vV]erified|verified)"\s*:\s*true`)
)

// fromEmbeddedScript decodes base64-encoded inline script payloads and
// regex-extracts the stats fields from the decoded JSON.
func fromEmbeddedScript(snap *Snapshot) *Stats {
	var stats *Stats
	snap.doc.Find("script").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		raw := strings.TrimSpace(sel.Text())
		if raw == "" {
			return true
		}
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			if decoded, err = base64.RawStdEncoding.DecodeString(raw); err != nil {
				return true
			}
		}
		payload := string(decoded)

		found := Stats{}
		if m := scriptListenersRE.FindStringSubmatch(payload); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				found.MonthlyListeners = &n
			}
		}
		if m := scriptFollowersRE.FindStringSubmatch(payload); m != nil {
			if n, err := strconv.ParseInt(m[1], 10, 64); err == nil {
				found.Followers = &n
			}
		}
		if found.MonthlyListeners == nil && found.Followers == nil {
			return true
		}
		found.Verified = scriptVerifiedRE.MatchString(payload)
		stats = &found
		return false
	})
	return stats
}

var (
	listenerPhraseRE = regexp.MustCompile(`(?i)([\d][\d.,]*\s?[KMB]?)\s*(?:monthly listeners|aylık dinleyici)`)
	followerPhraseRE = regexp.MustCompile(`(?i)([\d][\d.,]*\s?[KMB]?)\s*(?:followers|takipçi)`)
)

// fromAriaLabel reads accessibility labels containing listener-count
// phrasing in either supported language.
func fromAriaLabel(snap *Snapshot) *Stats {
	var stats *Stats
	snap.doc.Find("[aria-label]").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		label, _ := sel.Attr("aria-label")
		found := statsFromText(label)
		if found == nil {
			return true
		}
		stats = found
		return false
	})
	return stats
}

// fromVisibleText scans visible text nodes for listener-count phrasing as a
// last resort.
func fromVisibleText(snap *Snapshot) *Stats {
	return statsFromText(snap.doc.Find("body").Text())
}

// statsFromText applies the phrase patterns to free text. Counts under ten
// are rejected: they are overwhelmingly stray UI numbers sitting next to the
// phrase, not real listener counts.
func statsFromText(text string) *Stats {
	found := Stats{}
	if m := listenerPhraseRE.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok && n >= 10 {
			found.MonthlyListeners = &n
		}
	}
	if m := followerPhraseRE.FindStringSubmatch(text); m != nil {
		if n, ok := parseCount(m[1]); ok && n >= 10 {
			found.Followers = &n
		}
	}
	if found.MonthlyListeners == nil && found.Followers == nil {
		return nil
	}
	return &found
}

// parseCount parses display numbers like "1,234,567", "1.234.567", and
// abbreviated forms like "1.2M".
func parseCount(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	mult := int64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		mult, s = 1_000, strings.TrimSpace(s[:len(s)-1])
	case 'M', 'm':
		mult, s = 1_000_000, strings.TrimSpace(s[:len(s)-1])
	case 'B', 'b':
		mult, s = 1_000_000_000, strings.TrimSpace(s[:len(s)-1])
	}

	if mult > 1 {
		f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
		if err != nil {
			return 0, false
		}
		return int64(f * float64(mult)), true
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if digits == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
