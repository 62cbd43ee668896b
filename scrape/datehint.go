package scrape

import (
	"strings"
	"time"
)

// datePrefixes are the localized lead-ins the pre-release page puts in front
// of its date string. Coverage is limited to the phrasings observed so far.
var datePrefixes = []string{
	"Releases on",
	"Release date:",
	"Çıkış tarihi:",
}

var dateHintLayouts = []string{
	"January 2, 2006",
	"2 January 2006",
	"Jan 2, 2006",
	"2006-01-02",
}

// NormalizeDateHint strips any known localized prefix and surrounding
// whitespace from a scraped date string.
func NormalizeDateHint(hint string) string {
	trimmed := strings.TrimSpace(hint)
	for _, prefix := range datePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return strings.TrimSpace(trimmed[len(prefix):])
		}
	}
	return trimmed
}

// ParseDateHint normalizes and parses a scraped date string.
func ParseDateHint(hint string) (time.Time, bool) {
	cleaned := NormalizeDateHint(hint)
	if cleaned == "" {
		return time.Time{}, false
	}
	for _, layout := range dateHintLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func hasDatePrefix(text string) bool {
	trimmed := strings.TrimSpace(text)
	for _, prefix := range datePrefixes {
		if strings.HasPrefix(trimmed, prefix) {
			return true
		}
	}
	return false
}
