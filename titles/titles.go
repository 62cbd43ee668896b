// Package titles splits raw track titles into a canonical base title and an
// optional version tag.
package titles

import (
	"regexp"
	"strings"
)

// versionMarkers is the closed set of recognized version/edit tags, matched
// case-insensitively. The first marker found in a trailing bracketed,
// parenthetical, or hyphenated segment wins.
var versionMarkers = []string{
	"slowed",
	"sped up",
	"nightcore",
	"remix",
	"acoustic",
	"live",
	"instrumental",
	"reverb",
	"extended",
	"edit",
	"cover",
	"mashup",
}

// suffixRE matches a trailing "(...)", "[...]", or " - ..." segment.
var suffixRE = regexp.MustCompile(`(?:\(([^)]*)\)|\[([^\]]*)\]|\s-\s([^-]*))\s*$`)

var markerREs = func() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(versionMarkers))
	for i, marker := range versionMarkers {
		res[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(marker) + `\b`)
	}
	return res
}()

// Parse splits a raw title into its base title and version tag. Titles
// without a recognized marker come back with the trimmed input as the base
// and an empty version.
func Parse(raw string) (base, version string) {
	trimmed := strings.TrimSpace(raw)

	match := suffixRE.FindStringSubmatchIndex(trimmed)
	if match == nil {
		return trimmed, ""
	}

	segment := ""
	for i := 1; i <= 3; i++ {
		if match[2*i] >= 0 {
			segment = trimmed[match[2*i]:match[2*i+1]]
			break
		}
	}

	for i, re := range markerREs {
		if re.MatchString(segment) {
			base = strings.TrimSpace(trimmed[:match[0]])
			return base, versionMarkers[i]
		}
	}

	return trimmed, ""
}
