package titles_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/truantmusic/releaseradar/titles"
)

func TestParse(t *testing.T) {
	for _, tt := range []struct {
		raw     string
		base    string
		version string
	}{
		{"Track Name (Slowed + Reverb)", "Track Name", "slowed"},
		{"Track Name", "Track Name", ""},
		{"  Track Name  ", "Track Name", ""},
		{"Track Name [Sped Up]", "Track Name", "sped up"},
		{"Track Name (NIGHTCORE)", "Track Name", "nightcore"},
		{"Track Name - Acoustic Version", "Track Name", "acoustic"},
		{"Track Name (feat. Someone)", "Track Name (feat. Someone)", ""},
		{"Alive", "Alive", ""},
		{"Deliverance (Club Mix)", "Deliverance (Club Mix)", ""},
		{"Track Name (Live at Wembley)", "Track Name", "live"},
		{"Track Name (Extended Edit)", "Track Name", "extended"},
	} {
		base, version := titles.Parse(tt.raw)
		assert.Equal(t, tt.base, base, "base of %q", tt.raw)
		assert.Equal(t, tt.version, version, "version of %q", tt.raw)
	}
}
