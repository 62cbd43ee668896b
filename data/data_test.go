package data

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWebhookHasEvent(t *testing.T) {
	hook := Webhook{Events: "playlist_update, new_track"}
	assert.True(t, hook.HasEvent("playlist_update"))
	assert.True(t, hook.HasEvent("new_track"))
	assert.False(t, hook.HasEvent("artist_update"))
	assert.False(t, Webhook{}.HasEvent("playlist_update"))
}

func TestDisplayArtists(t *testing.T) {
	assert.Equal(t, "", DisplayArtists(nil))
	assert.Equal(t, "Solo", DisplayArtists([]ArtistRef{{Name: "Solo"}}))
	assert.Equal(t, "A, B", DisplayArtists([]ArtistRef{{Name: "A"}, {Name: "B"}}))
}
