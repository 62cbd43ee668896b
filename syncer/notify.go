package syncer

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"github.com/truantmusic/releaseradar/data"
	"github.com/truantmusic/releaseradar/request"
)

// Spotify-green accent for embeds.
const embedColor = 0x1DB954

// A Notifier fans new-release notifications out to webhook endpoints.
// Delivery is best-effort: one endpoint's failure never blocks the others.
type Notifier struct {
	Client *http.Client
	Log    *log.Logger
	Now    func() time.Time

	// DefaultPlaylistID is the playlist a webhook without an explicit
	// playlist is scoped to.
	DefaultPlaylistID string
}

// Dispatch sends one POST per (new release x qualifying webhook).
// Notifications are scoped to the playlist that produced the release: a
// webhook configured for another playlist never hears about it.
func (n *Notifier) Dispatch(ctx context.Context, newReleases []*data.Release, playlistID string, hooks []data.Webhook) {
	var qualified []data.Webhook
	for _, hook := range hooks {
		if !hook.HasEvent(EventPlaylistUpdate) && !hook.HasEvent(EventNewTrack) {
			continue
		}
		target := hook.PlaylistID
		if target == "" {
			target = n.DefaultPlaylistID
		}
		if target != playlistID {
			continue
		}
		qualified = append(qualified, hook)
	}
	if len(qualified) == 0 || len(newReleases) == 0 {
		return
	}

	for _, release := range newReleases {
		payload := n.buildPayload(release)
		for _, hook := range qualified {
			if err := request.PostJSON(ctx, n.Client, hook.URL, payload); err != nil {
				n.Log.Error("webhook delivery failed",
					"webhook", hook.ID, "release", release.SpotifyID, "err", err)
				continue
			}
			n.Log.Debug("webhook delivered", "webhook", hook.ID, "release", release.SpotifyID)
		}
	}
}

// webhookPayload is a Discord-compatible embed body.
type webhookPayload struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Embeds    []embed `json:"embeds"`
}

type embed struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Color       int             `json:"color"`
	Fields      []embedField    `json:"fields"`
	Thumbnail   *embedThumbnail `json:"thumbnail,omitempty"`
	URL         string          `json:"url,omitempty"`
	Footer      embedFooter     `json:"footer"`
	Timestamp   string          `json:"timestamp"`
}

type embedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type embedThumbnail struct {
	URL string `json:"url"`
}

type embedFooter struct {
	Text string `json:"text"`
}

func (n *Notifier) buildPayload(release *data.Release) webhookPayload {
	title := release.BaseTitle
	if title == "" {
		title = release.Name
	}
	if release.VersionName != "" {
		title += " (" + release.VersionName + ")"
	}

	fields := []embedField{
		{Name: "Release date", Value: release.ReleaseDate.Format("January 2, 2006"), Inline: true},
	}
	if release.Type != "" {
		fields = append(fields, embedField{Name: "Type", Value: release.Type, Inline: true})
	}

	e := embed{
		Title:       title,
		Description: "New release from " + release.ArtistName,
		Color:       embedColor,
		Fields:      fields,
		URL:         release.ExternalURL,
		Footer:      embedFooter{Text: "releaseradar"},
		Timestamp:   n.Now().UTC().Format(time.RFC3339),
	}
	if release.ImageURL != "" {
		e.Thumbnail = &embedThumbnail{URL: release.ImageURL}
	}

	return webhookPayload{
		Username:  "Release Radar",
		AvatarURL: release.ImageURL,
		Embeds:    []embed{e},
	}
}
