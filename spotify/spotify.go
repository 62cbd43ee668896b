// Package spotify is a minimal client for the parts of the Spotify Web API
// the sync pipeline needs: playlist items, batch album and artist lookups,
// and the client-credentials token exchange behind them.
package spotify

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/truantmusic/releaseradar/limiter"
	"github.com/truantmusic/releaseradar/request"
)

const (
	defaultBaseURL  = "https://api.spotify.com/v1"
	defaultTokenURL = "https://accounts.spotify.com/api/token"

	// AlbumBatchLimit is the upstream ceiling on ids per /albums request.
	AlbumBatchLimit = 20
	// ArtistBatchLimit is the upstream ceiling on ids per /artists request.
	ArtistBatchLimit = 50
)

// New creates a new Spotify client with the given clientID and clientSecret.
func New(clientID, clientSecret string, opts ...Option) *Client {
	client := &Client{
		clientID:     clientID,
		clientSecret: clientSecret,
		baseURL:      defaultBaseURL,
		tokenURL:     defaultTokenURL,
		httpClient:   http.DefaultClient,
		now:          time.Now,
		lim:          limiter.New(time.Second / 10),
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

type Client struct {
	clientID     string
	clientSecret string

	baseURL    string
	tokenURL   string
	httpClient *http.Client
	now        func() time.Time
	lim        *limiter.Limiter

	token tokenCache
}

// An Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option { return func(c *Client) { c.baseURL = u } }

// WithTokenURL overrides the token-exchange URL.
func WithTokenURL(u string) Option { return func(c *Client) { c.tokenURL = u } }

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.httpClient = hc } }

// WithClock overrides the clock used for token-expiry decisions.
func WithClock(now func() time.Time) Option { return func(c *Client) { c.now = now } }

func (spo *Client) get(ctx context.Context, path string, query url.Values) (io.ReadCloser, error) {
	u := spo.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return spo.getURL(ctx, u)
}

// getURL performs an authorized GET against an absolute URL, waiting out any
// rate-limit window first and retrying once the window set by a 429 expires.
func (spo *Client) getURL(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	for {
		if err := spo.lim.Wait(ctx); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("request error: %w", err)
		}

		token, err := spo.Token(ctx)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", token)

		resp, err := spo.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("request error: %w", err)
		}
		if resp.StatusCode == 429 {
			retryAfter := resp.Header.Get("Retry-After")
			resp.Body.Close()
			if err := spo.lim.SetNextAt(retryAfter); err != nil {
				return nil, err
			}
			continue
		}
		if err := request.Error(resp); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch error: %w", err)
		}

		spo.lim.Delay()
		return resp.Body, nil
	}
}

func decode(r io.ReadCloser, into any, what string) error {
	defer r.Close()
	dec := json.NewDecoder(r)
	if err := dec.Decode(into); err != nil {
		return fmt.Errorf("%s decode error: %w", what, err)
	}
	return nil
}

func largestImage(images []imageJSON) string {
	var imageURL string
	var maxSize int64
	for _, image := range images {
		if image.Width > maxSize || imageURL == "" {
			imageURL = image.URL
			maxSize = image.Width
		}
	}
	return imageURL
}

type imageJSON struct {
	Height int64  `json:"height"`
	Width  int64  `json:"width"`
	URL    string `json:"url"`
}

type artistRefJSON struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
