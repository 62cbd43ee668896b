package spotify_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/truantmusic/releaseradar/spotify"
)

func tokenServer(t *testing.T, exchanges *int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		require.Equal(t, "POST", req.Method)
		user, pass, ok := req.BasicAuth()
		require.True(t, ok)
		require.Equal(t, "id", user)
		require.Equal(t, "secret", pass)
		*exchanges++
		w.Header().Set("Content-type", "application/json")
		w.Write([]byte(`{"access_token":"tok","token_type":"Bearer","expires_in":3600}`))
	}))
}

func TestTokenCachedUntilNearExpiry(t *testing.T) {
	exchanges := 0
	srv := tokenServer(t, &exchanges)
	defer srv.Close()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	client := spotify.New("id", "secret",
		spotify.WithTokenURL(srv.URL),
		spotify.WithClock(func() time.Time { return now }))

	token, err := client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok", token)
	assert.Equal(t, 1, exchanges)

	// Well within the hour: cached.
	now = now.Add(30 * time.Minute)
	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, exchanges)

	// Within five minutes of expiry: refreshed proactively.
	now = now.Add(26 * time.Minute)
	_, err = client.Token(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, exchanges)
}

func TestTokenMissingCredentials(t *testing.T) {
	client := spotify.New("", "")
	_, err := client.Token(context.Background())
	require.Error(t, err)
	var authErr *spotify.AuthError
	assert.ErrorAs(t, err, &authErr)
}

func TestTokenExchangeRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "bad client", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := spotify.New("id", "secret", spotify.WithTokenURL(srv.URL))
	_, err := client.Token(context.Background())
	require.Error(t, err)
	var authErr *spotify.AuthError
	assert.ErrorAs(t, err, &authErr)
}
