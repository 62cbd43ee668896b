package spotify

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/truantmusic/releaseradar/request"
)

// Tokens are refreshed this long before their stated expiry so in-flight
// requests never ride an about-to-expire credential.
const tokenRefreshEarly = 5 * time.Minute

// An AuthError means the credential exchange failed or no credentials were
// configured. It is fatal to a whole sync run.
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return fmt.Sprintf("auth error: %v", e.Err) }
func (e *AuthError) Unwrap() error { return e.Err }

// tokenCache is the single process-wide cached bearer token. Concurrent
// callers that both observe an expired token may both perform an exchange;
// only the cache swap itself is guarded.
type tokenCache struct {
	mu        sync.Mutex
	value     string
	expiresAt time.Time
}

func (tc *tokenCache) get() (string, time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return tc.value, tc.expiresAt
}

func (tc *tokenCache) set(value string, expiresAt time.Time) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.value = value
	tc.expiresAt = expiresAt
}

// Token returns an Authorization header value, performing a fresh
// client-credentials exchange when the cached token is missing or within
// five minutes of expiry.
func (spo *Client) Token(ctx context.Context) (string, error) {
	value, expiresAt := spo.token.get()
	if value != "" && spo.now().Before(expiresAt.Add(-tokenRefreshEarly)) {
		return fmt.Sprintf("Bearer %s", value), nil
	}

	if err := spo.fetchToken(ctx); err != nil {
		return "", err
	}

	value, _ = spo.token.get()
	return fmt.Sprintf("Bearer %s", value), nil
}

type tokenResult struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (spo *Client) fetchToken(ctx context.Context) error {
	if spo.clientID == "" || spo.clientSecret == "" {
		return &AuthError{Err: errors.New("missing client credentials")}
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	req, err := http.NewRequestWithContext(ctx, "POST", spo.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthError{Err: fmt.Errorf("token request error: %w", err)}
	}
	up := fmt.Sprintf("%s:%s", spo.clientID, spo.clientSecret)
	credential := base64.StdEncoding.EncodeToString([]byte(up))
	req.Header.Set("Authorization", fmt.Sprintf("Basic %s", credential))
	req.Header.Set("Content-type", "application/x-www-form-urlencoded")

	requestAt := spo.now()
	resp, err := spo.httpClient.Do(req)
	if err != nil {
		return &AuthError{Err: fmt.Errorf("token request error: %w", err)}
	}
	defer resp.Body.Close()
	if err := request.Error(resp); err != nil {
		return &AuthError{Err: fmt.Errorf("token fetch error: %w", err)}
	}

	var result tokenResult
	dec := json.NewDecoder(resp.Body)
	if err := dec.Decode(&result); err != nil {
		return &AuthError{Err: fmt.Errorf("token decode error: %w", err)}
	}

	spo.token.set(result.AccessToken, requestAt.Add(time.Duration(result.ExpiresIn)*time.Second))
	return nil
}
