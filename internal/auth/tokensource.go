package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// expiryBuffer refreshes tokens slightly before they actually expire
const expiryBuffer = 60 * time.Second

// TokenSource hands out valid access tokens, refreshing through the OAuth
// endpoint when the current one is near expiry. Every refreshed token is
// handed to onRefresh so the caller can persist it.
type TokenSource struct {
	config    *oauth2.Config
	token     *oauth2.Token
	onRefresh func(*oauth2.Token) error
	mu        sync.Mutex
}

// NewTokenSource wraps a stored token with refresh-and-persist behavior
func NewTokenSource(cfg *oauth2.Config, token *oauth2.Token, onRefresh func(*oauth2.Token) error) *TokenSource {
	return &TokenSource{
		config:    cfg,
		token:     token,
		onRefresh: onRefresh,
	}
}

// Token returns a valid token, refreshing if it is expired or about to be
func (ts *TokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > expiryBuffer {
		return ts.token, nil
	}
	return ts.refreshLocked()
}

// ForceRefresh discards the current access token and obtains a fresh one,
// regardless of expiry. Used after the API rejects a token that still
// looked valid locally.
func (ts *TokenSource) ForceRefresh() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	// Zero expiry forces the oauth2 package to hit the token endpoint.
	ts.token.Expiry = time.Unix(0, 0)
	return ts.refreshLocked()
}

func (ts *TokenSource) refreshLocked() (*oauth2.Token, error) {
	src := ts.config.TokenSource(context.Background(), ts.token)
	newToken, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.onRefresh != nil {
		if err := ts.onRefresh(newToken); err != nil {
			return nil, err
		}
	}

	ts.token = newToken
	return newToken, nil
}
