package strava

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// DefaultBaseURL is the Strava API root
const DefaultBaseURL = "https://www.strava.com/api/v3"

// TokenProvider supplies bearer tokens for API calls. ForceRefresh discards
// any cached token and obtains a fresh one; it backs the single retry the
// client performs when the API answers 401.
type TokenProvider interface {
	Token() (*oauth2.Token, error)
	ForceRefresh() (*oauth2.Token, error)
}

// Client fetches activities from the Strava API
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenProvider
	rateLimiter *RateLimiter
	log         *logrus.Entry
}

// NewClient creates a new API client
func NewClient(tokens TokenProvider) *Client {
	return &Client{
		baseURL:     DefaultBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		tokens:      tokens,
		rateLimiter: NewRateLimiter(),
		log:         logrus.WithField("component", "strava"),
	}
}

// NewClientWithBaseURL creates a client against a non-default API root.
// Used by tests to point at a local server.
func NewClientWithBaseURL(tokens TokenProvider, baseURL string) *Client {
	c := NewClient(tokens)
	c.baseURL = baseURL
	return c
}

// FetchActivities issues a single GET on the activities resource. A zero
// `after` fetches the full history; otherwise only activities after the
// cursor are returned. The response body must be {"activities": [...]}.
func (c *Client) FetchActivities(ctx context.Context, after time.Time) ([]Activity, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	if !after.IsZero() {
		params.Set("after", strconv.FormatInt(after.Unix(), 10))
	}

	resp, err := c.get(ctx, "/athlete/activities", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return decodeActivities(resp.Body)
}

// Remaining reports how many requests are left in each rate limit window
func (c *Client) Remaining() (short, daily int) {
	return c.rateLimiter.Remaining()
}

// get performs one authorized request with a single-retry protocol: attempt,
// on 401 force a token refresh and retry once, otherwise fail. The protocol
// never loops.
func (c *Client) get(ctx context.Context, path string, params url.Values) (*http.Response, error) {
	tok, err := c.tokens.Token()
	if err != nil {
		return nil, &AuthError{Err: err}
	}

	resp, err := c.do(ctx, path, params, tok.AccessToken)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode != http.StatusUnauthorized {
		return c.checkStatus(resp)
	}

	// Rejected credential: refresh once and retry once.
	drain(resp)
	c.log.Warn("token rejected, refreshing and retrying once")

	tok, err = c.tokens.ForceRefresh()
	if err != nil {
		return nil, &AuthError{Err: fmt.Errorf("refreshing token: %w", err)}
	}

	resp, err = c.do(ctx, path, params, tok.AccessToken)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		return nil, &AuthError{Status: http.StatusUnauthorized}
	}
	return c.checkStatus(resp)
}

func (c *Client) do(ctx context.Context, path string, params url.Values, accessToken string) (*http.Response, error) {
	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}

	c.rateLimiter.UpdateFromHeaders(resp.Header)
	return resp, nil
}

// checkStatus converts non-success statuses into NetworkErrors
func (c *Client) checkStatus(resp *http.Response) (*http.Response, error) {
	if resp.StatusCode == http.StatusOK {
		return resp, nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	resp.Body.Close()
	return nil, &NetworkError{
		Status: resp.StatusCode,
		Err:    fmt.Errorf("API error %d: %s", resp.StatusCode, string(body)),
	}
}

// decodeActivities parses {"activities": [...]} strictly: a missing or
// non-array activities key is an InvalidResponseError, never an empty result.
func decodeActivities(r io.Reader) ([]Activity, error) {
	var payload struct {
		Activities json.RawMessage `json:"activities"`
	}
	if err := json.NewDecoder(r).Decode(&payload); err != nil {
		return nil, &InvalidResponseError{Reason: err.Error()}
	}
	if len(payload.Activities) == 0 || string(payload.Activities) == "null" {
		return nil, &InvalidResponseError{Reason: "missing activities field"}
	}

	var activities []Activity
	if err := json.Unmarshal(payload.Activities, &activities); err != nil {
		return nil, &InvalidResponseError{Reason: "activities is not an array: " + err.Error()}
	}
	return activities, nil
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck
	resp.Body.Close()
}
