// Package lastfm fetches top tags for tracks and artists from the Last.fm API.
package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	defaultBaseURL = "https://ws.audioscrobbler.com/2.0/"
	userAgent      = "moodtunes/1.0"
)

// Last.fm API error codes.
const (
	errCodeInvalidAPIKey = 10
	errCodeRateLimited   = 29
)

// Sentinel errors.
var (
	// ErrMissingAPIKey is returned by New for a blank key.
	ErrMissingAPIKey = errors.New("missing Last.fm API key")

	// ErrRateLimited is returned when the API rate limit is exceeded after retries.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrInvalidAPIKey is returned when the API key is invalid.
	ErrInvalidAPIKey = errors.New("invalid API key")
)

// Client is a Last.fm API client. Lookups are memoized for the client's
// lifetime and rate-limited requests are retried with backoff.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	delays     []time.Duration

	mu    sync.RWMutex
	cache map[string][]Tag
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRetryDelays sets the waits between retries of rate-limited requests.
func WithRetryDelays(delays ...time.Duration) Option {
	return func(c *Client) {
		c.delays = delays
	}
}

// New creates a client for apiKey.
func New(apiKey string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		delays:     []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second},
		cache:      make(map[string][]Tag),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TopTags returns the top tags of a track, falling back to the artist's tags
// when the track has none. The result is never nil.
func (c *Client) TopTags(ctx context.Context, artist, track string) ([]Tag, error) {
	tags, err := c.topTags(ctx, url.Values{
		"method": {"track.getTopTags"},
		"artist": {artist},
		"track":  {track},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching track tags: %w", err)
	}
	if len(tags) > 0 {
		return tags, nil
	}

	tags, err = c.topTags(ctx, url.Values{
		"method": {"artist.getTopTags"},
		"artist": {artist},
	})
	if err != nil {
		return nil, fmt.Errorf("fetching artist tags: %w", err)
	}
	return tags, nil
}

func (c *Client) topTags(ctx context.Context, params url.Values) ([]Tag, error) {
	key := cacheKey(params)

	c.mu.RLock()
	cached, ok := c.cache[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	params.Set("autocorrect", "1")
	params.Set("format", "json")
	params.Set("api_key", c.apiKey)

	body, err := c.doRequest(ctx, params)
	if err != nil {
		return nil, err
	}

	var resp topTagsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("parsing top tags response: %w", err)
	}
	tags := resp.TopTags.Tag
	if tags == nil {
		tags = []Tag{}
	}

	c.mu.Lock()
	c.cache[key] = tags
	c.mu.Unlock()
	return tags, nil
}

func cacheKey(params url.Values) string {
	return strings.ToLower(params.Get("method") + "|" + params.Get("artist") + "|" + params.Get("track"))
}

// doRequest performs a GET, retrying rate-limited responses after each of
// the configured delays.
func (c *Client) doRequest(ctx context.Context, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + "?" + params.Encode()

	var lastErr error
	for attempt := 0; attempt <= len(c.delays); attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.delays[attempt-1]):
			}
		}

		body, err := c.doSingleRequest(ctx, reqURL)
		if err == nil {
			return body, nil
		}
		if !errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (c *Client) doSingleRequest(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var apiErr apiError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error != 0 {
		switch apiErr.Error {
		case errCodeRateLimited:
			return nil, ErrRateLimited
		case errCodeInvalidAPIKey:
			return nil, ErrInvalidAPIKey
		default:
			return nil, fmt.Errorf("API error %d: %s", apiErr.Error, apiErr.Message)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return body, nil
}
