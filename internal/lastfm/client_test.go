package lastfm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func tagsBody(names ...string) map[string]any {
	tags := make([]Tag, len(names))
	for i, n := range names {
		tags[i] = Tag{Name: n, Count: 100 - i}
	}
	return map[string]any{"toptags": map[string]any{"tag": tags}}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New("test-api-key",
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()),
		WithRetryDelays(time.Millisecond, time.Millisecond, time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return c
}

func TestTopTags(t *testing.T) {
	tests := []struct {
		name           string
		trackResponse  any
		artistResponse any
		wantTags       []string
		wantErr        error
	}{
		{
			name:          "track has tags",
			trackResponse: tagsBody("alternative", "rock"),
			wantTags:      []string{"alternative", "rock"},
		},
		{
			name:           "track empty falls back to artist",
			trackResponse:  tagsBody(),
			artistResponse: tagsBody("pop", "dance"),
			wantTags:       []string{"pop", "dance"},
		},
		{
			name:           "both empty returns empty slice",
			trackResponse:  tagsBody(),
			artistResponse: tagsBody(),
			wantTags:       []string{},
		},
		{
			name:          "invalid API key",
			trackResponse: apiError{Error: 10, Message: "Invalid API key"},
			wantErr:       ErrInvalidAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				q := r.URL.Query()
				if q.Get("api_key") != "test-api-key" || q.Get("format") != "json" {
					t.Errorf("missing request params: %s", r.URL.RawQuery)
				}

				var resp any
				switch q.Get("method") {
				case "track.getTopTags":
					resp = tt.trackResponse
				case "artist.getTopTags":
					resp = tt.artistResponse
				default:
					t.Errorf("unexpected method: %s", q.Get("method"))
				}
				w.Header().Set("Content-Type", "application/json")
				_ = json.NewEncoder(w).Encode(resp)
			})

			tags, err := c.TopTags(context.Background(), "Radiohead", "Creep")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("TopTags() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}
			if tags == nil {
				t.Fatal("TopTags() returned nil slice")
			}
			if len(tags) != len(tt.wantTags) {
				t.Fatalf("TopTags() got %d tags, want %d", len(tags), len(tt.wantTags))
			}
			for i, tag := range tags {
				if tag.Name != tt.wantTags[i] {
					t.Errorf("tag[%d] = %s, want %s", i, tag.Name, tt.wantTags[i])
				}
			}
		})
	}
}

func TestTopTags_Caching(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_ = json.NewEncoder(w).Encode(tagsBody("rock"))
	})

	for i := 0; i < 2; i++ {
		tags, err := c.TopTags(context.Background(), "Artist", "Track")
		if err != nil || len(tags) != 1 {
			t.Fatalf("TopTags() = %v, %v", tags, err)
		}
	}
	if _, err := c.TopTags(context.Background(), "ARTIST", "track"); err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}

	if n := requests.Load(); n != 1 {
		t.Errorf("expected 1 request, got %d", n)
	}
}

func TestTopTags_RateLimitRetry(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) < 3 {
			_ = json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
			return
		}
		_ = json.NewEncoder(w).Encode(tagsBody("rock"))
	})

	tags, err := c.TopTags(context.Background(), "Artist", "Track")
	if err != nil {
		t.Fatalf("TopTags() error = %v", err)
	}
	if len(tags) != 1 || tags[0].Name != "rock" {
		t.Errorf("unexpected tags %v", tags)
	}
	if n := requests.Load(); n != 3 {
		t.Errorf("expected 3 requests, got %d", n)
	}
}

func TestTopTags_RateLimitExhausted(t *testing.T) {
	var requests atomic.Int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		_ = json.NewEncoder(w).Encode(apiError{Error: 29, Message: "Rate limit exceeded"})
	})

	_, err := c.TopTags(context.Background(), "Artist", "Track")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("TopTags() error = %v, want ErrRateLimited", err)
	}
	if n := requests.Load(); n != 4 {
		t.Errorf("expected 4 requests, got %d", n)
	}
}

func TestTopTags_BadStatus(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.TopTags(context.Background(), "Artist", "Track"); err == nil {
		t.Error("expected error for 502 response")
	}
}

func TestNew(t *testing.T) {
	if _, err := New("  "); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("New(blank) error = %v, want ErrMissingAPIKey", err)
	}

	c, err := New(" key ")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if c.apiKey != "key" || c.baseURL != defaultBaseURL || c.httpClient == nil || len(c.delays) != 3 {
		t.Errorf("unexpected client %+v", c)
	}
}
