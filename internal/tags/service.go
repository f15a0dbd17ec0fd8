// Package tags matches Last.fm top tags of tracks against catalog genre names.
package tags

import (
	"context"
	"strings"
	"sync"
	"unicode"

	"github.com/justestif/moodtunes/internal/lastfm"
	"github.com/justestif/moodtunes/internal/logger"
)

// Defaults.
const (
	DefaultConcurrency = 5
	DefaultMaxTags     = 5
)

// aliases folds common tag spellings onto a genre key.
var aliases = map[string]string{
	"rnb":                  "rb",
	"rhythmandblues":       "rb",
	"lofihiphop":           "lofi",
	"electronicdancemusic": "edm",
	"ballads":              "ballad",
	"hiphoprap":            "hiphop",
}

// Track is the minimal track info needed for a tag lookup.
type Track struct {
	ID     string
	Name   string
	Artist string
}

// TagFetcher abstracts the Last.fm client for testing.
type TagFetcher interface {
	TopTags(ctx context.Context, artist, track string) ([]lastfm.Tag, error)
}

// Service looks up track tags concurrently and maps them to genres.
type Service struct {
	fetcher     TagFetcher
	concurrency int
	maxTags     int
	log         *logger.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithConcurrency sets the number of concurrent tag fetch operations.
func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithMaxTags sets how many of a track's top tags are considered.
func WithMaxTags(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxTags = n
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		s.log = logger.OrNop(log)
	}
}

// New creates a tag service.
func New(fetcher TagFetcher, opts ...Option) *Service {
	s := &Service{
		fetcher:     fetcher,
		concurrency: DefaultConcurrency,
		maxTags:     DefaultMaxTags,
		log:         logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Genres returns, per track id, the names in genres matching one of the
// track's top tags, in tag rank order. Tracks whose lookup fails are logged
// and left out. On cancellation the partial result is returned with ctx.Err().
func (s *Service) Genres(ctx context.Context, tracks []Track, genres []string) (map[string][]string, error) {
	out := make(map[string][]string)
	if len(tracks) == 0 || len(genres) == 0 {
		return out, nil
	}

	index := make(map[string]string, len(genres))
	for _, g := range genres {
		if key := genreKey(g); key != "" {
			if _, dup := index[key]; !dup {
				index[key] = g
			}
		}
	}

	results := s.fetchAll(ctx, tracks)
	for i, r := range results {
		t := tracks[i]
		if r.err != nil {
			if ctx.Err() == nil {
				s.log.Warn("fetching track tags failed", "track", t.ID, "artist", t.Artist, "error", r.err)
			}
			continue
		}
		if matched := match(r.tags, index, s.maxTags); len(matched) > 0 {
			out[t.ID] = matched
		}
	}
	return out, ctx.Err()
}

type fetchResult struct {
	tags []lastfm.Tag
	err  error
}

// fetchAll fetches tags with a bounded worker pool. Results keep input order.
func (s *Service) fetchAll(ctx context.Context, tracks []Track) []fetchResult {
	results := make([]fetchResult, len(tracks))

	workCh := make(chan int, len(tracks))
	for i := range tracks {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for i := 0; i < min(s.concurrency, len(tracks)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range workCh {
				if err := ctx.Err(); err != nil {
					results[idx] = fetchResult{err: err}
					continue
				}
				t := tracks[idx]
				tags, err := s.fetcher.TopTags(ctx, t.Artist, t.Name)
				results[idx] = fetchResult{tags: tags, err: err}
			}
		}()
	}
	wg.Wait()
	return results
}

// match returns the genres hit by the first maxTags tags, without repeats.
func match(tags []lastfm.Tag, index map[string]string, maxTags int) []string {
	var out []string
	seen := make(map[string]bool)
	for i, tag := range tags {
		if i >= maxTags {
			break
		}
		g, ok := index[genreKey(tag.Name)]
		if !ok || seen[g] {
			continue
		}
		seen[g] = true
		out = append(out, g)
	}
	return out
}

// genreKey folds a tag or genre name to lowercase letters and digits, so
// "Hip-Hop", "hip hop" and "HipHop" compare equal.
func genreKey(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	key := b.String()
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}
