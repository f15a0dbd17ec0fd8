// Package recommend resolves mood and genre names against the catalog and
// ranks the matching songs by play count.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/logger"
)

// DefaultLimit is the number of songs returned when no limit is given.
const DefaultLimit = 10

// Store is the part of the catalog the ranker reads.
type Store interface {
	catalog.Lookup
	catalog.Ranker
}

// Service ranks catalog songs for a mood and preferred genre.
type Service struct {
	store Store
	log   *logger.Logger
	limit int
}

// Option configures a Service.
type Option func(*Service)

// WithDefaultLimit sets the limit used when Recommend is called with limit <= 0.
func WithDefaultLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

// WithLogger sets the logger used to report recovered store failures.
func WithLogger(l *logger.Logger) Option {
	return func(s *Service) {
		s.log = logger.OrNop(l)
	}
}

// New creates a ranking service over store.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store: store,
		log:   logger.Nop(),
		limit: DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns up to limit songs for the given mood and genre names,
// highest play count first. Either name may be empty.
//
// Each name that resolves adds a membership clause; names that are empty or
// unknown are left out, so with nothing resolved every song is ranked. Store
// failures are logged and yield an empty, non-nil slice.
func (s *Service) Recommend(ctx context.Context, moodName, genreName string, limit int) []catalog.SongSummary {
	if limit <= 0 {
		limit = s.limit
	}

	songs, err := s.rank(ctx, moodName, genreName, limit)
	if err != nil {
		s.log.Warn("recommendation query failed",
			"mood", moodName,
			"genre", genreName,
			"error", err,
		)
		return []catalog.SongSummary{}
	}
	if songs == nil {
		songs = []catalog.SongSummary{}
	}
	return songs
}

func (s *Service) rank(ctx context.Context, moodName, genreName string, limit int) ([]catalog.SongSummary, error) {
	spec, err := s.MatchSpec(ctx, moodName, genreName)
	if err != nil {
		return nil, err
	}

	songs, err := s.store.RankSongs(ctx, spec, limit)
	if err != nil {
		return nil, fmt.Errorf("ranking songs: %w", err)
	}
	if len(songs) > limit {
		songs = songs[:limit]
	}
	return songs, nil
}

// MatchSpec resolves the given names into membership clauses. A name that is
// blank or matches no document contributes no clause; any other lookup error
// is returned.
func (s *Service) MatchSpec(ctx context.Context, moodName, genreName string) (catalog.MatchSpec, error) {
	var spec catalog.MatchSpec

	if strings.TrimSpace(moodName) != "" {
		doc, err := s.store.FindMoodByName(ctx, moodName)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
		case err != nil:
			return spec, fmt.Errorf("looking up mood %q: %w", moodName, err)
		default:
			spec.MoodID = doc.ID
		}
	}

	if strings.TrimSpace(genreName) != "" {
		doc, err := s.store.FindGenreByName(ctx, genreName)
		switch {
		case errors.Is(err, catalog.ErrNotFound):
		case err != nil:
			return spec, fmt.Errorf("looking up genre %q: %w", genreName, err)
		default:
			spec.GenreID = doc.ID
		}
	}

	return spec, nil
}
