// Package catalogtest provides an in-memory catalog.Store for tests.
package catalogtest

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/justestif/moodtunes/internal/catalog"
)

// Store is an in-memory catalog.Store. Insertion order is the store's natural
// order. Setting Err makes every operation fail with an error wrapping
// catalog.ErrUnavailable.
type Store struct {
	mu     sync.RWMutex
	moods  []catalog.MoodDoc
	genres []catalog.GenreDoc
	songs  []catalog.Song
	nextID int

	Err error

	calls atomic.Int32
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

// Calls returns how many store operations have been invoked.
func (s *Store) Calls() int {
	return int(s.calls.Load())
}

func (s *Store) begin() error {
	s.calls.Add(1)
	if s.Err != nil {
		return fmt.Errorf("%w: %w", catalog.ErrUnavailable, s.Err)
	}
	return nil
}

func (s *Store) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

// AddMood inserts a mood and returns its id.
func (s *Store) AddMood(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID("mood")
	s.moods = append(s.moods, catalog.MoodDoc{ID: id, Name: name})
	return id
}

// AddGenre inserts a genre and returns its id.
func (s *Store) AddGenre(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID("genre")
	s.genres = append(s.genres, catalog.GenreDoc{ID: id, Name: name})
	return id
}

// AddSong inserts a song, assigning an id if it has none.
func (s *Store) AddSong(song catalog.Song) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if song.ID == "" {
		song.ID = s.newID("song")
	}
	s.songs = append(s.songs, song)
}

// Songs returns a copy of every stored song.
func (s *Store) Songs() []catalog.Song {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.songs)
}

func (s *Store) FindMoodByName(ctx context.Context, name string) (*catalog.MoodDoc, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := catalog.NormalizeName(name)
	for _, m := range s.moods {
		if catalog.NormalizeName(m.Name) == key {
			m := m
			return &m, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) FindGenreByName(ctx context.Context, name string) (*catalog.GenreDoc, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	key := catalog.NormalizeName(name)
	for _, g := range s.genres {
		if catalog.NormalizeName(g.Name) == key {
			g := g
			return &g, nil
		}
	}
	return nil, catalog.ErrNotFound
}

func (s *Store) RankSongs(ctx context.Context, spec catalog.MatchSpec, limit int) ([]catalog.SongSummary, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var matched []catalog.Song
	for _, song := range s.songs {
		if spec.Matches(song) {
			matched = append(matched, song)
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(matched, func(a, b catalog.Song) int {
		return b.PlayCount - a.PlayCount
	})
	if limit >= 0 && len(matched) > limit {
		matched = matched[:limit]
	}

	out := make([]catalog.SongSummary, len(matched))
	for i, song := range matched {
		out[i] = song.Summary()
	}
	return out, nil
}

func (s *Store) GenreNames(ctx context.Context) ([]string, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.genres))
	for i, g := range s.genres {
		names[i] = g.Name
	}
	return names, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.begin()
}

func (s *Store) ListMoods(ctx context.Context) ([]catalog.MoodDoc, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := slices.Clone(s.moods)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b catalog.MoodDoc) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) ListGenres(ctx context.Context) ([]catalog.GenreDoc, error) {
	if err := s.begin(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	out := slices.Clone(s.genres)
	s.mu.RUnlock()
	slices.SortFunc(out, func(a, b catalog.GenreDoc) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (s *Store) SeedDefaults(ctx context.Context) error {
	if err := s.begin(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range catalog.DefaultMoods {
		if !slices.ContainsFunc(s.moods, sameMood(m.Name)) {
			m.ID = s.newID("mood")
			s.moods = append(s.moods, m)
		}
	}
	for _, g := range catalog.DefaultGenres {
		if !slices.ContainsFunc(s.genres, sameGenre(g.Name)) {
			g.ID = s.newID("genre")
			s.genres = append(s.genres, g)
		}
	}
	return nil
}

func (s *Store) UpsertSongs(ctx context.Context, songs []catalog.Song) error {
	if err := s.begin(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, song := range songs {
		i := slices.IndexFunc(s.songs, func(existing catalog.Song) bool {
			return song.ExternalID != "" && existing.ExternalID == song.ExternalID
		})
		if i >= 0 {
			song.ID = s.songs[i].ID
			s.songs[i] = song
			continue
		}
		if song.ID == "" {
			song.ID = s.newID("song")
		}
		s.songs = append(s.songs, song)
	}
	return nil
}

func (s *Store) Close(ctx context.Context) error {
	return nil
}

func sameMood(name string) func(catalog.MoodDoc) bool {
	key := catalog.NormalizeName(name)
	return func(m catalog.MoodDoc) bool { return catalog.NormalizeName(m.Name) == key }
}

func sameGenre(name string) func(catalog.GenreDoc) bool {
	key := catalog.NormalizeName(name)
	return func(g catalog.GenreDoc) bool { return catalog.NormalizeName(g.Name) == key }
}

var _ catalog.Store = (*Store)(nil)
