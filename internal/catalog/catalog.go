// Package catalog defines the song catalog documents and the store contracts
// the recommendation pipeline reads through.
package catalog

import (
	"context"
	"errors"
	"slices"
	"strings"
)

// Common errors.
var (
	// ErrNotFound is returned by name lookups that match no document.
	ErrNotFound = errors.New("not found")

	// ErrUnavailable marks failures of the backing store itself.
	ErrUnavailable = errors.New("store unavailable")
)

// MoodDoc is a persisted mood.
type MoodDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Color       string `json:"color,omitempty"`
	Description string `json:"description,omitempty"`
}

// GenreDoc is a persisted genre.
type GenreDoc struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Song is a persisted song. MoodIDs and GenreIDs hold MoodDoc and GenreDoc ids.
type Song struct {
	ID         string
	ExternalID string // source id for imported songs, e.g. a Spotify track id
	Name       string
	ArtistID   string
	Image      string
	File       string
	Duration   int // seconds
	PlayCount  int
	MoodIDs    []string
	GenreIDs   []string
}

// SongSummary is the API-facing projection of a Song.
type SongSummary struct {
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	Image    string `json:"image"`
	File     string `json:"file"`
	Duration int    `json:"duration"`
}

// Summary projects s to its API shape.
func (s Song) Summary() SongSummary {
	return SongSummary{
		Name:     s.Name,
		Artist:   s.ArtistID,
		Image:    s.Image,
		File:     s.File,
		Duration: s.Duration,
	}
}

// MatchSpec lists the membership clauses a song must satisfy. An empty id
// means the clause is absent; an empty MatchSpec matches every song.
type MatchSpec struct {
	MoodID  string
	GenreID string
}

// IsEmpty reports whether the spec has no clauses.
func (m MatchSpec) IsEmpty() bool {
	return m.MoodID == "" && m.GenreID == ""
}

// Matches reports whether s satisfies every present clause.
func (m MatchSpec) Matches(s Song) bool {
	if m.MoodID != "" && !slices.Contains(s.MoodIDs, m.MoodID) {
		return false
	}
	if m.GenreID != "" && !slices.Contains(s.GenreIDs, m.GenreID) {
		return false
	}
	return true
}

// NormalizeName folds a mood or genre name for comparison: surrounding
// whitespace is removed and case is ignored.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Lookup resolves names to documents. Implementations return ErrNotFound
// when nothing matches NormalizeName(name).
type Lookup interface {
	FindMoodByName(ctx context.Context, name string) (*MoodDoc, error)
	FindGenreByName(ctx context.Context, name string) (*GenreDoc, error)
}

// Ranker returns songs matching spec ordered by play count, highest first,
// ties in store order, at most limit of them.
type Ranker interface {
	RankSongs(ctx context.Context, spec MatchSpec, limit int) ([]SongSummary, error)
}

// GenreLister returns every genre name in the store's natural order.
type GenreLister interface {
	GenreNames(ctx context.Context) ([]string, error)
}

// Pinger checks store connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Directory lists moods and genres for browsing, sorted by name.
type Directory interface {
	ListMoods(ctx context.Context) ([]MoodDoc, error)
	ListGenres(ctx context.Context) ([]GenreDoc, error)
}

// Writer populates the catalog.
type Writer interface {
	// SeedDefaults inserts the default moods and genres that are missing.
	SeedDefaults(ctx context.Context) error
	// UpsertSongs inserts or updates songs keyed by ExternalID.
	UpsertSongs(ctx context.Context, songs []Song) error
}

// Store is the full catalog contract implemented by each backend.
type Store interface {
	Lookup
	Ranker
	GenreLister
	Pinger
	Directory
	Writer
	Close(ctx context.Context) error
}
