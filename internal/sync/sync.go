// Package sync imports Spotify playlists into the song catalog, tagging each
// track with a canonical mood and that mood's preferred genre.
package sync

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/genre"
	"github.com/justestif/moodtunes/internal/logger"
	"github.com/justestif/moodtunes/internal/mood"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/tags"
)

// Source fetches playlist tracks and their audio features.
type Source interface {
	FetchPlaylistTracks(ctx context.Context, playlistID string) ([]spotify.Track, error)
	FetchAudioFeatures(ctx context.Context, trackIDs []string) (map[string]spotify.AudioFeatures, error)
}

// GenreTagger maps tracks to extra catalog genre names, keyed by track id.
type GenreTagger interface {
	Genres(ctx context.Context, tracks []tags.Track, genres []string) (map[string][]string, error)
}

// Store is the catalog access needed for import.
type Store interface {
	catalog.Lookup
	catalog.GenreLister
	catalog.Writer
}

// Service handles importing data from Spotify into the catalog.
type Service struct {
	store   Store
	log     *logger.Logger
	cluster clustering.Config
	tagger  GenreTagger
}

// Option configures a Service.
type Option func(*Service)

// WithClusterConfig sets the clustering parameters used for mood tagging.
func WithClusterConfig(cfg clustering.Config) Option {
	return func(s *Service) {
		s.cluster = cfg
	}
}

// WithGenreTagger adds genres from tagger to each imported song, on top of
// the genre derived from its mood.
func WithGenreTagger(tagger GenreTagger) Option {
	return func(s *Service) {
		s.tagger = tagger
	}
}

// WithLogger sets the service logger.
func WithLogger(log *logger.Logger) Option {
	return func(s *Service) {
		s.log = logger.OrNop(log)
	}
}

// New creates a new import service.
func New(store Store, opts ...Option) *Service {
	s := &Service{
		store:   store,
		log:     logger.Nop(),
		cluster: clustering.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ImportResult contains the result of an import.
type ImportResult struct {
	Fetched  int
	Imported int
	Untagged int // imported without a mood for lack of audio features
	Clusters int
	ByMood   map[mood.Mood]int

	GenreTagged int // songs that received genres from the tagger
}

// labels are the catalog ids resolved for one mood.
type labels struct {
	moodIDs  []string
	genreIDs []string
}

// ImportPlaylist fetches a playlist, tags its tracks with moods and upserts
// them into the catalog keyed by Spotify track id. Moods and genres missing
// from the catalog are skipped, so seed defaults first.
func (s *Service) ImportPlaylist(ctx context.Context, source Source, playlistID string) (*ImportResult, error) {
	tracks, err := source.FetchPlaylistTracks(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("fetching playlist: %w", err)
	}

	result := &ImportResult{Fetched: len(tracks), ByMood: make(map[mood.Mood]int)}
	if len(tracks) == 0 {
		return result, nil
	}

	ids := make([]string, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	features, err := source.FetchAudioFeatures(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("fetching audio features: %w", err)
	}

	tagged := clustering.TagMoods(toClusteringTracks(tracks, features), s.cluster)
	result.Clusters = tagged.Clusters
	result.Untagged = len(tagged.Untagged)

	moodByTrack := make(map[string]mood.Mood, len(tagged.Tagged))
	for _, tg := range tagged.Tagged {
		moodByTrack[tg.Track.ID] = tg.Mood
	}

	extra, err := s.tagGenres(ctx, tracks)
	if err != nil {
		return nil, err
	}

	resolved := make(map[mood.Mood]labels)
	genreIDs := make(map[string]string)
	songs := make([]catalog.Song, 0, len(tracks))
	for _, t := range tracks {
		song := toSong(t)
		if m, ok := moodByTrack[t.ID]; ok {
			l, ok := resolved[m]
			if !ok {
				l, err = s.resolve(ctx, m)
				if err != nil {
					return nil, err
				}
				resolved[m] = l
			}
			song.MoodIDs = l.moodIDs
			song.GenreIDs = slices.Clone(l.genreIDs)
			result.ByMood[m]++
		}

		if names := extra[t.ID]; len(names) > 0 {
			before := len(song.GenreIDs)
			for _, name := range names {
				id, err := s.genreID(ctx, genreIDs, name)
				if err != nil {
					return nil, err
				}
				if id != "" && !slices.Contains(song.GenreIDs, id) {
					song.GenreIDs = append(song.GenreIDs, id)
				}
			}
			if len(song.GenreIDs) > before {
				result.GenreTagged++
			}
		}
		songs = append(songs, song)
	}

	if err := s.store.UpsertSongs(ctx, songs); err != nil {
		return nil, fmt.Errorf("upserting songs: %w", err)
	}
	result.Imported = len(songs)

	s.log.Info("imported playlist",
		"playlist", playlistID,
		"songs", result.Imported,
		"untagged", result.Untagged,
		"clusters", result.Clusters,
		"genre_tagged", result.GenreTagged,
	)
	return result, nil
}

// tagGenres asks the tagger for extra genre names per track.
func (s *Service) tagGenres(ctx context.Context, tracks []spotify.Track) (map[string][]string, error) {
	if s.tagger == nil {
		return nil, nil
	}

	names, err := s.store.GenreNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing genres: %w", err)
	}

	in := make([]tags.Track, len(tracks))
	for i, t := range tracks {
		in[i] = tags.Track{ID: t.ID, Name: t.Name, Artist: primaryArtist(t.Artist)}
	}
	extra, err := s.tagger.Genres(ctx, in, names)
	if err != nil {
		return nil, fmt.Errorf("tagging genres: %w", err)
	}
	return extra, nil
}

// genreID resolves a genre name through cache. Unknown names resolve to "".
func (s *Service) genreID(ctx context.Context, cache map[string]string, name string) (string, error) {
	if id, ok := cache[name]; ok {
		return id, nil
	}
	g, err := s.store.FindGenreByName(ctx, name)
	switch {
	case err == nil:
		cache[name] = g.ID
	case errors.Is(err, catalog.ErrNotFound):
		cache[name] = ""
	default:
		return "", fmt.Errorf("finding genre %q: %w", name, err)
	}
	return cache[name], nil
}

// resolve looks up the catalog ids of m and its preferred genre.
func (s *Service) resolve(ctx context.Context, m mood.Mood) (labels, error) {
	var l labels

	md, err := s.store.FindMoodByName(ctx, m.String())
	switch {
	case err == nil:
		l.moodIDs = []string{md.ID}
	case errors.Is(err, catalog.ErrNotFound):
		s.log.Warn("mood not in catalog, run seed first", "mood", m)
	default:
		return labels{}, fmt.Errorf("finding mood %q: %w", m, err)
	}

	g := genre.Resolve(m)
	gd, err := s.store.FindGenreByName(ctx, g.String())
	switch {
	case err == nil:
		l.genreIDs = []string{gd.ID}
	case errors.Is(err, catalog.ErrNotFound):
		s.log.Warn("genre not in catalog, run seed first", "genre", g)
	default:
		return labels{}, fmt.Errorf("finding genre %q: %w", g, err)
	}
	return l, nil
}

func toClusteringTracks(tracks []spotify.Track, features map[string]spotify.AudioFeatures) []clustering.Track {
	out := make([]clustering.Track, len(tracks))
	for i, t := range tracks {
		out[i] = clustering.Track{ID: t.ID}
		if f, ok := features[t.ID]; ok {
			out[i].Energy = &f.Energy
			out[i].Valence = &f.Valence
			out[i].Danceability = &f.Danceability
			out[i].Acousticness = &f.Acousticness
		}
	}
	return out
}

// primaryArtist returns the first of a comma-joined artist list.
func primaryArtist(artists string) string {
	first, _, _ := strings.Cut(artists, ",")
	return strings.TrimSpace(first)
}

func toSong(t spotify.Track) catalog.Song {
	return catalog.Song{
		ExternalID: t.ID,
		Name:       t.Name,
		ArtistID:   t.Artist,
		Image:      t.Image,
		File:       t.PreviewURL,
		Duration:   t.DurationSec,
		PlayCount:  t.Popularity,
	}
}
