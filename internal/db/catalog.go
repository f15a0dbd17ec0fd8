package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/moodtunes/internal/catalog"
)

var _ catalog.Store = (*DB)(nil)

// storeErr translates a repository error into the catalog's error contract.
func storeErr(op string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return catalog.ErrNotFound
	}
	return fmt.Errorf("%w: %s: %w", catalog.ErrUnavailable, op, err)
}

func (db *DB) FindMoodByName(ctx context.Context, name string) (*catalog.MoodDoc, error) {
	m, err := db.Moods().FindByName(ctx, name)
	if err != nil {
		return nil, storeErr("finding mood", err)
	}
	doc := moodDoc(*m)
	return &doc, nil
}

func (db *DB) FindGenreByName(ctx context.Context, name string) (*catalog.GenreDoc, error) {
	g, err := db.Genres().FindByName(ctx, name)
	if err != nil {
		return nil, storeErr("finding genre", err)
	}
	doc := genreDoc(*g)
	return &doc, nil
}

// RankSongs ranks songs matching spec. Ids that are not UUIDs cannot match
// any row and yield an empty result.
func (db *DB) RankSongs(ctx context.Context, spec catalog.MatchSpec, limit int) ([]catalog.SongSummary, error) {
	f, ok := rankFilter(spec)
	if !ok {
		return []catalog.SongSummary{}, nil
	}

	ranked, err := db.Songs().Rank(ctx, f, limit)
	if err != nil {
		return nil, storeErr("ranking songs", err)
	}

	out := make([]catalog.SongSummary, len(ranked))
	for i, s := range ranked {
		out[i] = catalog.SongSummary{
			Name:     s.Name,
			Artist:   s.ArtistID,
			Image:    s.Image,
			File:     s.File,
			Duration: s.Duration,
		}
	}
	return out, nil
}

func (db *DB) GenreNames(ctx context.Context) ([]string, error) {
	names, err := db.Genres().Names(ctx)
	if err != nil {
		return nil, storeErr("listing genre names", err)
	}
	return names, nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return storeErr("pinging database", err)
	}
	return nil
}

func (db *DB) ListMoods(ctx context.Context) ([]catalog.MoodDoc, error) {
	moods, err := db.Moods().List(ctx)
	if err != nil {
		return nil, storeErr("listing moods", err)
	}
	out := make([]catalog.MoodDoc, len(moods))
	for i, m := range moods {
		out[i] = moodDoc(m)
	}
	return out, nil
}

func (db *DB) ListGenres(ctx context.Context) ([]catalog.GenreDoc, error) {
	genres, err := db.Genres().List(ctx)
	if err != nil {
		return nil, storeErr("listing genres", err)
	}
	out := make([]catalog.GenreDoc, len(genres))
	for i, g := range genres {
		out[i] = genreDoc(g)
	}
	return out, nil
}

// SeedDefaults inserts the default moods and genres that are not present.
func (db *DB) SeedDefaults(ctx context.Context) error {
	moods := make([]Mood, len(catalog.DefaultMoods))
	for i, m := range catalog.DefaultMoods {
		moods[i] = Mood{Name: m.Name, Color: m.Color, Description: m.Description}
	}
	if err := db.Moods().InsertMissing(ctx, moods); err != nil {
		return storeErr("seeding moods", err)
	}

	genres := make([]Genre, len(catalog.DefaultGenres))
	for i, g := range catalog.DefaultGenres {
		genres[i] = Genre{Name: g.Name, Description: g.Description}
	}
	if err := db.Genres().InsertMissing(ctx, genres); err != nil {
		return storeErr("seeding genres", err)
	}
	return nil
}

func (db *DB) UpsertSongs(ctx context.Context, songs []catalog.Song) error {
	rows := make([]Song, len(songs))
	for i, s := range songs {
		row, err := songRow(s)
		if err != nil {
			return fmt.Errorf("converting song %q: %w", s.Name, err)
		}
		rows[i] = row
	}
	if err := db.Songs().UpsertBatch(ctx, rows); err != nil {
		return storeErr("upserting songs", err)
	}
	return nil
}

func moodDoc(m Mood) catalog.MoodDoc {
	return catalog.MoodDoc{
		ID:          m.ID.String(),
		Name:        m.Name,
		Color:       m.Color,
		Description: m.Description,
	}
}

func genreDoc(g Genre) catalog.GenreDoc {
	return catalog.GenreDoc{
		ID:          g.ID.String(),
		Name:        g.Name,
		Description: g.Description,
	}
}

func rankFilter(spec catalog.MatchSpec) (RankFilter, bool) {
	var f RankFilter
	if spec.MoodID != "" {
		id, err := uuid.Parse(spec.MoodID)
		if err != nil {
			return RankFilter{}, false
		}
		f.MoodID = &id
	}
	if spec.GenreID != "" {
		id, err := uuid.Parse(spec.GenreID)
		if err != nil {
			return RankFilter{}, false
		}
		f.GenreID = &id
	}
	return f, true
}

func songRow(s catalog.Song) (Song, error) {
	row := Song{
		ExternalID: optional(s.ExternalID),
		Name:       s.Name,
		ArtistID:   s.ArtistID,
		Image:      optional(s.Image),
		File:       optional(s.File),
		Duration:   s.Duration,
		PlayCount:  s.PlayCount,
	}
	if s.ID != "" {
		id, err := uuid.Parse(s.ID)
		if err != nil {
			return Song{}, fmt.Errorf("parsing song id: %w", err)
		}
		row.ID = id
	}

	var err error
	if row.MoodIDs, err = parseIDs(s.MoodIDs); err != nil {
		return Song{}, fmt.Errorf("parsing mood ids: %w", err)
	}
	if row.GenreIDs, err = parseIDs(s.GenreIDs); err != nil {
		return Song{}, fmt.Errorf("parsing genre ids: %w", err)
	}
	return row, nil
}

func parseIDs(ids []string) ([]uuid.UUID, error) {
	out := make([]uuid.UUID, 0, len(ids))
	for _, s := range ids {
		id, err := uuid.Parse(s)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
