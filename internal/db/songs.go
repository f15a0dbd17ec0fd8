package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SongRepository handles song database operations.
type SongRepository struct {
	pool *pgxpool.Pool
}

// RankFilter restricts a ranking query to songs tagged with a mood and/or a
// genre. A nil id drops that clause.
type RankFilter struct {
	MoodID  *uuid.UUID
	GenreID *uuid.UUID
}

// buildRankQuery returns the SQL and arguments for a ranking query. Songs are
// ordered by play count, highest first, ties in insertion order. A negative
// limit means no limit.
func buildRankQuery(f RankFilter, limit int) (string, []any) {
	var (
		b     strings.Builder
		where []string
		args  []any
	)

	b.WriteString("SELECT name, artist_id, COALESCE(image, ''), COALESCE(file, ''), duration FROM songs")

	if f.MoodID != nil {
		args = append(args, *f.MoodID)
		where = append(where, fmt.Sprintf("mood_ids @> ARRAY[$%d::uuid]", len(args)))
	}
	if f.GenreID != nil {
		args = append(args, *f.GenreID)
		where = append(where, fmt.Sprintf("genre_ids @> ARRAY[$%d::uuid]", len(args)))
	}
	if len(where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(where, " AND "))
	}

	b.WriteString(" ORDER BY play_count DESC, ord")

	if limit >= 0 {
		args = append(args, limit)
		fmt.Fprintf(&b, " LIMIT $%d", len(args))
	}
	return b.String(), args
}

// Rank returns up to limit songs matching f, most played first.
func (r *SongRepository) Rank(ctx context.Context, f RankFilter, limit int) ([]RankedSong, error) {
	query, args := buildRankQuery(f, limit)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying ranked songs: %w", err)
	}
	defer rows.Close()

	songs := []RankedSong{}
	for rows.Next() {
		var s RankedSong
		if err := rows.Scan(&s.Name, &s.ArtistID, &s.Image, &s.File, &s.Duration); err != nil {
			return nil, fmt.Errorf("scanning ranked song: %w", err)
		}
		songs = append(songs, s)
	}
	return songs, rows.Err()
}

const upsertSongQuery = `
	INSERT INTO songs (id, external_id, name, artist_id, image, file, duration, play_count, mood_ids, genre_ids)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (external_id) DO UPDATE SET
		name = EXCLUDED.name,
		artist_id = EXCLUDED.artist_id,
		image = EXCLUDED.image,
		file = EXCLUDED.file,
		duration = EXCLUDED.duration,
		play_count = EXCLUDED.play_count,
		mood_ids = EXCLUDED.mood_ids,
		genre_ids = EXCLUDED.genre_ids,
		updated_at = NOW()
`

// UpsertBatch inserts or updates songs keyed by external id in a single
// round trip. Songs without an external id are always inserted.
func (r *SongRepository) UpsertBatch(ctx context.Context, songs []Song) error {
	if len(songs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, s := range songs {
		id := s.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		batch.Queue(upsertSongQuery,
			id,
			s.ExternalID,
			s.Name,
			s.ArtistID,
			s.Image,
			s.File,
			s.Duration,
			s.PlayCount,
			nonNilIDs(s.MoodIDs),
			nonNilIDs(s.GenreIDs),
		)
	}

	if err := r.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("batch upserting songs: %w", err)
	}
	return nil
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
