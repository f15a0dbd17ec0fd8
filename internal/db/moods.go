package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/justestif/moodtunes/internal/catalog"
)

// MoodRepository handles mood database operations.
type MoodRepository struct {
	pool *pgxpool.Pool
}

// FindByName retrieves a mood by name, ignoring case and surrounding
// whitespace.
func (r *MoodRepository) FindByName(ctx context.Context, name string) (*Mood, error) {
	query := `
		SELECT id, name, color, description, created_at
		FROM moods
		WHERE lower(btrim(name)) = $1
		ORDER BY ord
		LIMIT 1
	`
	var m Mood
	err := r.pool.QueryRow(ctx, query, catalog.NormalizeName(name)).Scan(
		&m.ID,
		&m.Name,
		&m.Color,
		&m.Description,
		&m.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying mood: %w", err)
	}
	return &m, nil
}

// List returns every mood ordered by name.
func (r *MoodRepository) List(ctx context.Context) ([]Mood, error) {
	query := `
		SELECT id, name, color, description, created_at
		FROM moods
		ORDER BY name, ord
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying moods: %w", err)
	}
	defer rows.Close()

	var moods []Mood
	for rows.Next() {
		var m Mood
		if err := rows.Scan(&m.ID, &m.Name, &m.Color, &m.Description, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning mood: %w", err)
		}
		moods = append(moods, m)
	}
	return moods, rows.Err()
}

// InsertMissing inserts the given moods, skipping any whose name already
// exists.
func (r *MoodRepository) InsertMissing(ctx context.Context, moods []Mood) error {
	if len(moods) == 0 {
		return nil
	}

	query := `
		INSERT INTO moods (id, name, color, description)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[], $4::text[])
		ON CONFLICT DO NOTHING
	`

	ids := make([]uuid.UUID, len(moods))
	names := make([]string, len(moods))
	colors := make([]string, len(moods))
	descriptions := make([]string, len(moods))

	for i, m := range moods {
		ids[i] = m.ID
		if ids[i] == uuid.Nil {
			ids[i] = uuid.New()
		}
		names[i] = strings.TrimSpace(m.Name)
		colors[i] = m.Color
		descriptions[i] = m.Description
	}

	if _, err := r.pool.Exec(ctx, query, ids, names, colors, descriptions); err != nil {
		return fmt.Errorf("inserting moods: %w", err)
	}
	return nil
}
