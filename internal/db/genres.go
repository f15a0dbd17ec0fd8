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

// GenreRepository handles genre database operations.
type GenreRepository struct {
	pool *pgxpool.Pool
}

// FindByName retrieves a genre by name, ignoring case and surrounding
// whitespace.
func (r *GenreRepository) FindByName(ctx context.Context, name string) (*Genre, error) {
	query := `
		SELECT id, name, description, created_at
		FROM genres
		WHERE lower(btrim(name)) = $1
		ORDER BY ord
		LIMIT 1
	`
	var g Genre
	err := r.pool.QueryRow(ctx, query, catalog.NormalizeName(name)).Scan(
		&g.ID,
		&g.Name,
		&g.Description,
		&g.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying genre: %w", err)
	}
	return &g, nil
}

// List returns every genre ordered by name.
func (r *GenreRepository) List(ctx context.Context) ([]Genre, error) {
	query := `
		SELECT id, name, description, created_at
		FROM genres
		ORDER BY name, ord
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying genres: %w", err)
	}
	defer rows.Close()

	var genres []Genre
	for rows.Next() {
		var g Genre
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

// Names returns every genre name in insertion order.
func (r *GenreRepository) Names(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT name FROM genres ORDER BY ord`)
	if err != nil {
		return nil, fmt.Errorf("querying genre names: %w", err)
	}
	names, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning genre names: %w", err)
	}
	return names, nil
}

// InsertMissing inserts the given genres, skipping any whose name already
// exists.
func (r *GenreRepository) InsertMissing(ctx context.Context, genres []Genre) error {
	if len(genres) == 0 {
		return nil
	}

	query := `
		INSERT INTO genres (id, name, description)
		SELECT * FROM unnest($1::uuid[], $2::text[], $3::text[])
		ON CONFLICT DO NOTHING
	`

	ids := make([]uuid.UUID, len(genres))
	names := make([]string, len(genres))
	descriptions := make([]string, len(genres))

	for i, g := range genres {
		ids[i] = g.ID
		if ids[i] == uuid.Nil {
			ids[i] = uuid.New()
		}
		names[i] = strings.TrimSpace(g.Name)
		descriptions[i] = g.Description
	}

	if _, err := r.pool.Exec(ctx, query, ids, names, descriptions); err != nil {
		return fmt.Errorf("inserting genres: %w", err)
	}
	return nil
}
