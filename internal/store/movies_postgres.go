package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresMovieStore is the production Postgres-backed implementation.
type PostgresMovieStore struct {
	pool *pgxpool.Pool
}

func NewPostgresMovieStore(pool *pgxpool.Pool) *PostgresMovieStore {
	return &PostgresMovieStore{pool: pool}
}

func (s *PostgresMovieStore) Get(ctx context.Context, id int64) (Movie, error) {
	const q = `
SELECT id, title, overview, poster_path, backdrop_path, release_date,
       vote_average, popularity, genres, synced_at
FROM movies WHERE id = $1`

	var m Movie
	var genresJSON []byte
	err := s.pool.QueryRow(ctx, q, id).Scan(
		&m.ID, &m.Title, &m.Overview, &m.PosterPath, &m.BackdropPath,
		&m.ReleaseDate, &m.VoteAverage, &m.Popularity, &genresJSON, &m.SyncedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Movie{}, ErrNotFound
		}
		return Movie{}, fmt.Errorf("get movie %d: %w", id, err)
	}
	_ = json.Unmarshal(genresJSON, &m.Genres)
	return m, nil
}

func (s *PostgresMovieStore) Upsert(ctx context.Context, m Movie) error {
	genresJSON, _ := json.Marshal(m.Genres)

	const q = `
INSERT INTO movies (id, title, overview, poster_path, backdrop_path, release_date,
                    vote_average, popularity, genres, synced_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
ON CONFLICT (id) DO UPDATE SET
  title = EXCLUDED.title,
  overview = EXCLUDED.overview,
  poster_path = EXCLUDED.poster_path,
  backdrop_path = EXCLUDED.backdrop_path,
  release_date = EXCLUDED.release_date,
  vote_average = EXCLUDED.vote_average,
  popularity = EXCLUDED.popularity,
  genres = EXCLUDED.genres,
  synced_at = EXCLUDED.synced_at`

	_, err := s.pool.Exec(ctx, q,
		m.ID, m.Title, m.Overview, m.PosterPath, m.BackdropPath, m.ReleaseDate,
		m.VoteAverage, m.Popularity, genresJSON, m.SyncedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert movie %d: %w", m.ID, err)
	}
	return nil
}
