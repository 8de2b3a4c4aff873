package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reviewColumns = "id::text, rating, content, user_id::text, movie_id, created_at, updated_at"

// PostgresReviewStore is the production Postgres-backed implementation.
type PostgresReviewStore struct {
	pool *pgxpool.Pool
}

func NewPostgresReviewStore(pool *pgxpool.Pool) *PostgresReviewStore {
	return &PostgresReviewStore{pool: pool}
}

func (s *PostgresReviewStore) Get(ctx context.Context, id string) (Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1::uuid`
	return s.queryOne(ctx, q, id)
}

func (s *PostgresReviewStore) GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (Review, error) {
	q := `SELECT ` + reviewColumns + ` FROM reviews WHERE user_id = $1::uuid AND movie_id = $2 LIMIT 1`
	return s.queryOne(ctx, q, userID, movieID)
}

func (s *PostgresReviewStore) ListByMovie(ctx context.Context, movieID int64, limit, offset int) ([]Review, error) {
	q := `SELECT ` + reviewColumns + `
FROM reviews WHERE movie_id = $1
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	return s.queryMany(ctx, q, movieID, limit, offset)
}

func (s *PostgresReviewStore) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, error) {
	q := `SELECT ` + reviewColumns + `
FROM reviews WHERE user_id = $1::uuid
ORDER BY created_at DESC, id DESC
LIMIT $2 OFFSET $3`
	return s.queryMany(ctx, q, userID, limit, offset)
}

func (s *PostgresReviewStore) AverageRating(ctx context.Context, movieID int64) (*float64, error) {
	// AVG over zero rows is NULL, which maps to a nil average.
	var avg *float64
	err := s.pool.QueryRow(ctx,
		`SELECT AVG(rating)::float8 FROM reviews WHERE movie_id = $1`, movieID,
	).Scan(&avg)
	if err != nil {
		return nil, fmt.Errorf("average rating for movie %d: %w", movieID, err)
	}
	return avg, nil
}

func (s *PostgresReviewStore) Create(ctx context.Context, p CreateReviewParams) (Review, error) {
	q := `
INSERT INTO reviews (id, rating, content, user_id, movie_id)
VALUES ($1, $2, $3, $4::uuid, $5)
RETURNING ` + reviewColumns

	var r Review
	err := s.pool.QueryRow(ctx, q, uuid.New(), p.Rating, p.Content, p.UserID, p.MovieID).Scan(
		&r.ID, &r.Rating, &r.Content, &r.UserID, &r.MovieID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return Review{}, ErrConflict
		}
		return Review{}, fmt.Errorf("create review: %w", err)
	}
	return r, nil
}

func (s *PostgresReviewStore) Update(ctx context.Context, id string, p UpdateReviewParams) (Review, error) {
	sets := []string{"updated_at = now()"}
	args := []any{id}

	if p.Rating != nil {
		args = append(args, *p.Rating)
		sets = append(sets, fmt.Sprintf("rating = $%d", len(args)))
	}
	if p.Content.Set {
		if p.Content.Value != nil {
			args = append(args, *p.Content.Value)
			sets = append(sets, fmt.Sprintf("content = $%d", len(args)))
		} else {
			sets = append(sets, "content = NULL")
		}
	}

	q := `UPDATE reviews SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1::uuid RETURNING ` + reviewColumns

	var r Review
	err := s.pool.QueryRow(ctx, q, args...).Scan(
		&r.ID, &r.Rating, &r.Content, &r.UserID, &r.MovieID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, fmt.Errorf("update review %s: %w", id, err)
	}
	return r, nil
}

func (s *PostgresReviewStore) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM reviews WHERE id = $1::uuid`, id)
	if err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresReviewStore) queryOne(ctx context.Context, q string, args ...any) (Review, error) {
	var r Review
	err := s.pool.QueryRow(ctx, q, args...).Scan(
		&r.ID, &r.Rating, &r.Content, &r.UserID, &r.MovieID, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Review{}, ErrNotFound
		}
		return Review{}, fmt.Errorf("query review: %w", err)
	}
	return r, nil
}

func (s *PostgresReviewStore) queryMany(ctx context.Context, q string, args ...any) ([]Review, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	out := []Review{}
	for rows.Next() {
		var r Review
		if err := rows.Scan(&r.ID, &r.Rating, &r.Content, &r.UserID, &r.MovieID, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
