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

const userColumns = "id::text, external_id, email, username, avatar_url, created_at"

// PostgresUserStore is the production Postgres-backed implementation.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

func (s *PostgresUserStore) GetByID(ctx context.Context, id string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1::uuid LIMIT 1`
	return s.queryOne(ctx, q, id)
}

func (s *PostgresUserStore) GetByExternalID(ctx context.Context, externalID string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE external_id = $1 LIMIT 1`
	return s.queryOne(ctx, q, externalID)
}

func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1) LIMIT 1`
	return s.queryOne(ctx, q, username)
}

func (s *PostgresUserStore) Create(ctx context.Context, p CreateUserParams) (User, error) {
	q := `
INSERT INTO users (id, external_id, email)
VALUES ($1, $2, $3)
RETURNING ` + userColumns

	var u User
	err := s.pool.QueryRow(ctx, q, uuid.New(), p.ExternalID, strings.ToLower(strings.TrimSpace(p.Email))).Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.Username, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if uniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (s *PostgresUserStore) Update(ctx context.Context, id string, p UpdateUserParams) (User, error) {
	sets := []string{}
	args := []any{id}

	if p.Username != nil {
		args = append(args, *p.Username)
		sets = append(sets, fmt.Sprintf("username = $%d", len(args)))
	}
	if p.AvatarURL.Set {
		if p.AvatarURL.Value != nil {
			args = append(args, *p.AvatarURL.Value)
			sets = append(sets, fmt.Sprintf("avatar_url = $%d", len(args)))
		} else {
			sets = append(sets, "avatar_url = NULL")
		}
	}
	if len(sets) == 0 {
		return s.GetByID(ctx, id)
	}

	q := `UPDATE users SET ` + strings.Join(sets, ", ") +
		` WHERE id = $1::uuid RETURNING ` + userColumns

	var u User
	err := s.pool.QueryRow(ctx, q, args...).Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.Username, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		if uniqueViolation(err) {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("update user %s: %w", id, err)
	}
	return u, nil
}

func (s *PostgresUserStore) queryOne(ctx context.Context, q string, args ...any) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx, q, args...).Scan(
		&u.ID, &u.ExternalID, &u.Email, &u.Username, &u.AvatarURL, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}
