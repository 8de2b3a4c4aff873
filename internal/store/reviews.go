package store

import (
	"context"
	"time"
)

// Review is one user's rating and optional commentary on one movie.
// The movie need not exist locally; metadata syncs independently.
type Review struct {
	ID        string    `json:"id"`
	Rating    int       `json:"rating"`
	Content   *string   `json:"content,omitempty"`
	UserID    string    `json:"user_id"`
	MovieID   int64     `json:"movie_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateReviewParams struct {
	UserID  string
	MovieID int64
	Rating  int
	Content *string
}

// UpdateReviewParams applies partial updates. A nil Rating leaves the
// rating untouched; Content distinguishes absent from explicit null.
type UpdateReviewParams struct {
	Rating  *int
	Content Optional[string]
}

// ReviewStore persists reviews under a (user_id, movie_id) uniqueness
// constraint. Create returns ErrConflict for the loser of a duplicate
// race; that constraint is the final arbiter, not the engine pre-check.
type ReviewStore interface {
	Get(ctx context.Context, id string) (Review, error)
	GetByUserAndMovie(ctx context.Context, userID string, movieID int64) (Review, error)
	ListByMovie(ctx context.Context, movieID int64, limit, offset int) ([]Review, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Review, error)
	AverageRating(ctx context.Context, movieID int64) (*float64, error)
	Create(ctx context.Context, p CreateReviewParams) (Review, error)
	Update(ctx context.Context, id string, p UpdateReviewParams) (Review, error)
	Delete(ctx context.Context, id string) error
}
