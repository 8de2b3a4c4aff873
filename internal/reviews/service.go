// Package reviews enforces review validation, ownership and
// per-user-per-movie uniqueness on top of the review store.
package reviews

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/events"
	"github.com/example/movie-platform/internal/store"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type Service struct {
	reviews store.ReviewStore
	events  *events.Publisher
	log     *zap.Logger
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func NewService(reviews store.ReviewStore, opts ...Option) *Service {
	s := &Service{reviews: reviews, log: zap.NewNop()}
	for _, o := range opts {
		o(s)
	}
	return s
}

type CreateParams struct {
	Rating  int
	Content *string
}

type UpdateParams struct {
	Rating  *int
	Content store.Optional[string]
}

// MovieReviews pairs one page of reviews with the average over ALL
// reviews of the movie, nil when none exist.
type MovieReviews struct {
	Reviews       []store.Review `json:"reviews"`
	AverageRating *float64       `json:"average_rating"`
}

func validateRating(rating int) error {
	if rating < 1 || rating > 10 {
		return store.Validationf("rating must be an integer between 1 and 10")
	}
	return nil
}

// Create persists a new review after validating the rating and the
// one-review-per-movie rule. The pre-check is advisory; the store's
// uniqueness constraint settles concurrent duplicates.
func (s *Service) Create(ctx context.Context, userID string, movieID int64, p CreateParams) (store.Review, error) {
	if err := validateRating(p.Rating); err != nil {
		return store.Review{}, err
	}

	if _, err := s.reviews.GetByUserAndMovie(ctx, userID, movieID); err == nil {
		return store.Review{}, store.Validationf("movie already reviewed")
	} else if !errors.Is(err, store.ErrNotFound) {
		return store.Review{}, err
	}

	r, err := s.reviews.Create(ctx, store.CreateReviewParams{
		UserID:  userID,
		MovieID: movieID,
		Rating:  p.Rating,
		Content: p.Content,
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return store.Review{}, store.Validationf("movie already reviewed")
		}
		return store.Review{}, err
	}

	s.publish(ctx, events.SubjectReviewCreated, r)
	return r, nil
}

// Update applies the supplied fields to a review owned by userID.
func (s *Service) Update(ctx context.Context, reviewID, userID string, p UpdateParams) (store.Review, error) {
	r, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return store.Review{}, err
	}
	if r.UserID != userID {
		return store.Review{}, store.ErrForbidden
	}
	if p.Rating != nil {
		if err := validateRating(*p.Rating); err != nil {
			return store.Review{}, err
		}
	}
	if p.Rating == nil && !p.Content.Set {
		return r, nil
	}
	return s.reviews.Update(ctx, reviewID, store.UpdateReviewParams{
		Rating:  p.Rating,
		Content: p.Content,
	})
}

// Delete removes a review owned by userID and returns the deleted
// record for confirmation.
func (s *Service) Delete(ctx context.Context, reviewID, userID string) (store.Review, error) {
	r, err := s.reviews.Get(ctx, reviewID)
	if err != nil {
		return store.Review{}, err
	}
	if r.UserID != userID {
		return store.Review{}, store.ErrForbidden
	}
	if err := s.reviews.Delete(ctx, reviewID); err != nil {
		return store.Review{}, err
	}

	s.publish(ctx, events.SubjectReviewDeleted, r)
	return r, nil
}

// GetMovieReviews returns one newest-first page plus the movie-wide
// average rating.
func (s *Service) GetMovieReviews(ctx context.Context, movieID int64, page, pageSize int) (MovieReviews, error) {
	limit, offset := pagination(page, pageSize)

	revs, err := s.reviews.ListByMovie(ctx, movieID, limit, offset)
	if err != nil {
		return MovieReviews{}, err
	}
	avg, err := s.reviews.AverageRating(ctx, movieID)
	if err != nil {
		return MovieReviews{}, err
	}
	return MovieReviews{Reviews: revs, AverageRating: avg}, nil
}

func (s *Service) GetUserReviews(ctx context.Context, userID string, page, pageSize int) ([]store.Review, error) {
	limit, offset := pagination(page, pageSize)
	return s.reviews.ListByUser(ctx, userID, limit, offset)
}

func pagination(page, pageSize int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageSize, (page - 1) * pageSize
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}
