package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryReviewStore is a development and test implementation. It
// enforces the same (user, movie) uniqueness as the Postgres schema.
type InMemoryReviewStore struct {
	mu      sync.RWMutex
	reviews map[string]Review
	byPair  map[string]string // user_id+movie_id -> review id
}

func NewInMemoryReviewStore() *InMemoryReviewStore {
	return &InMemoryReviewStore{
		reviews: make(map[string]Review),
		byPair:  make(map[string]string),
	}
}

// Len reports the number of stored reviews. Test helper.
func (s *InMemoryReviewStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.reviews)
}

func pairKey(userID string, movieID int64) string {
	return fmt.Sprintf("%s/%d", userID, movieID)
}

func (s *InMemoryReviewStore) Get(_ context.Context, id string) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	return r, nil
}

func (s *InMemoryReviewStore) GetByUserAndMovie(_ context.Context, userID string, movieID int64) (Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byPair[pairKey(userID, movieID)]
	if !ok {
		return Review{}, ErrNotFound
	}
	return s.reviews[id], nil
}

func (s *InMemoryReviewStore) ListByMovie(_ context.Context, movieID int64, limit, offset int) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Review
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			out = append(out, r)
		}
	}
	return pageNewestFirst(out, limit, offset), nil
}

func (s *InMemoryReviewStore) ListByUser(_ context.Context, userID string, limit, offset int) ([]Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return pageNewestFirst(out, limit, offset), nil
}

func (s *InMemoryReviewStore) AverageRating(_ context.Context, movieID int64) (*float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sum, n := 0, 0
	for _, r := range s.reviews {
		if r.MovieID == movieID {
			sum += r.Rating
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(n)
	return &avg, nil
}

func (s *InMemoryReviewStore) Create(_ context.Context, p CreateReviewParams) (Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey(p.UserID, p.MovieID)
	if _, exists := s.byPair[key]; exists {
		return Review{}, ErrConflict
	}

	now := time.Now().UTC()
	r := Review{
		ID:        uuid.NewString(),
		Rating:    p.Rating,
		Content:   p.Content,
		UserID:    p.UserID,
		MovieID:   p.MovieID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.reviews[r.ID] = r
	s.byPair[key] = r.ID
	return r, nil
}

func (s *InMemoryReviewStore) Update(_ context.Context, id string, p UpdateReviewParams) (Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return Review{}, ErrNotFound
	}
	if p.Rating != nil {
		r.Rating = *p.Rating
	}
	if p.Content.Set {
		r.Content = p.Content.Value
	}
	r.UpdatedAt = time.Now().UTC()
	s.reviews[id] = r
	return r, nil
}

func (s *InMemoryReviewStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.reviews[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.reviews, id)
	delete(s.byPair, pairKey(r.UserID, r.MovieID))
	return nil
}

func pageNewestFirst(reviews []Review, limit, offset int) []Review {
	sort.Slice(reviews, func(i, j int) bool {
		if !reviews[i].CreatedAt.Equal(reviews[j].CreatedAt) {
			return reviews[i].CreatedAt.After(reviews[j].CreatedAt)
		}
		return reviews[i].ID > reviews[j].ID
	})
	if offset >= len(reviews) {
		return []Review{}
	}
	reviews = reviews[offset:]
	if limit > 0 && len(reviews) > limit {
		reviews = reviews[:limit]
	}
	return reviews
}
