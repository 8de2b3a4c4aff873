package store

import (
	"context"
	"sync"
)

// InMemoryMovieStore is a development and test implementation.
type InMemoryMovieStore struct {
	mu     sync.RWMutex
	movies map[int64]Movie
}

func NewInMemoryMovieStore() *InMemoryMovieStore {
	return &InMemoryMovieStore{movies: make(map[int64]Movie)}
}

func (s *InMemoryMovieStore) Get(_ context.Context, id int64) (Movie, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.movies[id]
	if !ok {
		return Movie{}, ErrNotFound
	}
	return m, nil
}

func (s *InMemoryMovieStore) Upsert(_ context.Context, m Movie) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.movies[m.ID] = m
	return nil
}

// Len reports the number of stored movies. Test helper.
func (s *InMemoryMovieStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.movies)
}
