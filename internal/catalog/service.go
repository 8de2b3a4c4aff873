// Package catalog serves movie metadata from local storage when fresh
// and refreshes it from TMDB otherwise.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/cache"
	"github.com/example/movie-platform/internal/events"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/tmdb"
)

// DefaultFreshness bounds provider call volume for detail views
// without serving egregiously stale data.
const DefaultFreshness = 24 * time.Hour

type Service struct {
	movies   store.MovieStore
	provider tmdb.Provider
	lists    cache.Cache
	events   *events.Publisher
	log      *zap.Logger
	ttl      time.Duration
	now      func() time.Time
}

type Option func(*Service)

func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithListCache(c cache.Cache) Option {
	return func(s *Service) { s.lists = c }
}

func WithPublisher(p *events.Publisher) Option {
	return func(s *Service) { s.events = p }
}

func WithFreshness(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock overrides the time source. Useful for testing.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(movies store.MovieStore, provider tmdb.Provider, opts ...Option) *Service {
	s := &Service{
		movies:   movies,
		provider: provider,
		log:      zap.NewNop(),
		ttl:      DefaultFreshness,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// GetMovie returns the locally cached movie when it is fresh, refreshes
// it from the provider otherwise, and falls back to the stale local
// copy when the provider is unavailable. Only when neither side can
// produce the movie does it report ErrNotFound.
func (s *Service) GetMovie(ctx context.Context, id int64) (store.Movie, error) {
	local, localErr := s.movies.Get(ctx, id)
	if localErr == nil && s.now().Sub(local.SyncedAt) < s.ttl {
		return local, nil
	}
	if localErr != nil && !errors.Is(localErr, store.ErrNotFound) {
		return store.Movie{}, localErr
	}

	detail, provErr := s.provider.GetMovie(ctx, id)
	if provErr != nil {
		if localErr == nil {
			// Stale copy on hand: a defined successful outcome, not an
			// error-swallow. synced_at stays untouched.
			s.log.Warn("tmdb refresh failed, serving stale movie",
				zap.Int64("movie_id", id), zap.Error(provErr))
			return local, nil
		}
		s.log.Warn("tmdb fetch failed with no local copy",
			zap.Int64("movie_id", id), zap.Error(provErr))
		return store.Movie{}, fmt.Errorf("movie %d: %w", id, store.ErrNotFound)
	}

	movie := mapDetail(detail, s.now().UTC())
	if err := s.movies.Upsert(ctx, movie); err != nil {
		return store.Movie{}, err
	}
	s.publish(ctx, events.SubjectMovieSynced, movie)
	return movie, nil
}

// List endpoints pass through to the provider and never write to the
// movie store: persisting every listed title would write hundreds of
// rows per browse action with no corresponding read benefit.

func (s *Service) GetTrending(ctx context.Context, page int) (*tmdb.MovieList, error) {
	key := fmt.Sprintf("tmdb:trending:%d", page)
	return s.listThrough(ctx, key, func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.provider.Trending(ctx, page)
	})
}

func (s *Service) GetPopular(ctx context.Context, page int) (*tmdb.MovieList, error) {
	key := fmt.Sprintf("tmdb:popular:%d", page)
	return s.listThrough(ctx, key, func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.provider.Popular(ctx, page)
	})
}

func (s *Service) SearchMovies(ctx context.Context, query string, page int) (*tmdb.MovieList, error) {
	if query == "" {
		return nil, store.Validationf("search query is required")
	}
	key := fmt.Sprintf("tmdb:search:%s:%d", query, page)
	return s.listThrough(ctx, key, func(ctx context.Context) (*tmdb.MovieList, error) {
		return s.provider.Search(ctx, query, page)
	})
}

func (s *Service) listThrough(ctx context.Context, key string, fetch func(context.Context) (*tmdb.MovieList, error)) (*tmdb.MovieList, error) {
	if s.lists != nil {
		var cached tmdb.MovieList
		if ok, err := s.lists.Get(ctx, key, &cached); err == nil && ok {
			return &cached, nil
		} else if err != nil {
			s.log.Debug("list cache read failed", zap.String("key", key), zap.Error(err))
		}
	}

	out, err := fetch(ctx)
	if err != nil {
		return nil, err
	}
	if s.lists != nil {
		if err := s.lists.Set(ctx, key, out); err != nil {
			s.log.Debug("list cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, subject string, payload any) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, subject, payload); err != nil {
		s.log.Warn("event publish failed", zap.String("subject", subject), zap.Error(err))
	}
}

// mapDetail flattens the provider detail shape into the local movie
// shape. Genre ids carry no local meaning and are discarded.
func mapDetail(d *tmdb.MovieDetail, syncedAt time.Time) store.Movie {
	m := store.Movie{
		ID:          d.ID,
		Title:       d.Title,
		Overview:    d.Overview,
		VoteAverage: d.VoteAverage,
		Popularity:  d.Popularity,
		Genres:      make([]string, 0, len(d.Genres)),
		SyncedAt:    syncedAt,
	}
	if d.PosterPath != "" {
		p := d.PosterPath
		m.PosterPath = &p
	}
	if d.BackdropPath != "" {
		p := d.BackdropPath
		m.BackdropPath = &p
	}
	if t, err := time.Parse("2006-01-02", d.ReleaseDate); err == nil {
		m.ReleaseDate = &t
	}
	for _, g := range d.Genres {
		m.Genres = append(m.Genres, g.Name)
	}
	return m
}
