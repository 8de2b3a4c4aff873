package main

import (
	"context"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/cache"
	"github.com/example/movie-platform/internal/catalog"
	"github.com/example/movie-platform/internal/events"
	"github.com/example/movie-platform/internal/handlers"
	"github.com/example/movie-platform/internal/identity"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/config"
	"github.com/example/movie-platform/internal/platform/db"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/platform/logging"
	"github.com/example/movie-platform/internal/platform/run"
	"github.com/example/movie-platform/internal/reviews"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/tmdb"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	log, err := logging.New(cfg.LogLevel, "movie-platform")
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	stores, closeStores := initStores(cfg, log)
	if closeStores != nil {
		defer closeStores()
	}

	provider := tmdb.New(cfg.TMDBBaseURL, cfg.TMDBAPIKey,
		tmdb.ClientConfig{Timeout: cfg.TMDBTimeout, MaxRetries: 2, RPS: cfg.TMDBRPS},
		tmdb.WithLogger(log.Named("tmdb")),
		tmdb.WithCircuitBreaker(gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "tmdb",
			Timeout: 30 * time.Second,
		})),
	)

	publisher, err := events.New(cfg.NatsURL, log.Named("events"))
	if err != nil {
		log.Error("nats publisher init failed", zap.Error(err))
		run.Exit(1)
	}

	movieSvc := catalog.NewService(stores.movies, provider,
		catalog.WithLogger(log.Named("catalog")),
		catalog.WithListCache(initListCache(cfg, log)),
		catalog.WithPublisher(publisher),
		catalog.WithFreshness(cfg.MovieSyncTTL),
	)
	reviewSvc := reviews.NewService(stores.reviews,
		reviews.WithLogger(log.Named("reviews")),
		reviews.WithPublisher(publisher),
	)
	identitySvc := identity.NewService(stores.users,
		identity.WithLogger(log.Named("identity")),
	)

	verifier := auth.JWTVerifier{Secret: []byte(cfg.JWTSecret)}

	r := chi.NewRouter()
	httpserver.SetupRouter(r)

	r.Get("/v1/movies/trending", handlers.GetTrending(movieSvc, log))
	r.Get("/v1/movies/popular", handlers.GetPopular(movieSvc, log))
	r.Get("/v1/movies/search", handlers.SearchMovies(movieSvc, log))
	r.Get("/v1/movies/{movie_id}", handlers.GetMovie(movieSvc, log))
	r.Get("/v1/movies/{movie_id}/reviews", handlers.GetMovieReviews(reviewSvc, log))

	r.Group(func(r chi.Router) {
		r.Use(auth.RequireUser(verifier))
		r.Post("/v1/auth/sync", handlers.SyncUser(identitySvc, log))
		r.Get("/v1/me", handlers.GetProfile(identitySvc, log))
		r.Patch("/v1/me", handlers.UpdateProfile(identitySvc, log))
		r.Get("/v1/me/reviews", handlers.GetMyReviews(reviewSvc, identitySvc, log))
		r.Post("/v1/movies/{movie_id}/reviews", handlers.CreateReview(reviewSvc, identitySvc, log))
		r.Patch("/v1/reviews/{review_id}", handlers.UpdateReview(reviewSvc, identitySvc, log))
		r.Delete("/v1/reviews/{review_id}", handlers.DeleteReview(reviewSvc, identitySvc, log))
	})

	srv := httpserver.New(httpserver.Options{Addr: cfg.Addr(), Router: r})

	runner := run.New(log)
	code := runner.WithSignals(func(ctx context.Context) error {
		go func() {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
		return srv.Start(log)
	})

	log.Info("exit", zap.Int("code", code))
	run.Exit(code)
}

type storeSet struct {
	movies  store.MovieStore
	reviews store.ReviewStore
	users   store.UserStore
}

// initStores selects the storage backend. In production
// (APP_ENV=production) a working Postgres connection is required and
// the process terminates otherwise.
func initStores(cfg config.Config, log *zap.Logger) (storeSet, func()) {
	memory := storeSet{
		movies:  store.NewInMemoryMovieStore(),
		reviews: store.NewInMemoryReviewStore(),
		users:   store.NewInMemoryUserStore(),
	}

	if cfg.DatabaseURL == "" {
		if cfg.Production() {
			log.Error("DATABASE_URL is required in production")
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("DATABASE_URL not set, using in-memory stores (development only)")
		return memory, nil
	}

	pool, err := db.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		if cfg.Production() {
			log.Error("postgres is required in production but unavailable", zap.Error(err))
			_ = log.Sync()
			run.Exit(1)
		}
		log.Warn("postgres unavailable, falling back to in-memory stores", zap.Error(err))
		return memory, nil
	}

	log.Info("stores: postgres")
	return storeSet{
		movies:  store.NewPostgresMovieStore(pool),
		reviews: store.NewPostgresReviewStore(pool),
		users:   store.NewPostgresUserStore(pool),
	}, pool.Close
}

// initListCache selects the provider list cache backend.
func initListCache(cfg config.Config, log *zap.Logger) cache.Cache {
	if cfg.RedisURL == "" {
		log.Info("list cache: in-memory", zap.Duration("ttl", cfg.ListCacheTTL))
		return cache.NewMemoryCache(cfg.ListCacheTTL)
	}
	c, err := cache.NewRedisCache(cfg.RedisURL, cfg.ListCacheTTL)
	if err != nil {
		log.Warn("redis cache init failed, falling back to in-memory", zap.Error(err))
		return cache.NewMemoryCache(cfg.ListCacheTTL)
	}
	log.Info("list cache: redis", zap.Duration("ttl", cfg.ListCacheTTL))
	return c
}
