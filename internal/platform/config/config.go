// Package config loads process configuration from the environment.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	AppEnv   string `envconfig:"APP_ENV" default:"development"`
	Port     string `envconfig:"PORT" default:"8080"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	DatabaseURL string `envconfig:"DATABASE_URL"`
	RedisURL    string `envconfig:"REDIS_URL"`
	NatsURL     string `envconfig:"NATS_URL"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`

	TMDBAPIKey  string        `envconfig:"TMDB_API_KEY" required:"true"`
	TMDBBaseURL string        `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
	TMDBTimeout time.Duration `envconfig:"TMDB_TIMEOUT" default:"5s"`
	TMDBRPS     int           `envconfig:"TMDB_RPS" default:"40"`

	MovieSyncTTL time.Duration `envconfig:"MOVIE_SYNC_TTL" default:"24h"`
	ListCacheTTL time.Duration `envconfig:"LIST_CACHE_TTL" default:"10m"`
}

// Load reads .env (when present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Production reports whether the process runs with production guarantees
// (persistent stores required, in-memory fallbacks disabled).
func (c Config) Production() bool {
	return strings.EqualFold(strings.TrimSpace(c.AppEnv), "production")
}

func (c Config) Addr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	return ":" + port
}
