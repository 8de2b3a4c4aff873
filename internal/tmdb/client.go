package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ClientConfig holds configurable settings for the TMDB client.
type ClientConfig struct {
	Timeout        time.Duration
	MaxRetries     int
	RetryBaseDelay time.Duration
	RPS            int
}

type Client struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	Config     ClientConfig
	CB         *gobreaker.CircuitBreaker
	Limiter    *rate.Limiter
	Log        *zap.Logger
}

// Option configures the Client.
type Option func(*Client)

func WithCircuitBreaker(cb *gobreaker.CircuitBreaker) Option {
	return func(c *Client) { c.CB = cb }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.Log = log }
}

func New(baseURL, apiKey string, cfg ClientConfig, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = "https://api.themoviedb.org/3"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.RetryBaseDelay <= 0 {
		cfg.RetryBaseDelay = 250 * time.Millisecond
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 40
	}
	c := &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
		Config:     cfg,
		Limiter:    rate.NewLimiter(rate.Limit(cfg.RPS), cfg.RPS),
		Log:        zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) GetMovie(ctx context.Context, id int64) (*MovieDetail, error) {
	if id <= 0 {
		return nil, fmt.Errorf("tmdb: movie id required")
	}
	return doWithBreaker[MovieDetail](ctx, c, "/movie/"+strconv.FormatInt(id, 10), nil)
}

func (c *Client) Trending(ctx context.Context, page int) (*MovieList, error) {
	return doWithBreaker[MovieList](ctx, c, "/trending/movie/day", pageQuery(page))
}

func (c *Client) Popular(ctx context.Context, page int) (*MovieList, error) {
	return doWithBreaker[MovieList](ctx, c, "/movie/popular", pageQuery(page))
}

func (c *Client) Search(ctx context.Context, query string, page int) (*MovieList, error) {
	q := pageQuery(page)
	q.Set("query", query)
	return doWithBreaker[MovieList](ctx, c, "/search/movie", q)
}

func pageQuery(page int) url.Values {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return q
}

func doWithBreaker[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	if c.CB == nil {
		return doJSONWithRetry[T](ctx, c, path, query)
	}
	result, err := c.CB.Execute(func() (interface{}, error) {
		return doJSONWithRetry[T](ctx, c, path, query)
	})
	if err != nil {
		return nil, err
	}
	return result.(*T), nil
}

func doJSONWithRetry[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	var lastErr error
	for attempt := 0; attempt <= c.Config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := c.Config.RetryBaseDelay * time.Duration(math.Pow(2, float64(attempt-1)))
			c.Log.Debug("retrying tmdb request", zap.String("path", path), zap.Int("attempt", attempt), zap.Duration("delay", delay))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := doJSON[T](ctx, c, path, query)
		if err == nil {
			return result, nil
		}
		lastErr = err
		c.Log.Warn("tmdb request failed", zap.String("path", path), zap.Int("attempt", attempt), zap.Error(err))
	}
	return nil, lastErr
}

func doJSON[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, err
	}

	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.APIKey)
	endpoint := c.BaseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "movie-platform/1.0")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tmdb: status %d body=%q", resp.StatusCode, string(b[:min(len(b), 200)]))
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("tmdb: decode error: %w body=%q", err, string(b[:min(len(b), 200)]))
	}
	return &out, nil
}
