package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/catalog"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
)

// GetMovie serves a single movie, refreshed from TMDB when stale.
func GetMovie(movies *catalog.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		m, err := movies.GetMovie(r.Context(), id)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, m)
	}
}

func GetTrending(movies *catalog.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := movies.GetTrending(r.Context(), pageParam(r))
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, list)
	}
}

func GetPopular(movies *catalog.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := movies.GetPopular(r.Context(), pageParam(r))
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, list)
	}
}

func SearchMovies(movies *catalog.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := strings.TrimSpace(r.URL.Query().Get("query"))
		if query == "" {
			rid := httpserver.RequestIDFromContext(r.Context())
			api.BadRequest(w, "MISSING_QUERY", "query is required", rid, nil)
			return
		}
		list, err := movies.SearchMovies(r.Context(), query, pageParam(r))
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, list)
	}
}

func movieIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := strings.TrimSpace(chi.URLParam(r, "movie_id"))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		rid := httpserver.RequestIDFromContext(r.Context())
		api.BadRequest(w, "INVALID_ID", "movie_id must be a positive integer", rid, nil)
		return 0, false
	}
	return id, true
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}
