package handlers

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/store"
)

// writeDomainError maps the domain error kinds onto the API envelope.
func writeDomainError(w http.ResponseWriter, r *http.Request, log *zap.Logger, err error) {
	rid := httpserver.RequestIDFromContext(r.Context())

	switch {
	case store.IsValidation(err):
		api.BadRequest(w, "VALIDATION", err.Error(), rid, nil)
	case errors.Is(err, store.ErrNotFound):
		api.NotFound(w, "NOT_FOUND", "Resource not found", rid)
	case errors.Is(err, store.ErrForbidden):
		api.Forbidden(w, "FORBIDDEN", "You do not own this resource", rid)
	case errors.Is(err, store.ErrConflict):
		api.Conflict(w, "CONFLICT", "Conflicting resource state", rid, nil)
	default:
		log.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
		api.Internal(w, rid)
	}
}
