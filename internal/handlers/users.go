package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/identity"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/validate"
)

// SyncUser resolves the caller's token to a local user row, creating
// one on first contact. Idempotent.
func SyncUser(ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}
		api.WriteJSON(w, http.StatusOK, user)
	}
}

// GetProfile returns the caller's profile.
func GetProfile(ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}
		api.WriteJSON(w, http.StatusOK, user)
	}
}

type updateProfileRequest struct {
	Username  *string                `json:"username" validate:"omitempty,min=3,max=32"`
	AvatarURL store.Optional[string] `json:"avatar_url"`
}

// UpdateProfile applies a partial update to the caller's profile. A
// null avatar_url clears the stored value; an absent one leaves it.
func UpdateProfile(ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}

		var req updateProfileRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
			return
		}
		if fields := validate.Map(req); fields != nil {
			api.BadRequest(w, "VALIDATION", "Invalid profile", rid, toDetails(fields))
			return
		}

		updated, err := ids.UpdateProfile(r.Context(), user.ID, identity.UpdateProfileParams{
			Username:  req.Username,
			AvatarURL: req.AvatarURL,
		})
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, updated)
	}
}
