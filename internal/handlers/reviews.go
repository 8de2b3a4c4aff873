package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/identity"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/platform/httpserver"
	"github.com/example/movie-platform/internal/reviews"
	"github.com/example/movie-platform/internal/store"
	"github.com/example/movie-platform/internal/validate"
)

type createReviewRequest struct {
	// Rating decodes as a float so fractional values get a precise
	// rejection instead of a generic JSON error.
	Rating  float64 `json:"rating" validate:"required,gte=1,lte=10"`
	Content *string `json:"content" validate:"omitempty,max=4000"`
}

type updateReviewRequest struct {
	Rating  *float64               `json:"rating" validate:"omitempty,gte=1,lte=10"`
	Content store.Optional[string] `json:"content"`
}

// CreateReview posts a review for a movie on behalf of the caller.
func CreateReview(revs *reviews.Service, ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}

		var req createReviewRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
			return
		}
		if fields := validate.Map(req); fields != nil {
			api.BadRequest(w, "VALIDATION", "Invalid review", rid, toDetails(fields))
			return
		}
		rating, ok2 := integralRating(w, rid, req.Rating)
		if !ok2 {
			return
		}

		review, err := revs.Create(r.Context(), user.ID, movieID, reviews.CreateParams{
			Rating:  rating,
			Content: req.Content,
		})
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, review)
	}
}

// UpdateReview applies a partial update to a review owned by the caller.
func UpdateReview(revs *reviews.Service, ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())
		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}

		var req updateReviewRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "Invalid JSON", rid, nil)
			return
		}
		if fields := validate.Map(req); fields != nil {
			api.BadRequest(w, "VALIDATION", "Invalid review", rid, toDetails(fields))
			return
		}

		params := reviews.UpdateParams{Content: req.Content}
		if req.Rating != nil {
			rating, ok2 := integralRating(w, rid, *req.Rating)
			if !ok2 {
				return
			}
			params.Rating = &rating
		}

		review, err := revs.Update(r.Context(), reviewID, user.ID, params)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, review)
	}
}

// DeleteReview removes a review owned by the caller and returns the
// deleted record.
func DeleteReview(revs *reviews.Service, ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reviewID := strings.TrimSpace(chi.URLParam(r, "review_id"))
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}

		review, err := revs.Delete(r.Context(), reviewID, user.ID)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, review)
	}
}

// GetMovieReviews lists a movie's reviews newest-first with the
// movie-wide average.
func GetMovieReviews(revs *reviews.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		movieID, ok := movieIDParam(w, r)
		if !ok {
			return
		}
		page, size := paginationParams(r)
		out, err := revs.GetMovieReviews(r.Context(), movieID, page, size)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// GetMyReviews lists the caller's own reviews newest-first.
func GetMyReviews(revs *reviews.Service, ids *identity.Service, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := resolveUser(w, r, ids, log)
		if !ok {
			return
		}
		page, size := paginationParams(r)
		out, err := revs.GetUserReviews(r.Context(), user.ID, page, size)
		if err != nil {
			writeDomainError(w, r, log, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, out)
	}
}

// resolveUser turns the request's external identity into a local user
// row, creating one on first sight.
func resolveUser(w http.ResponseWriter, r *http.Request, ids *identity.Service, log *zap.Logger) (store.User, bool) {
	rid := httpserver.RequestIDFromContext(r.Context())
	assertion, ok := auth.IdentityFromContext(r.Context())
	if !ok {
		api.Unauthorized(w, "MISSING_TOKEN", "Authentication required", rid)
		return store.User{}, false
	}
	user, err := ids.FindOrCreate(r.Context(), assertion.Subject, assertion.Email)
	if err != nil {
		writeDomainError(w, r, log, err)
		return store.User{}, false
	}
	return user, true
}

func integralRating(w http.ResponseWriter, rid string, rating float64) (int, bool) {
	if rating != float64(int(rating)) {
		api.BadRequest(w, "VALIDATION", "rating must be an integer between 1 and 10", rid, nil)
		return 0, false
	}
	return int(rating), true
}

func paginationParams(r *http.Request) (page, pageSize int) {
	page, _ = strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ = strconv.Atoi(r.URL.Query().Get("page_size"))
	return page, pageSize
}

func toDetails(fields map[string]string) map[string]any {
	details := make(map[string]any, len(fields))
	for k, v := range fields {
		details[k] = v
	}
	return details
}
