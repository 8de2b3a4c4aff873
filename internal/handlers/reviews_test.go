package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/example/movie-platform/internal/identity"
	"github.com/example/movie-platform/internal/platform/api"
	"github.com/example/movie-platform/internal/platform/auth"
	"github.com/example/movie-platform/internal/reviews"
	"github.com/example/movie-platform/internal/store"
)

func newReviewRouter(t *testing.T) (chi.Router, *store.InMemoryReviewStore) {
	t.Helper()
	log := zap.NewNop()
	reviewStore := store.NewInMemoryReviewStore()
	revs := reviews.NewService(reviewStore, reviews.WithLogger(log))
	ids := identity.NewService(store.NewInMemoryUserStore(), identity.WithLogger(log))

	r := chi.NewRouter()
	r.Post("/v1/movies/{movie_id}/reviews", CreateReview(revs, ids, log))
	r.Patch("/v1/reviews/{review_id}", UpdateReview(revs, ids, log))
	r.Delete("/v1/reviews/{review_id}", DeleteReview(revs, ids, log))
	r.Get("/v1/movies/{movie_id}/reviews", GetMovieReviews(revs, log))
	return r, reviewStore
}

func authedRequest(method, target, body string, subject string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	ctx := auth.WithIdentity(req.Context(), auth.Identity{
		Subject: subject,
		Email:   subject + "@example.com",
	})
	return req.WithContext(ctx)
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) api.APIError {
	t.Helper()
	var resp api.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	return resp.Error
}

func TestCreateReview_Created(t *testing.T) {
	router, _ := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 8, "content": "tight"}`, "auth0|alice"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var review store.Review
	if err := json.NewDecoder(rec.Body).Decode(&review); err != nil {
		t.Fatalf("decode review: %v", err)
	}
	if review.Rating != 8 || review.MovieID != 550 {
		t.Fatalf("unexpected review %+v", review)
	}
	if review.Content == nil || *review.Content != "tight" {
		t.Fatalf("expected content, got %+v", review.Content)
	}
}

func TestCreateReview_FractionalRatingRejected(t *testing.T) {
	router, reviewStore := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 7.5}`, "auth0|alice"))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for fractional rating, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != "VALIDATION" {
		t.Fatalf("expected VALIDATION code, got %q", apiErr.Code)
	}
	if reviewStore.Len() != 0 {
		t.Fatal("no review should be stored")
	}
}

func TestCreateReview_OutOfRangeRejected(t *testing.T) {
	router, _ := newReviewRouter(t)

	for _, body := range []string{`{"rating": 0}`, `{"rating": 11}`} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews", body, "auth0|alice"))
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestCreateReview_DuplicateRejected(t *testing.T) {
	router, _ := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 8}`, "auth0|alice"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first create: expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 4}`, "auth0|alice"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("duplicate: expected 400, got %d", rec.Code)
	}
	if apiErr := decodeError(t, rec); apiErr.Code != "VALIDATION" {
		t.Fatalf("expected VALIDATION code, got %q", apiErr.Code)
	}
}

func TestCreateReview_Unauthenticated(t *testing.T) {
	router, _ := newReviewRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/movies/550/reviews",
		strings.NewReader(`{"rating": 8}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", rec.Code)
	}
}

func TestUpdateReview_NonOwnerForbidden(t *testing.T) {
	router, _ := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 8}`, "auth0|alice"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d", rec.Code)
	}
	var review store.Review
	if err := json.NewDecoder(rec.Body).Decode(&review); err != nil {
		t.Fatalf("decode review: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPatch, "/v1/reviews/"+review.ID,
		`{"rating": 1}`, "auth0|mallory"))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-owner, got %d", rec.Code)
	}
}

func TestDeleteReview_ReturnsDeleted(t *testing.T) {
	router, reviewStore := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews",
		`{"rating": 8}`, "auth0|alice"))
	var review store.Review
	if err := json.NewDecoder(rec.Body).Decode(&review); err != nil {
		t.Fatalf("decode review: %v", err)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodDelete, "/v1/reviews/"+review.ID, "", "auth0|alice"))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var deleted store.Review
	if err := json.NewDecoder(rec.Body).Decode(&deleted); err != nil {
		t.Fatalf("decode deleted: %v", err)
	}
	if deleted.ID != review.ID {
		t.Fatalf("expected deleted review %s, got %s", review.ID, deleted.ID)
	}
	if reviewStore.Len() != 0 {
		t.Fatal("review should be gone")
	}
}

func TestGetMovieReviews_PublicWithAverage(t *testing.T) {
	router, _ := newReviewRouter(t)

	for _, tc := range []struct {
		subject string
		body    string
	}{
		{"auth0|alice", `{"rating": 8}`},
		{"auth0|bob", `{"rating": 6}`},
	} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/550/reviews", tc.body, tc.subject))
		if rec.Code != http.StatusCreated {
			t.Fatalf("create for %s: expected 201, got %d", tc.subject, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/movies/550/reviews", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var out reviews.MovieReviews
	if err := json.NewDecoder(rec.Body).Decode(&out); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(out.Reviews) != 2 {
		t.Fatalf("expected 2 reviews, got %d", len(out.Reviews))
	}
	if out.AverageRating == nil || *out.AverageRating != 7 {
		t.Fatalf("expected average 7, got %v", out.AverageRating)
	}
}

func TestCreateReview_BadMovieID(t *testing.T) {
	router, _ := newReviewRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, authedRequest(http.MethodPost, "/v1/movies/zero/reviews",
		`{"rating": 8}`, "auth0|alice"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric movie id, got %d", rec.Code)
	}
}
