package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

func signToken(t *testing.T, secret []byte, claims Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := token.SignedString(secret)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestJWTVerifier_Parse(t *testing.T) {
	secret := []byte("test-secret")
	v := JWTVerifier{Secret: secret}

	tok := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@example.com",
	})

	claims, err := v.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "auth0|abc" {
		t.Fatalf("expected subject, got %q", claims.Subject)
	}
	if claims.Email != "a@example.com" {
		t.Fatalf("expected email claim, got %q", claims.Email)
	}
}

func TestJWTVerifier_RejectsWrongSecret(t *testing.T) {
	v := JWTVerifier{Secret: []byte("right")}
	tok := signToken(t, []byte("wrong"), Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	if _, err := v.Parse(tok); err == nil {
		t.Fatal("expected error for wrong secret")
	}
}

func TestJWTVerifier_RejectsExpired(t *testing.T) {
	secret := []byte("test-secret")
	v := JWTVerifier{Secret: secret}
	tok := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
	})
	if _, err := v.Parse(tok); err == nil {
		t.Fatal("expected error for expired token")
	}
}

func TestRequireUser(t *testing.T) {
	secret := []byte("test-secret")
	verifier := JWTVerifier{Secret: secret}

	var seen Identity
	handler := RequireUser(verifier)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = IdentityFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	// No header.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	// Malformed header.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Token abc")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for malformed header, got %d", rec.Code)
	}

	// Valid token.
	tok := signToken(t, secret, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "auth0|abc",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Email: "a@example.com",
	})
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for valid token, got %d", rec.Code)
	}
	if seen.Subject != "auth0|abc" || seen.Email != "a@example.com" {
		t.Fatalf("expected identity in context, got %+v", seen)
	}
}
