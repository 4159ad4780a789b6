package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cesaralej/agastar/internal/core"
)

func TestTokenAuthenticator(t *testing.T) {
	a := NewTokenAuthenticator(map[string]string{"tok1": "alice"})

	r := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	r.Header.Set("Authorization", "Bearer tok1")
	userID, err := a.Authenticate(r)
	if err != nil || userID != "alice" {
		t.Fatalf("Authenticate = %q, %v", userID, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/ws?token=tok1", nil)
	if userID, err = a.Authenticate(r); err != nil || userID != "alice" {
		t.Fatalf("query token: %q, %v", userID, err)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	if _, err = a.Authenticate(r); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("missing token: %v", err)
	}

	r = httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	r.Header.Set("Authorization", "Bearer nope")
	if _, err = a.Authenticate(r); !errors.Is(err, core.ErrUnauthenticated) {
		t.Fatalf("unknown token: %v", err)
	}
}

func TestMiddleware(t *testing.T) {
	a := NewTokenAuthenticator(map[string]string{"tok1": "alice"})
	var seenUser string
	handler := Middleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seenUser, _ = UserFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer tok1")
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusOK || seenUser != "alice" {
		t.Fatalf("code=%d user=%q", rec.Code, seenUser)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}
