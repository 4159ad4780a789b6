// Package auth resolves the authenticated user for a request. Every
// store operation is scoped by the opaque user id this package hands
// out.
package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/cesaralej/agastar/internal/core"
)

// Authenticator maps request credentials to an opaque user id.
type Authenticator interface {
	Authenticate(r *http.Request) (string, error)
}

// TokenAuthenticator is a static bearer-token lookup, loaded from
// configuration at startup.
type TokenAuthenticator struct {
	tokens map[string]string
}

func NewTokenAuthenticator(tokens map[string]string) *TokenAuthenticator {
	return &TokenAuthenticator{tokens: tokens}
}

// Authenticate reads the Authorization bearer token and resolves it to
// a user id. Missing or unknown tokens yield core.ErrUnauthenticated.
func (a *TokenAuthenticator) Authenticate(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		// WebSocket clients cannot set headers from the browser, so
		// the token may ride in the query string instead.
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return "", core.ErrUnauthenticated
	}
	userID, ok := a.tokens[token]
	if !ok {
		return "", core.ErrUnauthenticated
	}
	return userID, nil
}

type contextKey string

const userContextKey contextKey = "user_id"

// WithUser returns a context carrying the authenticated user id.
func WithUser(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userContextKey, userID)
}

// UserFromContext returns the authenticated user id, or
// core.ErrUnauthenticated when the request never passed authentication.
func UserFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userContextKey).(string)
	if !ok || userID == "" {
		return "", core.ErrUnauthenticated
	}
	return userID, nil
}

// Middleware authenticates every request and stores the user id in the
// request context. Unauthenticated requests are rejected before they
// reach a handler.
func Middleware(a Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := a.Authenticate(r)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"error":"unauthenticated"}`))
				return
			}
			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), userID)))
		})
	}
}
