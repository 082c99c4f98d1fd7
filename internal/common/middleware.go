package common

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var errNoCredentials = errors.New("missing credentials")

type contextKey string

const (
	ctxUserID contextKey = "user_id"
	ctxEmail  contextKey = "email"
)

// AuthMiddleware enforces a Bearer token on every request it wraps and
// injects the user identity into the request context. Unauthenticated
// requests get a 401 carrying a Location hint pointing at the login
// entry with the original path as ?next=, so the client can resume
// after sign-in.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, err := claimsFromRequest(r)
		if err != nil {
			w.Header().Set("Location", "/login?next="+url.QueryEscape(r.URL.Path))
			RespondError(w, http.StatusUnauthorized, "authorization required")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.UserID)
		ctx = context.WithValue(ctx, ctxEmail, claims.Email)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func claimsFromRequest(r *http.Request) (*Claims, error) {
	auth := r.Header.Get("Authorization")
	parts := strings.Fields(auth)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		// WebSocket clients cannot set headers; allow ?token= as well.
		if tok := r.URL.Query().Get("token"); tok != "" {
			return ValidToken(tok)
		}
		return nil, errNoCredentials
	}
	return ValidToken(parts[1])
}

// UserIDFrom extracts the authenticated user id placed by AuthMiddleware.
func UserIDFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxUserID).(string)
	return id, ok && id != ""
}

// EmailFrom extracts the authenticated email placed by AuthMiddleware.
func EmailFrom(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(ctxEmail).(string)
	return email, ok && email != ""
}

// WithUserID is a test helper mirroring what AuthMiddleware does.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxUserID, userID)
}

// OptionalUserID resolves the caller's identity on public routes where
// a session improves the response but is not required.
func OptionalUserID(r *http.Request) string {
	claims, err := claimsFromRequest(r)
	if err != nil {
		return ""
	}
	return claims.UserID
}

// LoggingMiddleware logs each request with its duration.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s (%v)", r.Method, r.URL.Path, time.Since(start))
	})
}
