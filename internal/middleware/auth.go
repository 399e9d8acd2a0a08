package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/capsulehq/capsule-api/internal/auth"
	"github.com/capsulehq/capsule-api/internal/metrics"
	"github.com/capsulehq/capsule-api/internal/models"
	"github.com/capsulehq/capsule-api/internal/repo"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Principal returns the authenticated user attached by RequireAuth or
// OptionalAuth, or nil for anonymous requests.
func Principal(ctx context.Context) *models.User {
	p, _ := ctx.Value(principalKey).(*models.User)
	return p
}

// WithPrincipal returns a context carrying u as the authenticated principal.
// Used by the auth middlewares; handler tests use it to fake authentication.
func WithPrincipal(ctx context.Context, u *models.User) context.Context {
	return context.WithValue(ctx, principalKey, u)
}

func authError(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func serverError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	json.NewEncoder(w).Encode(map[string]string{"error": "internal server error"})
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	token := strings.TrimPrefix(header, "Bearer ")
	if token == header {
		// Header present but not a Bearer scheme.
		return ""
	}
	return strings.TrimSpace(token)
}

// RequireAuth authenticates a request: it verifies the bearer token and loads
// the user it names, attaching the user to the request context. It rejects
// with 401 on a missing, invalid, or expired token, and when the subject no
// longer exists (user deleted after issuance). A store failure that is not a
// missing row answers 500; it says nothing about the token. It never
// authorizes; ownership checks live with the handlers.
func RequireAuth(codec *auth.TokenCodec, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				metrics.TokenRejectionsTotal.WithLabelValues("missing").Inc()
				authError(w, "missing token")
				return
			}

			subject, err := codec.Verify(token)
			if err != nil {
				if errors.Is(err, auth.ErrTokenExpired) {
					metrics.TokenRejectionsTotal.WithLabelValues("expired").Inc()
					authError(w, "token expired")
				} else {
					metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
					authError(w, "invalid token")
				}
				return
			}

			user, err := users.GetByID(r.Context(), subject)
			if errors.Is(err, sql.ErrNoRows) {
				// A well-signed token naming a deleted user is still invalid.
				metrics.TokenRejectionsTotal.WithLabelValues("invalid").Inc()
				authError(w, "invalid token")
				return
			}
			if err != nil {
				slog.Error("auth: load subject", "subject", subject, "error", err)
				serverError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}

// OptionalAuth attaches a principal when a valid bearer token is present and
// otherwise lets the request through anonymously. Read routes use it so
// public capsules need no token while private ones can recognize their owner
// and recipients.
func OptionalAuth(codec *auth.TokenCodec, users *repo.UserRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			subject, err := codec.Verify(token)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			user, err := users.GetByID(r.Context(), subject)
			if errors.Is(err, sql.ErrNoRows) {
				// Deleted subject: continue anonymously.
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				// A store outage must not quietly downgrade an authenticated
				// read to anonymous; private capsules would vanish.
				slog.Error("auth: load subject", "subject", subject, "error", err)
				serverError(w)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), user)))
		})
	}
}
