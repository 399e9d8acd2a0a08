package main

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/capsulehq/capsule-api/internal/auth"
	"github.com/capsulehq/capsule-api/internal/config"
	"github.com/capsulehq/capsule-api/internal/handlers"
	"github.com/capsulehq/capsule-api/internal/middleware"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// newRouter builds the full API router over the given database. Split from
// main so integration tests can mount it on a sqlmock-backed DB.
func newRouter(database *sql.DB, cfg config.Config) chi.Router {
	userRepo := repo.NewUserRepo(database)
	capsuleRepo := repo.NewCapsuleRepo(database)
	commentRepo := repo.NewCommentRepo(database)

	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	codec := auth.NewTokenCodec([]byte(cfg.JWTSecret))
	ttl := time.Duration(cfg.JWTExpireHours) * time.Hour

	authHandler := &handlers.AuthHandler{Service: auth.NewService(userRepo, hasher, codec, ttl)}
	capsuleHandler := &handlers.CapsuleHandler{Repo: capsuleRepo}
	commentHandler := &handlers.CommentHandler{Repo: commentRepo, Capsules: capsuleRepo}
	userHandler := &handlers.UserHandler{}

	requireAuth := middleware.RequireAuth(codec, userRepo)
	optionalAuth := middleware.OptionalAuth(codec, userRepo)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Prometheus)
	r.Use(middleware.RequestLog)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != "" && cfg.TLSKeyFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(middleware.DefaultMaxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := database.PingContext(r.Context()); err != nil {
			handlers.JSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Use(middleware.AuthRateLimiter().Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/users/me", userHandler.Me)
			r.Post("/timeCapsules", capsuleHandler.CreateCapsule)
			r.Put("/timeCapsules/{id}", capsuleHandler.UpdateCapsule)
			r.Delete("/timeCapsules/{id}", capsuleHandler.DeleteCapsule)
			r.Post("/timeCapsules/{id}/comments", commentHandler.CreateComment)
			r.Put("/comments/{id}", commentHandler.UpdateComment)
			r.Delete("/comments/{id}", commentHandler.DeleteComment)
		})

		// Read routes take an optional token: public capsules need none,
		// private ones reveal themselves only to their owner or recipients.
		r.Group(func(r chi.Router) {
			r.Use(optionalAuth)
			r.Get("/timeCapsules", capsuleHandler.ListCapsules)
			r.Get("/timeCapsules/{id}", capsuleHandler.GetCapsule)
			r.Get("/timeCapsules/{id}/comments", commentHandler.ListComments)
		})
	})

	return r
}
