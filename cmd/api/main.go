package main

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/capsulehq/capsule-api/internal/config"
	"github.com/capsulehq/capsule-api/internal/db"
	"github.com/capsulehq/capsule-api/internal/repo"
	"github.com/capsulehq/capsule-api/internal/scheduler"
)

func main() {
	cfg := config.Load()

	if cfg.LogFormat == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if cfg.Env == "prod" && cfg.JWTSecret == config.DefaultJWTSecret {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	database, err := db.Connect(
		cfg.DBHost,
		cfg.DBPort,
		cfg.DBName,
		cfg.DBUser,
		cfg.DBPass,
		cfg.DBMaxOpenConns,
		cfg.DBMaxIdleConns,
	)
	if err != nil {
		slog.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.Migrate(cfg.DatabaseURL()); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	go scheduler.Run(repo.NewCapsuleRepo(database))

	r := newRouter(database, cfg)

	addr := ":" + cfg.Port
	slog.Info("starting server", "addr", addr, "env", cfg.Env)

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		err = http.ListenAndServeTLS(addr, cfg.TLSCertFile, cfg.TLSKeyFile, r)
	} else {
		err = http.ListenAndServe(addr, r)
	}
	if err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
