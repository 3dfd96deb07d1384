package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/application"
	"github.com/bryanwahyu/artfeedback/internal/application/artworks"
	"github.com/bryanwahyu/artfeedback/internal/config"
	"github.com/bryanwahyu/artfeedback/internal/domain/artwork"
	mysqlp "github.com/bryanwahyu/artfeedback/internal/infra/db/mysql"
	pgp "github.com/bryanwahyu/artfeedback/internal/infra/db/postgres"
	"github.com/bryanwahyu/artfeedback/internal/infra/httpserver"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

func main() {
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	lg, err := logger.New(cfg.Log.Mode, cfg.Log.Level, logger.Options{Redact: cfg.Log.Redact, Salt: cfg.Log.Salt})
	if err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	defer lg.Sync()

	if cfg.DataService.APIKey == "" {
		lg.Fatal("dataService.apiKey is required")
	}

	ctx := context.Background()
	db, repo, err := openRepository(ctx, cfg)
	if err != nil {
		lg.Fatal("database init failed", "driver", cfg.Database.Driver, "error", err)
	}
	defer db.Close()

	svc := &artworks.Service{Repo: repo, Clock: application.SystemClock{}}
	handler := httpserver.NewDataRouter(svc, httpserver.DataOptions{
		Log:      lg,
		APIKeys:  map[string]string{"api": cfg.DataService.APIKey},
		Checkers: map[string]middleware.HealthChecker{"database": &middleware.DatabaseHealthChecker{DB: db}},
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("data service listening", "addr", addr, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	lg.Info("shutting down data service...")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", "error", err)
	}
}

// openRepository connects the configured driver and makes sure the tables exist.
func openRepository(ctx context.Context, cfg *config.Config) (*sql.DB, artwork.Repository, error) {
	switch cfg.Database.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := mysqlp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, mysqlp.NewArtworkRepository(db), nil
	default:
		db, err := pgp.Connect(ctx, cfg.Database.Driver, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, err
		}
		if err := pgp.EnsureSchema(ctx, db); err != nil {
			db.Close()
			return nil, nil, err
		}
		return db, pgp.NewArtworkRepository(db), nil
	}
}
