package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/bryanwahyu/artfeedback/internal/application"
	"github.com/bryanwahyu/artfeedback/internal/application/analysis"
	"github.com/bryanwahyu/artfeedback/internal/config"
	"github.com/bryanwahyu/artfeedback/internal/domain/critique"
	"github.com/bryanwahyu/artfeedback/internal/infra/ai"
	"github.com/bryanwahyu/artfeedback/internal/infra/cache"
	"github.com/bryanwahyu/artfeedback/internal/infra/datasvc"
	"github.com/bryanwahyu/artfeedback/internal/infra/httpserver"
	"github.com/bryanwahyu/artfeedback/internal/infra/imaging"
	"github.com/bryanwahyu/artfeedback/internal/infra/storage"
	"github.com/bryanwahyu/artfeedback/internal/middleware"
	"github.com/bryanwahyu/artfeedback/internal/platform/logger"
)

func main() {
	// path config.yaml
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

	ctx := context.Background()
	checkers := map[string]middleware.HealthChecker{}

	vision, err := ai.NewVisionClient(cfg)
	if err != nil {
		lg.Fatal("vision client init failed", "provider", cfg.AI.Provider, "error", err)
	}

	metrics := middleware.NewMetrics()
	svc := &analysis.Service{
		Vision:   vision,
		Analyzer: critique.NewAnalyzer(),
		Metrics:  metrics,
		Clock:    application.SystemClock{},
		Log:      lg,
	}

	// data service (opsional)
	if cfg.DataService.URL != "" {
		client := datasvc.NewClient(cfg.DataService.URL, cfg.DataService.APIKey, cfg.DataService.Timeout)
		svc.Store = client
		checkers["datasvc"] = client
	} else {
		lg.Warn("data service not configured; results will not be saved")
	}

	if cfg.Minio.Enabled {
		store, err := storage.New(ctx, storage.Options{
			Endpoint:   cfg.Minio.Endpoint,
			Region:     cfg.Minio.Region,
			Bucket:     cfg.Minio.BucketName,
			AccessKey:  cfg.Minio.AccessKey,
			SecretKey:  cfg.Minio.SecretKey,
			UseSSL:     cfg.Minio.UseSSL,
			PresignTTL: cfg.Minio.PresignTTL,
		})
		if err != nil {
			lg.Fatal("minio init failed", "endpoint", cfg.Minio.Endpoint, "error", err)
		}
		svc.Images = store
		checkers["minio"] = store
	}

	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// cache is optional, keep serving without it
			lg.Warn("redis unavailable, caching disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			defer rc.Close()
			svc.Cache = rc
			svc.CacheTTL = cfg.Redis.TTL
			checkers["redis"] = rc
		}
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimit.Burst, cfg.RateLimit.Rate)
	defer limiter.Close()

	ready := new(atomic.Bool)
	handler := httpserver.NewRouter(svc, httpserver.Options{
		Log:            lg,
		Metrics:        metrics,
		Limiter:        limiter,
		JWTSecret:      cfg.Auth.JWTSecret,
		JWTIssuer:      cfg.Auth.Issuer,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Imaging:        imaging.Processor{
			MaxDimension: cfg.Imaging.MaxDimension,
			Quality:      cfg.Imaging.JPEGQuality,
			MaxPixels:    cfg.Imaging.MaxPixels,
		},
		Checkers:       checkers,
		Ready:          ready,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		lg.Info("server listening", "addr", addr, "provider", vision.Name(), "persistence", svc.Store != nil)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", "error", err)
		}
	}()
	ready.Store(true)

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	ready.Store(false)
	lg.Info("shutting down server...")

	ctx2, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		lg.Error("shutdown error", "error", err)
	}
}
