package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/multierr"

	"github.com/keepsake-app/keepsake-backend/api/controllers"
	"github.com/keepsake-app/keepsake-backend/api/routes"
	"github.com/keepsake-app/keepsake-backend/internal/auth"
	"github.com/keepsake-app/keepsake-backend/internal/photos"
	"github.com/keepsake-app/keepsake-backend/internal/wishlist"
	"github.com/keepsake-app/keepsake-backend/pkg/config"
	"github.com/keepsake-app/keepsake-backend/pkg/db"
	"github.com/keepsake-app/keepsake-backend/pkg/instance"
	"github.com/keepsake-app/keepsake-backend/pkg/logger"
	"github.com/keepsake-app/keepsake-backend/pkg/metrics"
	"github.com/keepsake-app/keepsake-backend/pkg/migrate"
	"github.com/keepsake-app/keepsake-backend/pkg/redis"
	"github.com/keepsake-app/keepsake-backend/pkg/storage"
	"github.com/keepsake-app/keepsake-backend/pkg/storage/gcs"
	"github.com/keepsake-app/keepsake-backend/pkg/storage/local"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	level := logger.ParseLevel(cfg.App.LogLevel)
	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       &level,
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	exitCode := 0
	defer func() { os.Exit(exitCode) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var closers []func() error
	defer func() {
		var closeErr error
		for i := len(closers) - 1; i >= 0; i-- {
			closeErr = multierr.Append(closeErr, closers[i]())
		}
		if closeErr != nil {
			logg.Error(context.Background(), "error releasing resources", closeErr)
		}
	}()

	dbClient, err := db.New(ctx, cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	closers = append(closers, dbClient.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		logg.Error(ctx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	blobBackend, err := newBlobStore(ctx, cfg, logg)
	requireResource(ctx, logg, "blob store", err)
	blobs := storage.Instrument(blobBackend, metrics.NewBlobMetrics(reg))

	gate, err := auth.NewGate(cfg.Admin.Secret(), cfg.Admin.PasswordHash)
	requireResource(ctx, logg, "admin gate", err)
	if cfg.Admin.UsingFallback() {
		logg.Warn(ctx, "KEEPSAKE_ADMIN_PASSWORD is not set; using the built-in default password")
	}

	checks := []controllers.ReadinessCheck{
		{Name: "database", Pinger: dbClient},
		{Name: "blob_store", Pinger: blobs},
	}

	deps := routes.Deps{
		Config:      cfg,
		Logger:      logg,
		Gate:        gate,
		Gatherer:    reg,
		HTTPMetrics: metrics.NewHTTPMetrics(reg),
	}

	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(ctx, cfg.Redis, logg)
		requireResource(ctx, logg, "redis", err)
		closers = append(closers, redisClient.Close)
		deps.RateLimiter = redisClient
		checks = append(checks, controllers.ReadinessCheck{Name: "redis", Pinger: redisClient})
	} else {
		logg.Info(ctx, "redis not configured; admin verify rate limiting disabled")
	}
	deps.ReadinessChecks = checks

	deps.Photos, err = photos.NewService(photos.ServiceParams{
		Repo:   photos.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Blobs:  blobs,
		Logger: logg,
	})
	requireResource(ctx, logg, "photo service", err)

	deps.Wishlist, err = wishlist.NewService(wishlist.ServiceParams{
		Repo:   wishlist.NewRepository(dbClient.DB()),
		Tx:     dbClient,
		Blobs:  blobs,
		Logger: logg,
	})
	requireResource(ctx, logg, "wishlist service", err)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	serverCtx := logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.ID(),
		"driver":   dbClient.Driver(),
		"storage":  cfg.Storage.Provider,
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(serverCtx, "starting api server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logg.Error(serverCtx, "api server stopped unexpectedly", err)
			exitCode = 1
			return
		}
	case <-ctx.Done():
	}

	logg.Info(serverCtx, "shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(serverCtx, "graceful shutdown failed", err)
		exitCode = 1
	}
}

func newBlobStore(ctx context.Context, cfg *config.Config, logg *logger.Logger) (storage.Store, error) {
	if cfg.Storage.IsGCS() {
		client, err := gcs.NewClient(ctx, cfg.GCS, cfg.GCP, logg)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
	store, err := local.New(cfg.Storage.LocalDir)
	if err != nil {
		return nil, err
	}
	logg.Info(logg.WithField(ctx, "root", store.Root()), "using local blob store")
	return store, nil
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "resource not working: "+resource, err)
	os.Exit(1)
}
