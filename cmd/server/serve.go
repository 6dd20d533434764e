package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"landmarket/server/config"
	"landmarket/server/internal/account"
	"landmarket/server/internal/api"
	"landmarket/server/internal/auth"
	"landmarket/server/internal/authz"
	"landmarket/server/internal/cache"
	"landmarket/server/internal/database"
	"landmarket/server/internal/inquiry"
	"landmarket/server/internal/listing"
	"landmarket/server/internal/metrics"
	"landmarket/server/internal/moderation"
	"landmarket/server/internal/processor"
	"landmarket/server/internal/queue"
	"landmarket/server/internal/scheduler"
	"landmarket/server/internal/stats"
	"landmarket/server/internal/storage"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}
			if err := cfg.ValidateServe(); err != nil {
				return err
			}
			db, err := openDatabase(cfg, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg, db, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, db *database.Database, logger *logrus.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.New(reg)
	guard := authz.NewGuard(m)

	// Moderation events flow workflow -> queue -> batch processor -> db.
	events := queue.NewEventQueue(cfg.Queue.BufferSize, logger)
	audit := processor.NewBatchProcessor(db, events, cfg, logger, m)
	audit.Start()
	events.Start()
	defer func() {
		events.Close()
		audit.Stop()
	}()

	statsCache := openStatsCache(ctx, cfg, logger)
	defer statsCache.Close()

	objects, err := openObjectStore(ctx, cfg, logger)
	if err != nil {
		return err
	}

	tokens := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	statsSvc := stats.NewService(db, statsCache, guard, cfg.Redis.StatsCacheTTL, logger)
	svc := api.Services{
		Listings: listing.NewService(db, guard, m, listing.Options{
			FeaturedLimit: cfg.Listing.FeaturedLimit,
			MaxPageSize:   cfg.Listing.MaxPageSize,
		}, logger),
		Workflow: moderation.NewWorkflow(db, db, guard, events, m, logger),
		Journal:  moderation.NewJournal(db, guard),
		Accounts: account.NewService(db, guard, tokens, account.Options{
			AutoVerify:  cfg.Auth.AutoVerify,
			MaxPageSize: cfg.Listing.MaxPageSize,
		}, logger),
		Inquiries: inquiry.NewService(db, guard, m, cfg.Listing.MaxPageSize, logger),
		Stats:     statsSvc,
		Uploads:   storage.NewUploader(objects, guard, cfg.Storage.MaxUploadSize),
	}

	jobs, err := scheduler.NewScheduler(db, m, statsSvc, scheduler.Options{
		Interval:   cfg.Scheduler.Interval,
		StaleAfter: cfg.Scheduler.PendingStaleAfter,
	}, logger)
	if err != nil {
		return err
	}
	if err := jobs.Start(); err != nil {
		return err
	}
	defer func() {
		if err := jobs.Stop(); err != nil {
			logger.WithError(err).Warn("Scheduler did not stop cleanly")
		}
	}()

	api.SetMode(logger.GetLevel())
	router := api.NewRouter(api.NewHandler(svc, db, logger), api.RouterOptions{
		CORSOrigins: cfg.Server.CORSOrigins,
		Metrics:     m,
		Gatherer:    reg,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

// openStatsCache falls back to no caching when Redis is absent or down;
// counters are then read from the database on every request.
func openStatsCache(ctx context.Context, cfg *config.Config, logger *logrus.Logger) cache.StatsCache {
	if cfg.Redis.Addr == "" {
		return cache.NewNoop()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	c, err := cache.NewRedis(pingCtx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		logger.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("Redis unavailable, stats cache disabled")
		return cache.NewNoop()
	}
	return c
}

// openObjectStore returns nil when storage is not configured, which turns
// uploads off.
func openObjectStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (storage.ObjectStore, error) {
	if cfg.Storage.Endpoint == "" {
		logger.Info("MINIO_ENDPOINT not set, uploads disabled")
		return nil, nil
	}
	return storage.NewMinio(ctx, storage.Options{
		Endpoint:      cfg.Storage.Endpoint,
		AccessKey:     cfg.Storage.AccessKey,
		SecretKey:     cfg.Storage.SecretKey,
		UseSSL:        cfg.Storage.UseSSL,
		Bucket:        cfg.Storage.Bucket,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	})
}
