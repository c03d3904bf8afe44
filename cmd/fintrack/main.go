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
	"golang.org/x/sync/errgroup"

	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/events"
	apphttp "fintrack/internal/http"
	"fintrack/internal/log"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
)

func main() {
	// Load .env for local development; absent files are fine in production.
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}

	// A missing or broken database leaves the process serving with
	// storage marked unavailable instead of crashing: reads come back
	// empty, writes fail with a 503.
	store, err := storage.Open(cfg.SQLiteDBPath, cfg.OwnerOpenID)
	if err != nil {
		logger.Warn("storage unavailable, continuing degraded",
			log.FieldError, err,
			"path", cfg.SQLiteDBPath)
		store = storage.Unavailable()
	}
	defer store.Close()

	var sink services.EventSink
	if cfg.EventsEnabled() {
		publisher, err := events.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Error("failed to initialize events publisher", log.FieldError, err)
			os.Exit(1)
		}
		defer publisher.Close()
		sink = publisher
		logger.Info("ledger events enabled",
			"exchange", cfg.AMQPExchange,
			"queue", cfg.AMQPQueue)
	} else {
		logger.Info("ledger events disabled, no AMQP URL configured")
	}

	stats := services.NewStatsService(store, logger, cfg.StatsCacheSize, cfg.StatsCacheTTL)
	ledger := services.NewLedgerService(store, sink, stats, logger)
	sessions := session.NewManager(cfg.SessionSecret, cfg.SessionCookieName, store, logger)

	cacheManager := cache.NewManager()
	for _, c := range stats.Caches() {
		cacheManager.Register(c)
	}
	cacheManager.StartCleanup(5 * time.Minute)
	defer cacheManager.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		Store:              store,
		Ledger:             ledger,
		Stats:              stats,
		Sessions:           sessions,
		Logger:             logger,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received", log.FieldOperation, log.OpShutdown)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("server stopped gracefully")
}
