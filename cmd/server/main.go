package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"transient-cache-api/internal/auth"
	"transient-cache-api/internal/cache"
	"transient-cache-api/internal/config"
	"transient-cache-api/internal/database"
	"transient-cache-api/internal/logging"
	"transient-cache-api/internal/routes"
	"transient-cache-api/internal/transient"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: ", err)
	}

	logger, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		log.Fatal("Failed to build logger: ", err)
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	err = run(cfg, logger)
	_ = logger.Sync()
	if err != nil {
		log.Fatal(err)
	}
}

// run serves until SIGINT/SIGTERM or a listener failure. The HTTP server
// is drained before the store is closed.
func run(cfg config.Config, logger *zap.Logger) error {
	store, closer, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open transient store: %w", err)
	}
	defer func() {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close transient store", zap.Error(err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if purger, ok := store.(transient.Purger); ok {
		go transient.RunPurger(ctx, purger, cfg.Cache.PurgeInterval, logger.Named("purger"))
	}

	layer := cache.New[json.RawMessage](store, cache.Options{
		Prefix: cfg.Cache.KeyPrefix,
		Logger: logger.Named("cache"),
	})

	ginRoutes := routes.SetupRoutes(routes.Deps{
		Cache:         layer,
		Issuer:        auth.NewIssuer(cfg.Auth),
		AdminPassword: cfg.Auth.AdminPassword,
		Logger:        logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           ginRoutes,
		ReadHeaderTimeout: 10 * time.Second,
	}
	logger.Info("Server starting",
		zap.String("addr", srv.Addr),
		zap.String("driver", cfg.Cache.Driver),
		zap.String("prefix", cfg.Cache.KeyPrefix),
	)

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// openStore builds the configured transient backend.
func openStore(cfg config.Config) (transient.Store, io.Closer, error) {
	switch cfg.Cache.Driver {
	case "sqlite":
		db, err := database.Open(cfg.Cache.DBPath, database.LogLevel(cfg.LogLevel))
		if err != nil {
			return nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, err
		}
		return transient.NewOptionsStore(db), sqlDB, nil
	case "bolt":
		store, err := transient.OpenBolt(cfg.Cache.BoltPath, transient.BoltOptions{})
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case "memory":
		return transient.NewMemoryStore(transient.MemoryOptions{ConcurrencySafe: true}),
			closerFunc(func() error { return nil }), nil
	}
	return nil, nil, fmt.Errorf("unknown cache driver %q", cfg.Cache.Driver)
}
