package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortlinks/internal/config"
	"github.com/serroba/shortlinks/internal/container"
	"github.com/serroba/shortlinks/internal/messaging"
	"github.com/serroba/shortlinks/internal/shortener"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("load .env: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	injector := container.New(options(cfg))
	logger := do.MustInvoke[*zap.Logger](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	ctx, cancel := context.WithCancel(context.Background())

	if err := group.Start(ctx); err != nil {
		logger.Fatal("failed to start consumer group", zap.Error(err))
	}

	logger.Info("consumer started",
		zap.String("store", cfg.Store.Backend),
		zap.String("group", cfg.Consumer.Group),
	)

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutting down")
	cancel()

	if err := injector.Shutdown(); err != nil {
		logger.Error("shutdown error", zap.Error(err))
	}

	logger.Info("shutdown complete")
	_ = logger.Sync()
}

// options maps consumer config onto the shared container options. The broker is always Redis streams.
func options(cfg *config.Config) *container.Options {
	return &container.Options{
		Store:         cfg.Store.Backend,
		SQLitePath:    cfg.Store.SQLitePath,
		DatabaseURL:   cfg.Store.DatabaseURL,
		RedisAddr:     cfg.Redis.Addr,
		CacheTTL:      int(cfg.Store.CacheTTL.Seconds()),
		Broker:        container.BrokerRedis,
		ConsumerGroup: cfg.Consumer.Group,
		CodeLength:    shortener.DefaultCodeLength,
		MaxAttempts:   shortener.DefaultMaxAttempts,
		LogFormat:     cfg.Log.Format,
		LogLevel:      cfg.Log.Level,
	}
}
