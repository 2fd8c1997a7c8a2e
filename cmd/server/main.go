package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/campuslink/campuslink-be/internal/cache"
	"github.com/campuslink/campuslink-be/internal/config"
	"github.com/campuslink/campuslink-be/internal/server"
	"github.com/campuslink/campuslink-be/internal/storage"
	mongostore "github.com/campuslink/campuslink-be/internal/storage/mongo"
	"github.com/campuslink/campuslink-be/internal/storage/postgres"
	"github.com/campuslink/campuslink-be/internal/storage/sqlite"
	"github.com/campuslink/campuslink-be/internal/storage/unavailable"
)

const connectTimeout = 10 * time.Second

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	store := openStore(cfg, logger)
	defer store.Close()

	groupCache := openCache(cfg, logger)

	srv := server.New(cfg, store, groupCache, logger)

	go func() {
		logger.Info("campuslink backend listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

// openStore connects the configured storage engine. A connection failure does
// not abort startup: the service comes up degraded with a fail-fast store so
// health reporting stays reachable.
func openStore(cfg config.Config, logger *zap.Logger) storage.Store {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	opts := storage.Options{UniqueGroupNames: cfg.UniqueGroupNames}

	var (
		store storage.Store
		err   error
	)
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		store, err = postgres.NewStore(ctx, cfg.DatabaseURL, opts)
	case config.DriverMongo:
		store, err = mongostore.NewStore(ctx, cfg.MongoURI, cfg.MongoDB, opts)
	case config.DriverSQLite:
		store, err = sqlite.Open(ctx, cfg.SQLitePath, opts)
	}
	if err != nil {
		logger.Error("storage init failed, starting degraded",
			zap.String("driver", cfg.StorageDriver), zap.Error(err))
		return unavailable.New(err)
	}
	logger.Info("storage connected", zap.String("driver", cfg.StorageDriver))
	return store
}

func openCache(cfg config.Config, logger *zap.Logger) *cache.GroupCache {
	if !cfg.CacheEnabled() {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("redis unreachable, group cache disabled", zap.Error(err))
		return nil
	}
	logger.Info("group cache enabled", zap.String("addr", cfg.RedisAddr))
	return cache.NewGroupCache(rdb, cfg.CacheTTL)
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
