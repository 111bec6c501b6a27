package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-jobsearch-backend/config"
	"go-jobsearch-backend/internal/analytics"
	"go-jobsearch-backend/internal/cache"
	v1 "go-jobsearch-backend/internal/delivery/http/v1"
	"go-jobsearch-backend/internal/filter"
	"go-jobsearch-backend/internal/repository/postgres"
	"go-jobsearch-backend/internal/repository/profilecache"
	"go-jobsearch-backend/internal/usecase"
	"go-jobsearch-backend/pkg/database"
	"go-jobsearch-backend/pkg/logger"
	"go-jobsearch-backend/pkg/redis"

	"github.com/go-playground/validator/v10"
)

func main() {
	// 1. Load Config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Setup Logger
	logger.Init()
	logger.Log.Info("Starting job search backend", "port", cfg.Port)

	// 3. Setup Database
	dbPool, err := database.NewPostgresConnection(cfg.DBUrl)
	if err != nil {
		logger.Log.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	// 4. Setup Redis (cache + signals + analytics share one client).
	// The engine runs without it: cache and personalization fail open.
	if err := redis.Initialize(redis.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err != nil {
		logger.Log.Warn("Redis unavailable, running uncached", "error", err)
	}
	defer redis.Close()
	rdb := redis.Client()

	// 5. Setup Repositories
	searchRepo := postgres.NewJobSearchRepository(dbPool)
	signalProvider := profilecache.NewSignalProvider(rdb)

	// 6. Setup Cache Policy
	var cacheStore cache.Store
	if rdb != nil {
		cacheStore = cache.NewRedisStore(rdb)
	}
	cachePolicy := cache.NewPolicy(
		cacheStore,
		time.Duration(cfg.CacheTTLVolatileSeconds)*time.Second,
		time.Duration(cfg.CacheTTLStaticSeconds)*time.Second,
		logger.Log,
	)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	if cfg.CacheInvalidationChannel != "" && rdb != nil {
		invalidator := cache.NewInvalidator(rdb, cfg.CacheInvalidationChannel, logger.Log)
		go invalidator.Listen(rootCtx)
	}

	// 7. Setup Analytics Batcher
	batcher := analytics.NewBatcher(
		rdb,
		cfg.AnalyticsStream,
		cfg.AnalyticsFlushSize,
		time.Duration(cfg.AnalyticsFlushSeconds)*time.Second,
		logger.Log,
	)
	defer batcher.Close()

	// 8. Setup UseCases
	validate := validator.New()
	normalizer := filter.NewNormalizer(validate, cfg.HomeMarketCountry)
	searchUC := usecase.NewSearchUsecase(
		normalizer,
		searchRepo,
		cachePolicy,
		signalProvider,
		batcher,
		cfg.StorageRetries,
		cfg.CustomSortMaxRows,
	)

	// 9. Setup Router
	router := v1.NewRouter(v1.RouterDeps{
		SearchUC: searchUC,
	})

	// 10. Start Server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Error("Listen failed", "error", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Error("Server forced to shutdown", "error", err)
	}

	logger.Log.Info("Server exiting")
}
