package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/database"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/middleware"
	"github.com/iliyamo/store-rating/internal/queue"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/router"
	"github.com/iliyamo/store-rating/internal/seed"
	"github.com/iliyamo/store-rating/internal/service"
)

func main() {
	boot := context.Background()
	logg := logger.New(logger.Options{ServiceName: "store-rating"})

	cfg, err := config.Load()
	if err != nil {
		logg.Error(boot, "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "store-rating",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logg.Error(boot, "failed to open database", err)
		os.Exit(1)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logg.Error(boot, "error closing database", err)
		}
	}()

	// Redis is optional: without it the cache and rate limiter pass through.
	rdb := config.NewRedisClient(cfg.Redis)
	if rdb == nil {
		logg.Warn(boot, "redis unreachable, cache and rate limiting disabled", nil)
	} else {
		defer func() { _ = rdb.Close() }()
	}
	cache := middleware.NewResponseCache(cfg.Cache, rdb, logg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	storeOpts := []service.StoreOption{service.WithCache(cache), service.WithLogger(logg)}
	if cfg.Events.Enabled {
		pub := queue.NewPublisher(cfg.Events.URL, logg)
		defer func() { _ = pub.Close() }()
		storeOpts = append(storeOpts, service.WithEvents(pub))
	}
	if cfg.Events.Consumer {
		consumer := queue.NewConsumer(cfg.Events.URL, cfg.Events.LogFilePath, logg)
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "rating consumer stopped", err)
			}
		}()
	}

	users := repository.NewUserRepo(db)
	auth := service.NewAuthService(users, service.AuthConfig{
		Secret:     cfg.JWTSecret,
		TokenTTL:   cfg.TokenTTL,
		BcryptCost: cfg.BcryptCost,
	})
	stores := service.NewStoreService(repository.NewStoreRepo(db), repository.NewRatingRepo(db), users, storeOpts...)
	admin := service.NewAdminService(users, repository.NewStatsRepo(db), stores, cfg.BcryptCost)

	if cfg.Bootstrap.Enabled() {
		if _, err := seed.Run(ctx, admin, stores, logg, seed.Options{Admin: seed.AdminFromConfig(cfg.Bootstrap)}); err != nil {
			logg.Error(ctx, "failed to bootstrap administrator", err)
			os.Exit(1)
		}
	}

	e := router.New(router.Deps{
		Auth:      auth,
		Stores:    stores,
		Admin:     admin,
		DB:        db,
		Log:       logg,
		Cache:     cache,
		RateLimit: middleware.NewTokenBucket(cfg.RateLimit, rdb, logg),

		CORSOrigins: cfg.CORS.Origins(),
	})

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logg.Info(logg.WithField(ctx, "addr", addr), "listening (env="+cfg.Env+")")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "server stopped unexpectedly", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logg.Error(shutdownCtx, "graceful shutdown failed", err)
	}
	logg.Info(shutdownCtx, "server stopped")
}
