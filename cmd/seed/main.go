package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/iliyamo/store-rating/internal/config"
	"github.com/iliyamo/store-rating/internal/database"
	"github.com/iliyamo/store-rating/internal/logger"
	"github.com/iliyamo/store-rating/internal/repository"
	"github.com/iliyamo/store-rating/internal/seed"
	"github.com/iliyamo/store-rating/internal/service"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "seed"})

	demo := flag.Bool("demo", false, "also create demo owners, users, stores and ratings")
	flag.Parse()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "seed",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Format:      cfg.LogFormat,
	})
	if !cfg.Bootstrap.Enabled() && !*demo {
		fmt.Fprintln(os.Stderr, "nothing to do: set ADMIN_EMAIL and ADMIN_PASSWORD, or pass -demo")
		os.Exit(2)
	}

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	requireResource(ctx, logg, "database", err)
	defer func() { _ = db.Close() }()

	users := repository.NewUserRepo(db)
	stores := service.NewStoreService(repository.NewStoreRepo(db), repository.NewRatingRepo(db), users, service.WithLogger(logg))
	admin := service.NewAdminService(users, repository.NewStatsRepo(db), stores, cfg.BcryptCost)

	opts := seed.Options{Demo: *demo}
	if cfg.Bootstrap.Enabled() {
		opts.Admin = seed.AdminFromConfig(cfg.Bootstrap)
	}
	res, err := seed.Run(ctx, admin, stores, logg, opts)
	if err != nil {
		logg.Error(ctx, "seed failed", err)
		os.Exit(1)
	}
	fmt.Printf("seed complete: %d users, %d stores, %d ratings created\n", res.Users, res.Stores, res.Ratings)
}

func requireResource(ctx context.Context, logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, "failed to initialize "+name, err)
	os.Exit(1)
}
