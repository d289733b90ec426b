package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pantrykit/pantry-backend/api/routes"
	"github.com/pantrykit/pantry-backend/internal/cart"
	"github.com/pantrykit/pantry-backend/internal/items"
	"github.com/pantrykit/pantry-backend/internal/ledger"
	"github.com/pantrykit/pantry-backend/internal/recipes"
	"github.com/pantrykit/pantry-backend/internal/tags"
	"github.com/pantrykit/pantry-backend/internal/vendors"
	"github.com/pantrykit/pantry-backend/pkg/config"
	"github.com/pantrykit/pantry-backend/pkg/db"
	"github.com/pantrykit/pantry-backend/pkg/logger"
	"github.com/pantrykit/pantry-backend/pkg/metrics"
	"github.com/pantrykit/pantry-backend/pkg/migrate"
)

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

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	inventoryMetrics := metrics.NewInventoryMetrics(registry)

	ledgerService, err := ledger.NewService(dbClient, ledger.NewRepository(dbClient.DB()), inventoryMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create ledger service", err)
		os.Exit(1)
	}

	itemService, err := items.NewService(dbClient, items.NewRepository(dbClient.DB()), ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create item service", err)
		os.Exit(1)
	}

	cartService, err := cart.NewService(dbClient, cart.NewRepository(dbClient.DB()), ledgerService, inventoryMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	tagService, err := tags.NewService(tags.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create tag service", err)
		os.Exit(1)
	}

	vendorService, err := vendors.NewService(vendors.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create vendor service", err)
		os.Exit(1)
	}

	recipeService, err := recipes.NewService(dbClient, recipes.NewRepository(dbClient.DB()), ledgerService)
	if err != nil {
		logg.Error(context.Background(), "failed to create recipe service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
		"db":   cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			registry,
			itemService,
			ledgerService,
			cartService,
			tagService,
			vendorService,
			recipeService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
