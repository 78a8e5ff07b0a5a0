package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/omarashraf/kasher-backend/api/routes"
	"github.com/omarashraf/kasher-backend/internal/access"
	"github.com/omarashraf/kasher-backend/internal/auth"
	"github.com/omarashraf/kasher-backend/internal/catalog"
	"github.com/omarashraf/kasher-backend/internal/managers"
	"github.com/omarashraf/kasher-backend/internal/sales"
	"github.com/omarashraf/kasher-backend/internal/shops"
	"github.com/omarashraf/kasher-backend/internal/terminals"
	"github.com/omarashraf/kasher-backend/internal/users"
	"github.com/omarashraf/kasher-backend/pkg/config"
	"github.com/omarashraf/kasher-backend/pkg/db"
	"github.com/omarashraf/kasher-backend/pkg/logger"
	"github.com/omarashraf/kasher-backend/pkg/metrics"
	"github.com/omarashraf/kasher-backend/pkg/migrate"
	"github.com/omarashraf/kasher-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	userRepo := users.NewRepository(dbClient.DB())
	shopRepo := shops.NewRepository(dbClient.DB())
	managerRepo := managers.NewRepository(dbClient.DB())
	catalogRepo := catalog.NewRepository(dbClient.DB())
	salesRepo := sales.NewRepository(dbClient.DB())
	terminalRepo := terminals.NewRepository(dbClient.DB())

	resolver, err := access.NewResolver(shopRepo, managerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create access resolver", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(userRepo, cfg.Password, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	shopService, err := shops.NewService(shopRepo, userRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create shop service", err)
		os.Exit(1)
	}
	managerService, err := managers.NewService(managerRepo, userRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create manager service", err)
		os.Exit(1)
	}
	catalogService, err := catalog.NewService(catalogRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}
	salesService, err := sales.NewService(salesRepo, catalogRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}
	terminalService, err := terminals.NewService(terminalRepo, catalogRepo, resolver)
	if err != nil {
		logg.Error(context.Background(), "failed to create terminal service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Redis:     redisClient,
			Registry:  registry,
			Metrics:   httpMetrics,
			Auth:      authService,
			Shops:     shopService,
			Managers:  managerService,
			Catalog:   catalogService,
			Sales:     salesService,
			Terminals: terminalService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
