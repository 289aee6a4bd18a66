package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"storefront-backend/api/routes"
	"storefront-backend/internal/catalog"
	"storefront-backend/internal/ledger"
	"storefront-backend/pkg/config"
	"storefront-backend/pkg/db"
	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/migrate"
	"storefront-backend/pkg/restapi"
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

	var (
		dbP            db.Pinger
		catalogService catalog.Service
		ledgerService  ledger.Service
	)

	if cfg.Storage.IsRemote() {
		client, err := restapi.NewClient(cfg.Storage, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to build remote API client", err)
			os.Exit(1)
		}
		catalogService, err = catalog.NewRESTService(client)
		if err != nil {
			logg.Error(context.Background(), "failed to create catalog service", err)
			os.Exit(1)
		}
		ledgerService, err = ledger.NewRESTService(client)
		if err != nil {
			logg.Error(context.Background(), "failed to create ledger service", err)
			os.Exit(1)
		}
	} else {
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

		dbP = dbClient
		catalogService, err = catalog.NewService(catalog.NewRepository(dbClient.DB()), dbClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create catalog service", err)
			os.Exit(1)
		}
		ledgerService, err = ledger.NewService(ledger.NewRepository(dbClient.DB()), dbClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create ledger service", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":     cfg.App.Env,
		"addr":    addr,
		"backend": cfg.Storage.Backend,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:    addr,
		Handler: routes.NewRouter(cfg, logg, dbP, catalogService, ledgerService, registry),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
