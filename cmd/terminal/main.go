package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mfigueroa/tillpoint-backend/internal/catalog"
	"github.com/mfigueroa/tillpoint-backend/internal/pos"
	"github.com/mfigueroa/tillpoint-backend/internal/sales"
	"github.com/mfigueroa/tillpoint-backend/pkg/config"
	"github.com/mfigueroa/tillpoint-backend/pkg/db"
	"github.com/mfigueroa/tillpoint-backend/pkg/logger"
	"github.com/mfigueroa/tillpoint-backend/pkg/metrics"
	"github.com/mfigueroa/tillpoint-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "terminal"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "terminal",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	warehouseID, err := uuid.Parse(cfg.POS.DefaultWarehouseID)
	if err != nil {
		logg.Error(context.Background(), "invalid default warehouse id", err)
		os.Exit(1)
	}

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
	salesMetrics := metrics.NewSalesMetrics(registry)
	if cfg.POS.MetricsAddr != "" {
		go serveMetrics(logg, cfg.POS.MetricsAddr, registry)
	}

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	salesService, err := sales.NewService(
		sales.NewRepository(dbClient.DB()),
		dbClient,
		catalog.NewRepository(dbClient.DB()),
		logg,
		salesMetrics,
		cfg.POS.SaleNumberPrefix,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	ctx := logg.WithTerminalID(context.Background(), cfg.POS.TerminalID)
	ctx = logg.WithWarehouseID(ctx, warehouseID.String())
	logg.Info(ctx, "terminal ready")

	r := &repl{
		session: pos.NewSession(cfg.POS.TerminalID, warehouseID),
		catalog: catalogService,
		sales:   salesService,
		logg:    logg,
		in:      os.Stdin,
		out:     os.Stdout,
	}
	if err := r.run(ctx); err != nil {
		logg.Error(ctx, "terminal loop failed", err)
		os.Exit(1)
	}
}

func serveMetrics(logg *logger.Logger, addr string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(context.Background(), "metrics listener failed", err)
	}
}
