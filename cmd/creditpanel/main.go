package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	"github.com/ericfisherdev/creditpanel/internal/adapter/driven/dataset"
	"github.com/ericfisherdev/creditpanel/internal/adapter/driven/metrics"
	httphandler "github.com/ericfisherdev/creditpanel/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/creditpanel/internal/adapter/driving/web"
	"github.com/ericfisherdev/creditpanel/internal/application"
	"github.com/ericfisherdev/creditpanel/internal/bootstrap"
	"github.com/ericfisherdev/creditpanel/internal/config"
	"github.com/ericfisherdev/creditpanel/internal/domain/port/driven"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_driver", cfg.DBDriver,
		"model_path", cfg.ModelPath,
		"seed_on_start", cfg.SeedOnStart,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database and run migrations.
	ledger, closeDB, err := bootstrap.OpenLedger(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := closeDB(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	// 4. Load the model bundle. Without it the service runs degraded:
	// history stays available and assessments answer 503.
	sc, err := bootstrap.LoadServiceContext(cfg, logger)
	if err != nil {
		slog.Error("risk model unavailable, starting in degraded mode", "error", err)
	}

	// 5. Wire services.
	promMetrics := metrics.NewPrometheus()
	assessSvc := application.NewAssessService(sc, ledger, promMetrics, logger)

	// 6. Seed the ledger before accepting traffic.
	seedOnStart(ctx, cfg, assessSvc, ledger, promMetrics, logger)

	// 7. Register API, GUI and metrics routes.
	mux := http.NewServeMux()
	httphandler.RegisterAPIRoutes(mux, httphandler.NewHandler(assessSvc, logger))
	webhandler.RegisterRoutes(mux, webhandler.NewHandler(assessSvc, logger))
	mux.Handle("GET /metrics", promMetrics.Handler())

	// Apply middleware.
	handler := httphandler.ApplyMiddleware(mux, logger, promMetrics)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("creditpanel started",
		"listen_addr", cfg.ListenAddr,
		"model_loaded", assessSvc.Ready(),
	)

	// 8. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 9. Graceful shutdown with 10s timeout to drain in-flight requests.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// seedOnStart imports the dataset into an empty ledger when enabled. Failures
// are logged and never stop the server.
func seedOnStart(
	ctx context.Context,
	cfg *config.Config,
	assessSvc *application.AssessService,
	ledger driven.Ledger,
	m driven.PipelineMetrics,
	logger *slog.Logger,
) {
	if !cfg.SeedOnStart {
		return
	}
	if !assessSvc.Ready() {
		logger.Warn("seeding skipped: risk model not loaded", "path", cfg.DatasetPath)
		return
	}

	seedSvc := application.NewSeedService(assessSvc, ledger, dataset.NewCSVSource(), cfg.SeedWorkers, m, logger)
	if _, err := seedSvc.SeedFromDataset(ctx, cfg.DatasetPath); err != nil {
		logger.Error("seeding skipped", "path", cfg.DatasetPath, "error", err)
	}
}
