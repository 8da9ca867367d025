package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/relaydesk/agentrouter/internal/adapters/geocode"
	"github.com/relaydesk/agentrouter/internal/adapters/http/api"
	"github.com/relaydesk/agentrouter/internal/adapters/repository"
	"github.com/relaydesk/agentrouter/internal/adapters/textanalytics"
	app "github.com/relaydesk/agentrouter/internal/app"
	"github.com/relaydesk/agentrouter/internal/config"
	"github.com/relaydesk/agentrouter/internal/domain/feature"
	"github.com/relaydesk/agentrouter/pkg/logger"
	"github.com/relaydesk/agentrouter/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout           = 10 * time.Second
	writeTimeout          = 60 * time.Second // training runs synchronously
	idleTimeout           = 60 * time.Second
	readHeaderTimeout     = 5 * time.Second
	shutdownTimeout       = 30 * time.Second
	systemMetricsInterval = 10 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Initialize logging
	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		if err := logger.Sync(); err != nil {
			os.Stderr.WriteString("failed to flush logs: " + err.Error() + "\n")
		}
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Assemble the service backends from config.
	opts, cleanup, err := buildServiceOptions(ctx, cfg, loggerInstance)
	if err != nil {
		loggerInstance.Error(ctx, "failed to build service backends", logger.Error(err))
		return
	}
	defer cleanup()

	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		loggerInstance.Error(ctx, "failed to start service", logger.Error(err))
		return
	}
	defer svc.Stop()

	// Start system metrics updater
	go startSystemMetricsUpdater(ctx)

	// HTTP mux and routes.
	mux := http.NewServeMux()

	// Register business API routes with the service dependency.
	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Start the HTTP server
	go func() {
		loggerInstance.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// buildServiceOptions translates config into service options: store backend,
// geocoding and text-analytics clients. The returned cleanup releases any
// opened resources and is safe to call exactly once.
func buildServiceOptions(ctx context.Context, cfg *config.Config, log logger.Logger) ([]app.Option, func(), error) {
	opts := []app.Option{
		app.WithLogger(log),
		app.WithMaxCandidates(cfg.MaxCandidates),
		app.WithTrainEpochs(cfg.TrainEpochs),
		app.WithModelArtifactPath(cfg.ModelArtifactPath),
	}
	cleanup := func() {}

	if cfg.Store == config.StoreSQLite {
		store, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = store.Close() }

		// A fresh database gets the demo dataset so the service is usable
		// immediately.
		agents, err := store.List(ctx)
		if err != nil {
			return nil, cleanup, err
		}
		if len(agents) == 0 {
			log.Info(ctx, "seeding empty sqlite store with demo dataset", logger.String("path", cfg.SQLitePath))
			if err := store.SeedDemo(ctx); err != nil {
				return nil, cleanup, err
			}
		}

		opts = append(opts,
			app.WithAgentStore(store),
			app.WithContactStore(store.Contacts()),
			app.WithHistoryStore(store.History()),
		)
	}

	var resolver geocode.Resolver = geocode.Static{}
	if cfg.GeocodeBaseURL != "" {
		resolver = geocode.NewClient(
			geocode.WithBaseURL(cfg.GeocodeBaseURL),
			geocode.WithAPIKey(cfg.GeocodeAPIKey),
			geocode.WithTimeout(time.Duration(cfg.GeocodeTimeoutMS)*time.Millisecond),
			geocode.WithLogger(log),
		)
	}
	var coords feature.CoordinateSource = geocode.NewCache(resolver)
	opts = append(opts, app.WithCoordinateSource(coords))

	if cfg.AnalyticsBaseURL != "" {
		opts = append(opts, app.WithAnalytics(textanalytics.NewHTTPService(
			textanalytics.WithAnalyticsBaseURL(cfg.AnalyticsBaseURL),
			textanalytics.WithIntentEndpoints(cfg.IntentEndpointEN, cfg.IntentEndpointES),
			textanalytics.WithAPIKey(cfg.AnalyticsAPIKey),
			textanalytics.WithTimeout(time.Duration(cfg.AnalyticsTimeoutMS)*time.Millisecond),
			textanalytics.WithLogger(log),
		)))
	}

	return opts, cleanup, nil
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemMemoryUsage(m.Alloc)
	metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
}
