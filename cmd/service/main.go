package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/api/rest"
	"github.com/adc-dairy/milkroom/internal/api/server"
	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/config"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/notify"
	"github.com/adc-dairy/milkroom/internal/pipeline"
	"github.com/adc-dairy/milkroom/internal/portal"
	"github.com/adc-dairy/milkroom/internal/scheduler"
	"github.com/adc-dairy/milkroom/internal/stats"
	"github.com/adc-dairy/milkroom/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
)

func main() {
	flag.Parse()

	// Load configuration
	config.ChdirRepoRoot()
	cfg, err := config.LoadServiceConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize logger with sentry integration
	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "milkroom",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)
	logger.Info("Starting milkroom service")

	location, err := cfg.Scheduler.Location()
	if err != nil {
		logger.Fatal("Failed to resolve timezone", zap.Error(err))
	}

	// Connect to database, waiting out a slow-starting Postgres
	db, err := openDatabase(ctx, cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("host", cfg.Database.Host))

	dataStore := store.NewPGStore(db)

	// Assemble the pipelines
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(cfg.Portal.FetchTimeout)
	jsonAdapter := adapter.NewJSON()

	extractor := pipeline.NewExtractor(
		cfg.Portal,
		browser.NewChromeLauncher(cfg.Browser),
		portal.NewClient(httpClient, cfg.Portal.APIURL, cfg.Portal.URL),
		portal.NewNormalizer(jsonAdapter),
		dataStore,
		clock,
		location,
	)

	notifier := notify.NewNtfyNotifier(httpClient, cfg.Notify.URL, cfg.Notify.Enabled)
	reporter := stats.NewReporter(dataStore, notifier, clock, location, cfg.Portal.CompanyID)

	worker := pipeline.NewWorker(cfg.Worker.MaxBacklog)
	defer worker.StopAndWait()

	runExtraction := func() error {
		return worker.Enqueue("extraction", func() {
			if err := extractor.Run(ctx); err != nil {
				logger.Error(err, zap.String("job", "extraction"))
			}
		})
	}
	runReport := func() error {
		return worker.Enqueue("report", func() {
			if err := reporter.SendDailyReport(ctx); err != nil {
				logger.Error(err, zap.String("job", "report"))
			}
		})
	}

	// Schedule periodic triggers
	if cfg.Scheduler.Enabled {
		sched := scheduler.New(location)
		if err := sched.Add("extraction", cfg.Scheduler.ExtractSchedule, func() {
			if err := runExtraction(); err != nil {
				logger.Warn("scheduled extraction not queued", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("Failed to schedule extraction", zap.Error(err))
		}
		if err := sched.Add("report", cfg.Scheduler.ReportSchedule, func() {
			if err := runReport(); err != nil {
				logger.Warn("scheduled report not queued", zap.Error(err))
			}
		}); err != nil {
			logger.Fatal("Failed to schedule report", zap.Error(err))
		}
		sched.Start()
		defer sched.Stop()
	} else {
		logger.Warn("scheduler disabled, pipelines run on webhook triggers only")
	}

	// Create and start server
	srv := server.New(server.Config{
		Debug:        cfg.Debug,
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}, rest.Triggers{
		Extract: runExtraction,
		Report:  runReport,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			errCh <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		cancel()
	case err := <-errCh:
		logger.Error(err, zap.String("component", "server"))
		cancel()
	}

	// Create shutdown context with timeout (don't use canceled ctx)
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("milkroom service stopped")
}

// openDatabase retries the initial connection so the service survives being
// started before its database
func openDatabase(ctx context.Context, cfg config.DatabaseConfig) (*gorm.DB, error) {
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 5), ctx)

	return backoff.RetryWithData(func() (*gorm.DB, error) {
		db, err := store.Open(cfg)
		if err != nil {
			logger.Warn("database not ready, retrying", zap.Error(err))
			return nil, err
		}
		return db, nil
	}, policy)
}
