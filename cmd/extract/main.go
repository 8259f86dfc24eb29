// Command extract runs one extraction (or one report dispatch) and exits.
// It shares configuration with the resident service.
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/adc-dairy/milkroom/internal/adapter"
	"github.com/adc-dairy/milkroom/internal/browser"
	"github.com/adc-dairy/milkroom/internal/config"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/notify"
	"github.com/adc-dairy/milkroom/internal/pipeline"
	"github.com/adc-dairy/milkroom/internal/portal"
	"github.com/adc-dairy/milkroom/internal/stats"
	"github.com/adc-dairy/milkroom/internal/store"
)

var (
	configFile = flag.String("config", "", "Path to configuration file")
	envPath    = flag.String("env", "config/", "Path to environment files")
	report     = flag.Bool("report", false, "Send the daily report instead of extracting")
)

func main() {
	flag.Parse()

	config.ChdirRepoRoot()
	cfg, err := config.LoadServiceConfig(*configFile, *envPath)
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	err = logger.Initialize(logger.Config{
		Debug:     cfg.Debug,
		SentryDSN: cfg.SentryDSN,
		Tags: map[string]string{
			"service": "milkroom-extract",
		},
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Flush(2 * time.Second)

	location, err := cfg.Scheduler.Location()
	if err != nil {
		logger.Fatal("Failed to resolve timezone", zap.Error(err))
	}

	db, err := store.Open(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := store.AutoMigrate(db); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	dataStore := store.NewPGStore(db)
	clock := adapter.NewClock()
	httpClient := adapter.NewHTTPClient(cfg.Portal.FetchTimeout)

	ctx := context.Background()

	if *report {
		notifier := notify.NewNtfyNotifier(httpClient, cfg.Notify.URL, cfg.Notify.Enabled)
		reporter := stats.NewReporter(dataStore, notifier, clock, location, cfg.Portal.CompanyID)
		if err := reporter.SendDailyReport(ctx); err != nil {
			logger.Fatal("Report dispatch failed", zap.Error(err))
		}
		return
	}

	extractor := pipeline.NewExtractor(
		cfg.Portal,
		browser.NewChromeLauncher(cfg.Browser),
		portal.NewClient(httpClient, cfg.Portal.APIURL, cfg.Portal.URL),
		portal.NewNormalizer(adapter.NewJSON()),
		dataStore,
		clock,
		location,
	)
	if err := extractor.Run(ctx); err != nil {
		logger.Fatal("Extraction failed", zap.Error(err))
	}
}
