package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/getsentry/sentry-go"

	"github.com/artie-labs/jobfeed/clients/bigquery"
	"github.com/artie-labs/jobfeed/clients/serpapi"
	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/gcslib"
	"github.com/artie-labs/jobfeed/lib/logger"
	"github.com/artie-labs/jobfeed/lib/telemetry/metrics"
	"github.com/artie-labs/jobfeed/processes/ingest"
	"github.com/artie-labs/jobfeed/processes/schedule"
)

func main() {
	// Parse args into settings.
	settings, err := config.LoadSettings(os.Args, true)
	if err != nil {
		logger.Fatal("Failed to load settings", slog.Any("err", err))
	}

	// Initialize default logger
	_logger, usingSentry := logger.NewLogger(settings)
	slog.SetDefault(_logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, settings)
	stop()

	if err != nil {
		slog.Error("Exiting", slog.Any("err", err))
	}
	if usingSentry {
		sentry.Flush(2 * time.Second)
	}
	if err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, settings *config.Settings) error {
	cfg := settings.Config
	metricsClient := metrics.LoadExporter(cfg)

	searcher, err := serpapi.NewClient(cfg.SerpAPI)
	if err != nil {
		return err
	}

	store, err := bigquery.LoadBigQuery(ctx, *cfg.BigQuery)
	if err != nil {
		return err
	}
	defer store.Close()

	// A nil interface keeps archiving off, not a nil *GCSClient.
	var archiver ingest.Archiver
	if cfg.Archive.Enabled() {
		storageClient, err := gcs.NewClient(ctx)
		if err != nil {
			return err
		}

		gcsClient := gcslib.NewGCSClient(storageClient)
		defer gcsClient.Close()
		archiver = gcsClient
	}

	slog.Info("Config is loaded",
		slog.String("serpapi", cfg.SerpAPI.String()),
		slog.String("table", cfg.BigQuery.TableID()),
		slog.String("outputFile", cfg.Output.FilePath),
		slog.Bool("archive", cfg.Archive.Enabled()),
		slog.Bool("runOnce", settings.RunOnce),
	)

	ingestor := ingest.NewIngestor(cfg, searcher, store, archiver, metricsClient)
	if settings.RunOnce {
		_, err = schedule.RunOnce(ctx, ingestor)
		return err
	}

	return schedule.StartSchedule(ctx, cfg.Schedule, ingestor)
}
