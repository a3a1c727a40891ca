package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/processes/ingest"
)

type Runner interface {
	Run(ctx context.Context) (ingest.Result, error)
}

// cronLogger routes the scheduler's own logging through slog.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug(msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error(msg, append(keysAndValues, slog.Any("err", err))...)
}

// RunOnce runs a single ingestion and logs the outcome.
func RunOnce(ctx context.Context, runner Runner) (ingest.Result, error) {
	result, err := runner.Run(ctx)
	if err != nil {
		slog.Error("Ingestion failed", slog.Any("err", err), slog.String("runID", result.RunID), slog.String("table", result.Table))
		return result, err
	}

	attrs := []any{
		slog.String("runID", result.RunID),
		slog.String("table", result.Table),
		slog.Int64("insertedRows", result.InsertedRows),
	}
	if result.Note != "" {
		attrs = append(attrs, slog.String("note", result.Note))
	}
	if result.ArchiveURI != "" {
		attrs = append(attrs, slog.String("archiveURI", result.ArchiveURI))
	}

	slog.Info("Ingestion finished", attrs...)
	return result, nil
}

func newCron(cfg config.Schedule) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	logger := cronLogger{}
	return cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(logger),
		cron.WithChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)),
	), nil
}

// StartSchedule runs [runner] on every tick of the configured cron expression until [ctx] is canceled.
// A tick that fires while the previous run is still going is skipped.
func StartSchedule(ctx context.Context, cfg config.Schedule, runner Runner) error {
	c, err := newCron(cfg)
	if err != nil {
		return err
	}

	if _, err = c.AddFunc(cfg.Cron, func() {
		// Errors are logged, the next tick will try again.
		_, _ = RunOnce(ctx, runner)
	}); err != nil {
		return fmt.Errorf("failed to schedule cron %q: %w", cfg.Cron, err)
	}

	c.Start()
	if entries := c.Entries(); len(entries) > 0 {
		slog.Info("Started schedule",
			slog.String("cron", cfg.Cron),
			slog.String("timezone", cfg.Timezone),
			slog.Time("nextRun", entries[0].Next),
		)
	}

	<-ctx.Done()
	slog.Info("Stopping schedule, waiting for the running ingestion to finish")
	<-c.Stop().Done()
	return nil
}
