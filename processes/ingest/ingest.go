package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/artie-labs/jobfeed/clients/bigquery"
	"github.com/artie-labs/jobfeed/clients/serpapi"
	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/jobs"
	"github.com/artie-labs/jobfeed/lib/telemetry/metrics/base"
)

const NoJobsNote = "No jobs_results returned"

type Warehouse interface {
	EnsureTable(ctx context.Context, tableID bigquery.TableID) (bool, error)
	Append(ctx context.Context, tableID bigquery.TableID, rows []jobs.Row, opts bigquery.AppendOpts) (int64, error)
}

type Archiver interface {
	UploadLocalFileToGCS(ctx context.Context, bucket, prefix, filePath string, runTime time.Time) (string, error)
}

type Result struct {
	RunID        string
	InsertedRows int64
	Table        string
	Note         string
	ArchiveURI   string
}

type Ingestor struct {
	cfg       config.Config
	searcher  jobs.Searcher
	warehouse Warehouse
	// archiver is nil when archiving is disabled.
	archiver Archiver
	metrics  base.Client
	now      func() time.Time
}

func NewIngestor(cfg config.Config, searcher jobs.Searcher, warehouse Warehouse, archiver Archiver, metricsClient base.Client) *Ingestor {
	return &Ingestor{
		cfg:       cfg,
		searcher:  searcher,
		warehouse: warehouse,
		archiver:  archiver,
		metrics:   metricsClient,
		now:       time.Now,
	}
}

func (i *Ingestor) tableID() bigquery.TableID {
	return bigquery.NewTableID(i.cfg.BigQuery.ProjectID, i.cfg.BigQuery.Dataset, i.cfg.BigQuery.Table)
}

func (i *Ingestor) tags() map[string]string {
	return map[string]string{
		"engine": i.cfg.SerpAPI.Engine,
		"table":  i.tableID().FullyQualifiedName(),
	}
}

// Run performs a single ingestion: fetch, dedupe, write the local file, validate and append to the warehouse.
func (i *Ingestor) Run(ctx context.Context) (Result, error) {
	start := i.now()
	result, stage, err := i.run(ctx, start)

	tags := i.tags()
	if err != nil {
		tags["stage"] = stage
		i.metrics.Incr("ingest.failure", tags)
		return result, fmt.Errorf("failed to %s: %w", stage, err)
	}

	i.metrics.Count("ingest.rows_loaded", result.InsertedRows, tags)
	i.metrics.Timing("ingest.duration", i.now().Sub(start), tags)
	return result, nil
}

func (i *Ingestor) run(ctx context.Context, start time.Time) (Result, string, error) {
	tableID := i.tableID()
	result := Result{
		RunID: uuid.NewString(),
		Table: tableID.FullyQualifiedName(),
	}

	log := slog.With(slog.String("runID", result.RunID), slog.String("table", result.Table))
	log.Info("Starting ingestion", slog.String("serpapi", i.cfg.SerpAPI.String()))

	query := serpapi.Query{
		Engine:   i.cfg.SerpAPI.Engine,
		Q:        i.cfg.SerpAPI.Query(),
		Language: i.cfg.SerpAPI.Language,
	}
	collected, stats, err := jobs.Collect(ctx, i.searcher, query, jobs.CollectOpts{
		MaxJobs:  i.cfg.SerpAPI.MaxJobs,
		MaxPages: i.cfg.SerpAPI.MaxPages,
	})
	if err != nil {
		return result, "fetch jobs", err
	}

	i.metrics.Count("ingest.pages", int64(stats.PagesFetched), i.tags())
	i.metrics.Count("ingest.jobs", int64(len(collected)), i.tags())
	i.metrics.Gauge("ingest.unique_jobs", float64(len(collected)), i.tags())
	log.Info("Fetched jobs",
		slog.Int("pages", stats.PagesFetched),
		slog.Int("uniqueJobs", len(collected)),
		slog.Int("duplicates", stats.Duplicates),
		slog.Int("missingID", stats.MissingID),
	)

	if err = jobs.WriteFile(i.cfg.Output.FilePath, collected); err != nil {
		return result, "write jobs file", err
	}
	log.Info("Wrote jobs file", slog.String("path", i.cfg.Output.FilePath))

	if i.archiver != nil && i.cfg.Archive.Enabled() {
		result.ArchiveURI, err = i.archiver.UploadLocalFileToGCS(ctx, i.cfg.Archive.GCS.Bucket, i.cfg.Archive.GCS.Prefix, i.cfg.Output.FilePath, start)
		if err != nil {
			return result, "archive jobs file", err
		}
		log.Info("Archived jobs file", slog.String("uri", result.ArchiveURI))
	}

	if len(collected) == 0 {
		result.Note = NoJobsNote
		log.Info("No jobs to load, skipping")
		return result, "", nil
	}

	if err = jobs.Validate(collected); err != nil {
		return result, "validate jobs", err
	}

	rows, err := jobs.ToRows(collected, start)
	if err != nil {
		return result, "map rows", err
	}

	created, err := i.warehouse.EnsureTable(ctx, tableID)
	if err != nil {
		return result, "ensure table", err
	}

	result.InsertedRows, err = i.warehouse.Append(ctx, tableID, rows, bigquery.AppendOpts{
		AttachSchema: created,
		JobIDPrefix:  fmt.Sprintf("jobfeed_%s_", strings.ReplaceAll(result.RunID, "-", "")),
	})
	if err != nil {
		return result, "append rows", err
	}

	log.Info("Loaded rows", slog.Int64("insertedRows", result.InsertedRows), slog.Bool("tableCreated", created))
	return result, "", nil
}
