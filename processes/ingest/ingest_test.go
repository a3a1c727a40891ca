package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	"github.com/artie-labs/jobfeed/clients/bigquery"
	"github.com/artie-labs/jobfeed/clients/serpapi"
	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/jobs"
)

type fakeSearcher struct {
	pages []*serpapi.Page
	err   error
	calls int
}

func (f *fakeSearcher) Search(_ context.Context, query serpapi.Query, _ string) (*serpapi.Page, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if f.calls > len(f.pages) {
		return &serpapi.Page{}, nil
	}
	return f.pages[f.calls-1], nil
}

type fakeWarehouse struct {
	tableExists bool
	ensureErr   error
	appendErr   error

	ensureCalls int
	appended    []jobs.Row
	appendOpts  bigquery.AppendOpts
	tableID     bigquery.TableID
}

func (f *fakeWarehouse) EnsureTable(_ context.Context, tableID bigquery.TableID) (bool, error) {
	f.ensureCalls++
	f.tableID = tableID
	if f.ensureErr != nil {
		return false, f.ensureErr
	}
	created := !f.tableExists
	f.tableExists = true
	return created, nil
}

func (f *fakeWarehouse) Append(_ context.Context, _ bigquery.TableID, rows []jobs.Row, opts bigquery.AppendOpts) (int64, error) {
	if f.appendErr != nil {
		return 0, f.appendErr
	}
	f.appended = append(f.appended, rows...)
	f.appendOpts = opts
	return int64(len(rows)), nil
}

type fakeArchiver struct {
	uploadedPath string
	err          error
}

func (f *fakeArchiver) UploadLocalFileToGCS(_ context.Context, bucket, prefix, filePath string, _ time.Time) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploadedPath = filePath
	return fmt.Sprintf("gs://%s/%s/%s", bucket, prefix, filepath.Base(filePath)), nil
}

type recordingMetrics struct {
	counts map[string]int64
	gauges map[string]float64
	incrs  map[string]map[string]string
	timed  []string
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{counts: map[string]int64{}, gauges: map[string]float64{}, incrs: map[string]map[string]string{}}
}

func (r *recordingMetrics) Timing(name string, _ time.Duration, _ map[string]string) {
	r.timed = append(r.timed, name)
}

func (r *recordingMetrics) Incr(name string, tags map[string]string) { r.incrs[name] = tags }

func (r *recordingMetrics) Count(name string, value int64, _ map[string]string) { r.counts[name] += value }

func (r *recordingMetrics) Gauge(name string, value float64, _ map[string]string) {
	r.gauges[name] = value
}

type IngestTestSuite struct {
	suite.Suite
	cfg       config.Config
	searcher  *fakeSearcher
	warehouse *fakeWarehouse
	archiver  *fakeArchiver
	metrics   *recordingMetrics
	now       time.Time
}

func (i *IngestTestSuite) SetupTest() {
	i.cfg = config.Config{
		SerpAPI:  config.SerpAPI{APIKey: "key", JobTitle: "data engineer", Location: "Berlin", MaxJobs: 500, MaxPages: 50, Engine: "google_jobs"},
		BigQuery: &config.BigQuery{ProjectID: "project", Dataset: "raw", Table: "serpapi_jobs"},
		Output:   config.Output{FilePath: filepath.Join(i.T().TempDir(), "jobs.json")},
	}
	i.searcher = &fakeSearcher{pages: []*serpapi.Page{
		{
			JobsResults: []serpapi.Job{{"job_id": "a", "title": "A"}, {"job_id": "b", "company_name": "B Corp"}},
			Pagination:  serpapi.Pagination{NextPageToken: "t1"},
		},
		{JobsResults: []serpapi.Job{{"job_id": "b"}, {"job_id": "c"}}},
	}}
	i.warehouse = &fakeWarehouse{}
	i.archiver = &fakeArchiver{}
	i.metrics = newRecordingMetrics()
	i.now = time.Date(2026, 10, 18, 6, 0, 0, 0, time.UTC)
}

func (i *IngestTestSuite) newIngestor() *Ingestor {
	ingestor := NewIngestor(i.cfg, i.searcher, i.warehouse, i.archiver, i.metrics)
	ingestor.now = func() time.Time { return i.now }
	return ingestor
}

func (i *IngestTestSuite) readJobsFile() []serpapi.Job {
	contents, err := os.ReadFile(i.cfg.Output.FilePath)
	assert.NoError(i.T(), err)

	var out []serpapi.Job
	assert.NoError(i.T(), json.Unmarshal(contents, &out))
	return out
}

func (i *IngestTestSuite) TestRun_FirstRunCreatesTable() {
	result, err := i.newIngestor().Run(i.T().Context())
	assert.NoError(i.T(), err)
	assert.Equal(i.T(), int64(3), result.InsertedRows)
	assert.Equal(i.T(), "project.raw.serpapi_jobs", result.Table)
	assert.Empty(i.T(), result.Note)
	assert.NotEmpty(i.T(), result.RunID)

	// File has the deduplicated jobs in order.
	fileJobs := i.readJobsFile()
	assert.Len(i.T(), fileJobs, 3)
	assert.Equal(i.T(), "a", fileJobs[0].ID())
	assert.Equal(i.T(), "c", fileJobs[2].ID())

	// Warehouse
	assert.Equal(i.T(), bigquery.NewTableID("project", "raw", "serpapi_jobs"), i.warehouse.tableID)
	assert.True(i.T(), i.warehouse.appendOpts.AttachSchema)
	assert.Contains(i.T(), i.warehouse.appendOpts.JobIDPrefix, "jobfeed_")
	assert.NotContains(i.T(), i.warehouse.appendOpts.JobIDPrefix, "-")
	assert.Len(i.T(), i.warehouse.appended, 3)
	for _, row := range i.warehouse.appended {
		assert.Equal(i.T(), i.now, row.CreatedAt)
	}
	assert.Equal(i.T(), "A", *i.warehouse.appended[0].Title)
	assert.Equal(i.T(), "B Corp", *i.warehouse.appended[1].CompanyName)

	// Archive is disabled
	assert.Empty(i.T(), i.archiver.uploadedPath)
	assert.Empty(i.T(), result.ArchiveURI)

	// Metrics
	assert.Equal(i.T(), int64(2), i.metrics.counts["ingest.pages"])
	assert.Equal(i.T(), int64(3), i.metrics.counts["ingest.jobs"])
	assert.Equal(i.T(), float64(3), i.metrics.gauges["ingest.unique_jobs"])
	assert.Equal(i.T(), int64(3), i.metrics.counts["ingest.rows_loaded"])
	assert.Equal(i.T(), []string{"ingest.duration"}, i.metrics.timed)
	assert.Empty(i.T(), i.metrics.incrs)
}

func (i *IngestTestSuite) TestRun_ExistingTableAppends() {
	i.warehouse.tableExists = true
	result, err := i.newIngestor().Run(i.T().Context())
	assert.NoError(i.T(), err)
	assert.Equal(i.T(), int64(3), result.InsertedRows)
	assert.False(i.T(), i.warehouse.appendOpts.AttachSchema)
}

func (i *IngestTestSuite) TestRun_Archive() {
	i.cfg.Archive.GCS = &config.GCSArchive{Bucket: "bucket", Prefix: "serpapi"}
	result, err := i.newIngestor().Run(i.T().Context())
	assert.NoError(i.T(), err)
	assert.Equal(i.T(), i.cfg.Output.FilePath, i.archiver.uploadedPath)
	assert.Equal(i.T(), "gs://bucket/serpapi/jobs.json", result.ArchiveURI)

	i.archiver.err = fmt.Errorf("bucket does not exist")
	_, err = i.newIngestor().Run(i.T().Context())
	assert.ErrorContains(i.T(), err, "failed to archive jobs file: bucket does not exist")
}

func (i *IngestTestSuite) TestRun_NoJobs() {
	i.searcher.pages = []*serpapi.Page{{}}
	result, err := i.newIngestor().Run(i.T().Context())
	assert.NoError(i.T(), err)
	assert.Zero(i.T(), result.InsertedRows)
	assert.Equal(i.T(), NoJobsNote, result.Note)
	assert.Equal(i.T(), "project.raw.serpapi_jobs", result.Table)
	assert.Zero(i.T(), i.warehouse.ensureCalls)
	assert.Contains(i.T(), i.metrics.gauges, "ingest.unique_jobs")
	assert.Zero(i.T(), i.metrics.gauges["ingest.unique_jobs"])
	assert.Empty(i.T(), i.readJobsFile())
}

func (i *IngestTestSuite) TestRun_Failures() {
	{
		// Search fails
		i.searcher.err = fmt.Errorf("connection reset")
		_, err := i.newIngestor().Run(i.T().Context())
		assert.ErrorContains(i.T(), err, "failed to fetch jobs: failed to fetch page 1: connection reset")
		assert.Equal(i.T(), "fetch jobs", i.metrics.incrs["ingest.failure"]["stage"])
		i.searcher.err = nil
	}
	{
		// Table creation fails
		i.searcher.calls = 0
		i.warehouse.ensureErr = fmt.Errorf("permission denied")
		_, err := i.newIngestor().Run(i.T().Context())
		assert.ErrorContains(i.T(), err, "failed to ensure table: permission denied")
		assert.Empty(i.T(), i.warehouse.appended)
		i.warehouse.ensureErr = nil
	}
	{
		// Load fails
		i.searcher.calls = 0
		i.warehouse.appendErr = fmt.Errorf("load job failed")
		_, err := i.newIngestor().Run(i.T().Context())
		assert.ErrorContains(i.T(), err, "failed to append rows: load job failed")
		assert.Equal(i.T(), "append rows", i.metrics.incrs["ingest.failure"]["stage"])
	}
	{
		// Unwritable output file
		i.searcher.calls = 0
		i.warehouse.appendErr = nil
		blocker := filepath.Join(i.T().TempDir(), "file")
		assert.NoError(i.T(), os.WriteFile(blocker, []byte("x"), 0o644))
		i.cfg.Output.FilePath = filepath.Join(blocker, "jobs.json")
		_, err := i.newIngestor().Run(i.T().Context())
		assert.ErrorContains(i.T(), err, "failed to write jobs file")
	}
}

func TestIngestTestSuite(t *testing.T) {
	suite.Run(t, new(IngestTestSuite))
}
