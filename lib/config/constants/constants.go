package constants

// ExporterKind is used for the Telemetry package
type ExporterKind string

const (
	Datadog ExporterKind = "datadog"
)

const (
	DefaultEngine   = "google_jobs"
	DefaultLanguage = "en"
	DefaultBaseURL  = "https://serpapi.com/search.json"

	// DefaultMaxJobs is the cap on unique job_ids collected per run.
	DefaultMaxJobs = 500
	// DefaultMaxPages - SerpApi returns up to 10 results per page.
	DefaultMaxPages = 50

	DefaultTimeoutSeconds = 30
	DefaultOutputFilePath = "jobs.json"

	// DefaultCron runs at 06:00 every day.
	DefaultCron     = "0 6 * * *"
	DefaultTimezone = "UTC"
)

// Environment variables that fill in (and override) values from the config file.
const (
	SerpAPIKeyEnvKey   = "SERPAPI_KEY"
	JobTitleEnvKey     = "JOB_TITLE"
	LocationEnvKey     = "LOCATION"
	BigQueryProjEnvKey = "BQ_PROJ"
	RawDatasetEnvKey   = "RAW_DATASET"
	SerpAPITableEnvKey = "SERPAPI_TABLE"

	GooglePathToCredentialsEnvKey = "GOOGLE_APPLICATION_CREDENTIALS"
)
