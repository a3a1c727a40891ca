package config

import (
	"fmt"

	"github.com/artie-labs/jobfeed/lib/config/constants"
)

type Sentry struct {
	DSN string `yaml:"dsn"`
}

type Reporting struct {
	Sentry *Sentry `yaml:"sentry"`
}

type SerpAPI struct {
	APIKey   string `yaml:"apiKey"`
	JobTitle string `yaml:"jobTitle"`
	Location string `yaml:"location"`
	Engine   string `yaml:"engine"`
	Language string `yaml:"language"`
	BaseURL  string `yaml:"baseURL"`

	// MaxJobs - stop collecting once this many unique job_ids have been seen.
	MaxJobs int `yaml:"maxJobs"`
	// MaxPages - upper bound on the number of result pages requested per run.
	MaxPages int `yaml:"maxPages"`

	// RequestsPerSecond - zero means no client side rate limit.
	RequestsPerSecond float64 `yaml:"requestsPerSecond"`
	// MaxAttempts - one means a failed page request is not retried.
	MaxAttempts    int `yaml:"maxAttempts"`
	TimeoutSeconds int `yaml:"timeoutSeconds"`
}

func (s SerpAPI) String() string {
	// Don't log credentials.
	return fmt.Sprintf("engine=%s, jobTitle=%q, location=%q, maxJobs=%d, maxPages=%d, apiKey_set=%v",
		s.Engine, s.JobTitle, s.Location, s.MaxJobs, s.MaxPages, s.APIKey != "")
}

// Query is the search term sent to the API, e.g. "data engineer Berlin".
func (s SerpAPI) Query() string {
	if s.Location == "" {
		return s.JobTitle
	}

	return fmt.Sprintf("%s %s", s.JobTitle, s.Location)
}

func (s *SerpAPI) LoadDefaultValues() {
	if s.Engine == "" {
		s.Engine = constants.DefaultEngine
	}

	if s.Language == "" {
		s.Language = constants.DefaultLanguage
	}

	if s.BaseURL == "" {
		s.BaseURL = constants.DefaultBaseURL
	}

	if s.MaxJobs == 0 {
		s.MaxJobs = constants.DefaultMaxJobs
	}

	if s.MaxPages == 0 {
		s.MaxPages = constants.DefaultMaxPages
	}

	if s.MaxAttempts == 0 {
		s.MaxAttempts = 1
	}

	if s.TimeoutSeconds == 0 {
		s.TimeoutSeconds = constants.DefaultTimeoutSeconds
	}
}

type Output struct {
	FilePath string `yaml:"filePath"`
}

type GCSArchive struct {
	Bucket string `yaml:"bucket"`
	Prefix string `yaml:"prefix"`
}

type Archive struct {
	GCS *GCSArchive `yaml:"gcs"`
}

// Enabled returns true if the local file should be copied to GCS after every run.
func (a Archive) Enabled() bool {
	return a.GCS != nil && a.GCS.Bucket != ""
}

type Schedule struct {
	Cron     string `yaml:"cron"`
	Timezone string `yaml:"timezone"`
}

type Config struct {
	SerpAPI  SerpAPI   `yaml:"serpapi"`
	BigQuery *BigQuery `yaml:"bigquery"`
	Output   Output    `yaml:"output"`
	Archive  Archive   `yaml:"archive"`
	Schedule Schedule  `yaml:"schedule"`

	Reporting Reporting `yaml:"reporting"`
	Telemetry struct {
		Metrics struct {
			Provider constants.ExporterKind `yaml:"provider"`
			Settings map[string]any         `yaml:"settings,omitempty"`
		}
	}
}
