package config

import (
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/artie-labs/jobfeed/lib/config/constants"
	"github.com/artie-labs/jobfeed/lib/stringutil"
)

// readFileToConfig parses the YAML config. An empty path yields an empty config so that the job can be configured
// entirely through environment variables.
func readFileToConfig(pathToConfig string) (*Config, error) {
	var config Config
	if pathToConfig == "" {
		return &config, nil
	}

	bytes, err := os.ReadFile(pathToConfig)
	if err != nil {
		return nil, err
	}

	if err = yaml.Unmarshal(bytes, &config); err != nil {
		return nil, err
	}

	return &config, nil
}

// applyEnv lets the environment override whatever the config file set.
func (c *Config) applyEnv(getenv func(string) string) {
	c.SerpAPI.APIKey = stringutil.Override(c.SerpAPI.APIKey, getenv(constants.SerpAPIKeyEnvKey))
	c.SerpAPI.JobTitle = stringutil.Override(c.SerpAPI.JobTitle, getenv(constants.JobTitleEnvKey))
	c.SerpAPI.Location = stringutil.Override(c.SerpAPI.Location, getenv(constants.LocationEnvKey))

	project := getenv(constants.BigQueryProjEnvKey)
	dataset := getenv(constants.RawDatasetEnvKey)
	table := getenv(constants.SerpAPITableEnvKey)
	if c.BigQuery == nil && (project != "" || dataset != "" || table != "") {
		c.BigQuery = &BigQuery{}
	}

	if c.BigQuery != nil {
		c.BigQuery.ProjectID = stringutil.Override(c.BigQuery.ProjectID, project)
		c.BigQuery.Dataset = stringutil.Override(c.BigQuery.Dataset, dataset)
		c.BigQuery.Table = stringutil.Override(c.BigQuery.Table, table)
	}
}

func (c *Config) loadDefaultValues() {
	c.SerpAPI.LoadDefaultValues()

	if c.Output.FilePath == "" {
		c.Output.FilePath = constants.DefaultOutputFilePath
	}

	if c.Schedule.Cron == "" {
		c.Schedule.Cron = constants.DefaultCron
	}

	if c.Schedule.Timezone == "" {
		c.Schedule.Timezone = constants.DefaultTimezone
	}
}

func (c Config) validateSerpAPI() error {
	if c.SerpAPI.APIKey == "" {
		return fmt.Errorf("serpapi api key is not set, set it in the config or via %s", constants.SerpAPIKeyEnvKey)
	}

	if c.SerpAPI.JobTitle == "" {
		return fmt.Errorf("serpapi job title is not set, set it in the config or via %s", constants.JobTitleEnvKey)
	}

	if c.SerpAPI.MaxJobs <= 0 {
		return fmt.Errorf("maxJobs must be a positive number, current value: %d", c.SerpAPI.MaxJobs)
	}

	if c.SerpAPI.MaxPages <= 0 {
		return fmt.Errorf("maxPages must be a positive number, current value: %d", c.SerpAPI.MaxPages)
	}

	if c.SerpAPI.RequestsPerSecond < 0 {
		return fmt.Errorf("requestsPerSecond cannot be negative, current value: %v", c.SerpAPI.RequestsPerSecond)
	}

	if c.SerpAPI.TimeoutSeconds < 0 {
		return fmt.Errorf("timeoutSeconds cannot be negative, current value: %d", c.SerpAPI.TimeoutSeconds)
	}

	return nil
}

func (c Config) validateBigQuery() error {
	if c.BigQuery == nil {
		return fmt.Errorf("bigquery config is not set")
	}

	if stringutil.Empty(c.BigQuery.ProjectID, c.BigQuery.Dataset, c.BigQuery.Table) {
		return fmt.Errorf("bigquery projectID, dataset and table are all required, set them in the config or via %s, %s and %s",
			constants.BigQueryProjEnvKey, constants.RawDatasetEnvKey, constants.SerpAPITableEnvKey)
	}

	return nil
}

func (c Config) Validate() error {
	if err := c.validateSerpAPI(); err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}

	if err := c.validateBigQuery(); err != nil {
		return fmt.Errorf("config is invalid: %w", err)
	}

	if c.Archive.GCS != nil && c.Archive.GCS.Bucket == "" && c.Archive.GCS.Prefix != "" {
		return fmt.Errorf("config is invalid: archive prefix %q is set without a bucket", c.Archive.GCS.Prefix)
	}

	if _, err := cron.ParseStandard(c.Schedule.Cron); err != nil {
		return fmt.Errorf("config is invalid, schedule cron %q: %w", c.Schedule.Cron, err)
	}

	if _, err := time.LoadLocation(c.Schedule.Timezone); err != nil {
		return fmt.Errorf("config is invalid, schedule timezone %q: %w", c.Schedule.Timezone, err)
	}

	return nil
}
