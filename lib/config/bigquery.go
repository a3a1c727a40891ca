package config

import "fmt"

type BigQuery struct {
	// PathToCredentials is _optional_ if you have GOOGLE_APPLICATION_CREDENTIALS set as an env var
	// Links to credentials: https://cloud.google.com/docs/authentication/application-default-credentials#GAC
	PathToCredentials string `yaml:"pathToCredentials"`
	ProjectID         string `yaml:"projectID"`
	Dataset           string `yaml:"dataset"`
	Table             string `yaml:"table"`
	Location          string `yaml:"location"`
}

// TableID - returns the fully qualified table name: project.dataset.table
func (b BigQuery) TableID() string {
	return fmt.Sprintf("%s.%s.%s", b.ProjectID, b.Dataset, b.Table)
}
