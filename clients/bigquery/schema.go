package bigquery

import (
	"fmt"

	"cloud.google.com/go/bigquery"
)

const JobIDColumn = "job_id"

// Schema is the fixed layout of the destination table, the full API payload is kept in `job_data`.
var Schema = bigquery.Schema{
	{Name: JobIDColumn, Type: bigquery.StringFieldType, Required: true},
	{Name: "title", Type: bigquery.StringFieldType},
	{Name: "company_name", Type: bigquery.StringFieldType},
	{Name: "created_at", Type: bigquery.TimestampFieldType, Required: true},
	{Name: "job_data", Type: bigquery.JSONFieldType},
}

func newTableMetadata() *bigquery.TableMetadata {
	return &bigquery.TableMetadata{
		Schema:     Schema,
		Clustering: &bigquery.Clustering{Fields: []string{JobIDColumn}},
	}
}

type TableID struct {
	Project string
	Dataset string
	Table   string
}

func NewTableID(project, dataset, table string) TableID {
	return TableID{Project: project, Dataset: dataset, Table: table}
}

func (t TableID) FullyQualifiedName() string {
	return fmt.Sprintf("%s.%s.%s", t.Project, t.Dataset, t.Table)
}
