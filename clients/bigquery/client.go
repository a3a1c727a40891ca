package bigquery

import (
	"context"
	"fmt"
	"io"

	"cloud.google.com/go/bigquery"
)

type LoadRequest struct {
	// Data is newline delimited JSON.
	Data io.Reader
	// Schema is only set when the table was just created, otherwise the table's schema is used.
	Schema      bigquery.Schema
	JobIDPrefix string
}

// tableClient is the subset of the BigQuery API the store needs.
type tableClient interface {
	GetTableMetadata(ctx context.Context, tableID TableID) (*bigquery.TableMetadata, error)
	CreateTable(ctx context.Context, tableID TableID, metadata *bigquery.TableMetadata) error
	Load(ctx context.Context, tableID TableID, request LoadRequest) (*bigquery.JobStatus, error)
	Close() error
}

type gcpClient struct {
	client *bigquery.Client
}

func (g gcpClient) table(tableID TableID) *bigquery.Table {
	return g.client.DatasetInProject(tableID.Project, tableID.Dataset).Table(tableID.Table)
}

func (g gcpClient) GetTableMetadata(ctx context.Context, tableID TableID) (*bigquery.TableMetadata, error) {
	return g.table(tableID).Metadata(ctx)
}

func (g gcpClient) CreateTable(ctx context.Context, tableID TableID, metadata *bigquery.TableMetadata) error {
	return g.table(tableID).Create(ctx, metadata)
}

func (g gcpClient) Load(ctx context.Context, tableID TableID, request LoadRequest) (*bigquery.JobStatus, error) {
	source := bigquery.NewReaderSource(request.Data)
	source.SourceFormat = bigquery.JSON
	if len(request.Schema) > 0 {
		source.Schema = request.Schema
	}

	loader := g.table(tableID).LoaderFrom(source)
	loader.WriteDisposition = bigquery.WriteAppend
	loader.CreateDisposition = bigquery.CreateNever
	if request.JobIDPrefix != "" {
		loader.JobIDConfig = bigquery.JobIDConfig{JobID: request.JobIDPrefix, AddJobIDSuffix: true}
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to start load job: %w", err)
	}

	status, err := job.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to wait for load job %q: %w", job.ID(), err)
	}

	return status, nil
}

func (g gcpClient) Close() error {
	return g.client.Close()
}
