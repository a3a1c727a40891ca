package bigquery

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/bigquery"

	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/config/constants"
	"github.com/artie-labs/jobfeed/lib/jobs"
)

type Store struct {
	client tableClient
}

func LoadBigQuery(ctx context.Context, cfg config.BigQuery) (*Store, error) {
	if cfg.PathToCredentials != "" {
		// If the credPath is set, let's set it into the env var.
		slog.Debug("Writing the path to BQ credentials to env var for google auth")
		if err := os.Setenv(constants.GooglePathToCredentialsEnvKey, cfg.PathToCredentials); err != nil {
			return nil, fmt.Errorf("error setting env var for %q: %w", constants.GooglePathToCredentialsEnvKey, err)
		}
	}

	client, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create bigquery client: %w", err)
	}

	if cfg.Location != "" {
		client.Location = cfg.Location
	}

	return &Store{client: gcpClient{client: client}}, nil
}

// EnsureTable creates the table with [Schema] if it does not exist yet, returning true if it was created.
func (s *Store) EnsureTable(ctx context.Context, tableID TableID) (bool, error) {
	_, err := s.client.GetTableMetadata(ctx, tableID)
	if err == nil {
		return false, nil
	}

	if !IsNotFoundErr(err) {
		return false, fmt.Errorf("failed to get table metadata for %q: %w", tableID.FullyQualifiedName(), err)
	}

	slog.Info("Table does not exist, creating it", slog.String("tableID", tableID.FullyQualifiedName()))
	if err = s.client.CreateTable(ctx, tableID, newTableMetadata()); err != nil {
		if IsAlreadyExistsErr(err) {
			slog.Info("Table was created concurrently, continuing", slog.String("tableID", tableID.FullyQualifiedName()))
			return false, nil
		}

		return false, fmt.Errorf("failed to create table %q: %w", tableID.FullyQualifiedName(), err)
	}

	return true, nil
}

type AppendOpts struct {
	// AttachSchema should be set when the table was just created.
	AttachSchema bool
	JobIDPrefix  string
}

// Append loads the rows with WRITE_APPEND and returns the number of rows BigQuery reported as written.
func (s *Store) Append(ctx context.Context, tableID TableID, rows []jobs.Row, opts AppendOpts) (int64, error) {
	if len(rows) == 0 {
		// There's no rows. Let's skip.
		return 0, nil
	}

	data, err := encodeRows(rows)
	if err != nil {
		return 0, err
	}

	request := LoadRequest{Data: data, JobIDPrefix: opts.JobIDPrefix}
	if opts.AttachSchema {
		request.Schema = Schema
	}

	status, err := s.client.Load(ctx, tableID, request)
	if err != nil {
		return 0, fmt.Errorf("failed to load rows into %q: %w", tableID.FullyQualifiedName(), err)
	}

	if err = status.Err(); err != nil {
		for _, detail := range status.Errors {
			slog.Warn("Load job error", slog.Any("err", detail))
		}

		return 0, fmt.Errorf("load job into %q failed: %w", tableID.FullyQualifiedName(), err)
	}

	loaded := int64(len(rows))
	if status.Statistics != nil {
		if loadStats, ok := status.Statistics.Details.(*bigquery.LoadStatistics); ok {
			loaded = loadStats.OutputRows
		}
	}

	return loaded, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// encodeRows renders the rows as newline delimited JSON.
func encodeRows(rows []jobs.Row) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	for i, row := range rows {
		if err := encoder.Encode(row); err != nil {
			return nil, fmt.Errorf("failed to encode row %d: %w", i, err)
		}
	}

	return &buf, nil
}
