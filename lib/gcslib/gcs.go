package gcslib

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
)

type GCSClient struct {
	client *storage.Client
}

func NewGCSClient(client *storage.Client) GCSClient {
	return GCSClient{client: client}
}

// ObjectKey returns [prefix]/YYYY-MM-DD/[filename], grouping the daily snapshots by the date of the run.
func ObjectKey(prefix string, runTime time.Time, filename string) string {
	parts := []string{runTime.UTC().Format(time.DateOnly), filename}
	if trimmed := strings.Trim(prefix, "/"); trimmed != "" {
		parts = append([]string{trimmed}, parts...)
	}

	return path.Join(parts...)
}

// UploadLocalFileToGCS copies the file to gs://[bucket]/[prefix]/YYYY-MM-DD/<file name> and returns the URI.
func (g GCSClient) UploadLocalFileToGCS(ctx context.Context, bucket, prefix, filePath string, runTime time.Time) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	// Canceling the writer's context aborts the upload, closing it would commit a partial object.
	writerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	objectKey := ObjectKey(prefix, runTime, filepath.Base(filePath))
	writer := g.client.Bucket(bucket).Object(objectKey).NewWriter(writerCtx)
	writer.ContentType = "application/json"

	if _, err = io.Copy(writer, file); err != nil {
		cancel()
		return "", fmt.Errorf("failed to write file to GCS: %w", err)
	}

	if err = writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close GCS writer: %w", err)
	}

	return fmt.Sprintf("gs://%s/%s", bucket, objectKey), nil
}

func (g GCSClient) Close() error {
	return g.client.Close()
}
