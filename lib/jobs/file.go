package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/artie-labs/jobfeed/clients/serpapi"
)

// WriteFile writes the jobs as an indented JSON array, the file is replaced atomically.
func WriteFile(path string, jobs []serpapi.Job) error {
	if jobs == nil {
		jobs = []serpapi.Job{}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory %q: %w", dir, err)
	}

	tmpFile, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())

	if err = tmpFile.Chmod(0o644); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to chmod temp file: %w", err)
	}

	encoder := json.NewEncoder(tmpFile)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err = encoder.Encode(jobs); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to encode jobs: %w", err)
	}

	if err = tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err = os.Rename(tmpFile.Name(), path); err != nil {
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	return nil
}
