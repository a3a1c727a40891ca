package jobs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artie-labs/jobfeed/clients/serpapi"
)

func TestWriteFile(t *testing.T) {
	{
		// Empty result is an empty array
		path := filepath.Join(t.TempDir(), "jobs.json")
		require.NoError(t, WriteFile(path, nil))

		contents, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "[]\n", string(contents))
	}
	{
		// Indented, non-ASCII and HTML are written as-is, parent dirs are created
		path := filepath.Join(t.TempDir(), "nested", "dir", "jobs.json")
		require.NoError(t, WriteFile(path, []serpapi.Job{{"job_id": "a", "title": "Ingénieur <data>"}}))

		contents, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, `[
  {
    "job_id": "a",
    "title": "Ingénieur <data>"
  }
]
`, string(contents))

		info, err := os.Stat(path)
		assert.NoError(t, err)
		assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
	}
	{
		// Overwrites, leaves no temp files behind
		dir := t.TempDir()
		path := filepath.Join(dir, "jobs.json")
		require.NoError(t, WriteFile(path, []serpapi.Job{job("a")}))
		require.NoError(t, WriteFile(path, []serpapi.Job{}))

		contents, err := os.ReadFile(path)
		assert.NoError(t, err)
		assert.Equal(t, "[]\n", string(contents))

		entries, err := os.ReadDir(dir)
		assert.NoError(t, err)
		assert.Len(t, entries, 1)
	}
}
