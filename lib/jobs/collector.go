package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/artie-labs/jobfeed/clients/serpapi"
	"github.com/artie-labs/jobfeed/lib/maputil"
)

type Searcher interface {
	Search(ctx context.Context, query serpapi.Query, pageToken string) (*serpapi.Page, error)
}

type CollectOpts struct {
	MaxJobs  int
	MaxPages int
}

type CollectStats struct {
	PagesFetched int
	// Duplicates - rows skipped because their job_id was already collected.
	Duplicates int
	// MissingID - rows skipped because they had no job_id.
	MissingID int
}

// Collect pages through the search results, keeping the first occurrence of every job_id in the order it was seen.
// It stops once [opts.MaxJobs] unique jobs have been collected, [opts.MaxPages] pages were fetched or there are no more pages.
func Collect(ctx context.Context, searcher Searcher, query serpapi.Query, opts CollectOpts) ([]serpapi.Job, CollectStats, error) {
	var stats CollectStats
	if opts.MaxJobs <= 0 || opts.MaxPages <= 0 {
		return nil, stats, fmt.Errorf("maxJobs and maxPages must be positive, got %d and %d", opts.MaxJobs, opts.MaxPages)
	}

	seen := maputil.NewOrderedMap[serpapi.Job]()
	var pageToken string
	for seen.Len() < opts.MaxJobs && stats.PagesFetched < opts.MaxPages {
		page, err := searcher.Search(ctx, query, pageToken)
		if err != nil {
			return nil, stats, fmt.Errorf("failed to fetch page %d: %w", stats.PagesFetched+1, err)
		}

		stats.PagesFetched++
		for _, job := range page.JobsResults {
			jobID := job.ID()
			if jobID == "" {
				stats.MissingID++
				continue
			}

			if !seen.AddIfAbsent(jobID, job) {
				stats.Duplicates++
				continue
			}

			if seen.Len() >= opts.MaxJobs {
				break
			}
		}

		slog.Debug("Fetched search page",
			slog.Int("page", stats.PagesFetched),
			slog.Int("results", len(page.JobsResults)),
			slog.Int("uniqueJobs", seen.Len()),
		)

		pageToken = page.Pagination.NextPageToken
		if pageToken == "" {
			break
		}
	}

	return seen.Values(), stats, nil
}
