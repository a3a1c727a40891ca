package jobs

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/artie-labs/jobfeed/clients/serpapi"
)

// maxReportedIndices caps how many offending rows are listed in a validation error.
const maxReportedIndices = 10

var validate = validator.New(validator.WithRequiredStructEnabled())

// Row is what gets loaded into the warehouse, [JobData] carries the full payload returned by the API.
type Row struct {
	JobID       string      `json:"job_id" validate:"required"`
	Title       *string     `json:"title"`
	CompanyName *string     `json:"company_name"`
	CreatedAt   time.Time   `json:"created_at" validate:"required"`
	JobData     serpapi.Job `json:"job_data"`
}

// Validate rejects the whole batch if any job is missing a job_id, since the column is REQUIRED.
func Validate(jobs []serpapi.Job) error {
	var missing []int
	for i, job := range jobs {
		if err := validate.Var(job.ID(), "required"); err != nil {
			missing = append(missing, i)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%d job(s) missing job_id, cannot load into REQUIRED column, offending indices: %v (showing up to %d)",
			len(missing), missing[:min(len(missing), maxReportedIndices)], maxReportedIndices)
	}

	return nil
}

func ToRow(job serpapi.Job, createdAt time.Time) (Row, error) {
	row := Row{
		JobID:       job.ID(),
		Title:       job.StringField("title"),
		CompanyName: job.StringField("company_name"),
		// BigQuery timestamps only go down to microseconds.
		CreatedAt: createdAt.UTC().Truncate(time.Microsecond),
		JobData:   job,
	}

	if err := validate.Struct(row); err != nil {
		return Row{}, fmt.Errorf("missing job_id in source row, cannot load into REQUIRED column: %w", err)
	}

	return row, nil
}

// ToRows maps every job, all rows share the same [createdAt].
func ToRows(jobs []serpapi.Job, createdAt time.Time) ([]Row, error) {
	rows := make([]Row, 0, len(jobs))
	for i, job := range jobs {
		row, err := ToRow(job, createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to map job at index %d: %w", i, err)
		}

		rows = append(rows, row)
	}

	return rows, nil
}
