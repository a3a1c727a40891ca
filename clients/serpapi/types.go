package serpapi

import (
	"encoding/json"
	"fmt"
)

const JobIDKey = "job_id"

// Job is a single entry of `jobs_results`, kept as the raw object so that the full payload can be stored.
type Job map[string]any

// ID returns the job_id, or an empty string if it is missing or not a scalar.
func (j Job) ID() string {
	switch castedValue := j[JobIDKey].(type) {
	case string:
		return castedValue
	case json.Number:
		return castedValue.String()
	default:
		return ""
	}
}

// StringField returns the value for [key] if it's a string, else nil.
func (j Job) StringField(key string) *string {
	if value, ok := j[key].(string); ok {
		return &value
	}

	return nil
}

type Pagination struct {
	NextPageToken string `json:"next_page_token"`
}

type Page struct {
	JobsResults []Job      `json:"jobs_results"`
	Pagination  Pagination `json:"serpapi_pagination"`
	// Error is set by the API when the search could not be completed, e.g. an invalid key or "Google hasn't returned any results".
	Error string `json:"error"`
}

type Query struct {
	Engine   string
	Q        string
	Language string
}

type StatusError struct {
	StatusCode int
	Body       string
}

func (s StatusError) Error() string {
	return fmt.Sprintf("unexpected status code: %d, body: %s", s.StatusCode, s.Body)
}
