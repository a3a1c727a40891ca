package serpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/artie-labs/jobfeed/lib/config"
	"github.com/artie-labs/jobfeed/lib/jitter"
	"github.com/artie-labs/jobfeed/lib/retry"
)

// noResultsMessage is returned with a 200 once a search (or a page of it) is exhausted, we treat it as an empty page.
const noResultsMessage = "hasn't returned any results"

// maxErrorBodyBytes caps how much of a failed response we keep for the error message.
const maxErrorBodyBytes = 512

type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	retryCfg   retry.RetryConfig
}

func NewClient(cfg config.SerpAPI) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("serpapi api key is required")
	}

	if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid serpapi base url %q: %w", cfg.BaseURL, err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		retryCfg: retry.NewRetryConfig(retry.NewRetryConfigArgs{
			JitterBaseMs:   500,
			JitterMaxMs:    jitter.DefaultMaxMs,
			MaxAttempts:    cfg.MaxAttempts,
			IsRetryableErr: IsRetryableErr,
		}),
	}

	if cfg.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return client, nil
}

// IsRetryableErr returns true for throttling, server side failures and transport errors.
func IsRetryableErr(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= http.StatusInternalServerError
	}

	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

func (c *Client) buildURL(query Query, pageToken string) string {
	values := url.Values{}
	values.Set("engine", query.Engine)
	values.Set("q", query.Q)
	values.Set("hl", query.Language)
	values.Set("api_key", c.apiKey)
	if pageToken != "" {
		values.Set("next_page_token", pageToken)
	}

	return fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
}

// Search fetches a single page of results, [pageToken] should be empty for the first page.
func (c *Client) Search(ctx context.Context, query Query, pageToken string) (*Page, error) {
	return retry.WithRetries(ctx, c.retryCfg, func(attempt int, _ error) (*Page, error) {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("failed to wait for rate limiter: %w", err)
			}
		}

		slog.Debug("Requesting search page",
			slog.String("engine", query.Engine),
			slog.String("q", query.Q),
			slog.Bool("hasPageToken", pageToken != ""),
			slog.Int("attempt", attempt),
		)
		return c.search(ctx, query, pageToken)
	})
}

func (c *Client) search(ctx context.Context, query Query, pageToken string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(query, pageToken), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Don't leak the api key that's part of the url.
		return nil, redactErr(err, c.apiKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))
		return nil, StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	return decodePage(resp.Body)
}

func decodePage(r io.Reader) (*Page, error) {
	decoder := json.NewDecoder(r)
	// Keep numbers as-is so the stored payload matches what the API returned.
	decoder.UseNumber()

	var page Page
	if err := decoder.Decode(&page); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	if page.Error != "" {
		if strings.Contains(page.Error, noResultsMessage) {
			return &Page{}, nil
		}

		return nil, fmt.Errorf("search api returned an error: %s", page.Error)
	}

	return &page, nil
}

type redactedError struct {
	msg string
	err error
}

func (r redactedError) Error() string { return r.msg }

func (r redactedError) Unwrap() error { return r.err }

func redactErr(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}

	return redactedError{msg: strings.ReplaceAll(err.Error(), secret, "REDACTED"), err: err}
}
