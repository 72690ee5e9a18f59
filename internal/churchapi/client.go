// Package churchapi is the HTTP client for the church content API that
// serves daily-study devotionals and the program list.
package churchapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	devotionalsPath = "/daily-study"
	programsPath    = "/programs"

	defaultTimeout     = 30 * time.Second
	maxRetries         = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2
)

// Config configures a Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// RequestsPerSecond paces outgoing requests. Zero disables pacing.
	RequestsPerSecond float64
}

// Client interfaces with the church content API
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retryDelay time.Duration
}

// NewClient creates a new church API client
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		retryDelay: initialRetryDelay,
	}
}

// DevotionalData represents a daily-study record from the API
type DevotionalData struct {
	ID        int64  `json:"id"`
	Program   string `json:"program"`
	Date      string `json:"date"`
	Topic     string `json:"topic"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
}

// ProgramData represents a program from the API
type ProgramData struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	CreatedAt string `json:"created_at"`
}

// ListDevotionals fetches the full daily-study collection.
func (c *Client) ListDevotionals(ctx context.Context) ([]DevotionalData, error) {
	var records []DevotionalData
	if err := c.get(ctx, devotionalsPath, &records); err != nil {
		return nil, fmt.Errorf("failed to list devotionals: %w", err)
	}
	return records, nil
}

// GetDevotional fetches the daily-study record for one date.
// It returns ErrNotFound when the API has nothing for that date.
func (c *Client) GetDevotional(ctx context.Context, date string) (*DevotionalData, error) {
	var record DevotionalData
	if err := c.get(ctx, devotionalsPath+"/"+url.PathEscape(date), &record); err != nil {
		return nil, fmt.Errorf("failed to get devotional for %s: %w", date, err)
	}
	// A null or empty body decodes to a record without an id.
	if record.ID <= 0 {
		return nil, fmt.Errorf("devotional for %s has no id: %w", date, ErrNotFound)
	}
	return &record, nil
}

// ListPrograms fetches the program list. Titles are cleaned of the trailing
// text some records carry after a literal \r\n sequence.
func (c *Client) ListPrograms(ctx context.Context) ([]ProgramData, error) {
	var programs []ProgramData
	if err := c.get(ctx, programsPath, &programs); err != nil {
		return nil, fmt.Errorf("failed to list programs: %w", err)
	}
	for i := range programs {
		programs[i].Title = CleanTitle(programs[i].Title)
	}
	return programs, nil
}

// CleanTitle cuts a program title at the first literal `\r\n` and trims it.
func CleanTitle(title string) string {
	title, _, _ = strings.Cut(title, `\r\n`)
	return strings.TrimSpace(title)
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := calculateRetryDelay(c.retryDelay, attempt)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		lastErr = c.doRequest(ctx, c.baseURL+path, out)
		if lastErr == nil {
			return nil
		}

		// Only retry on rate limits or server errors
		if !isRetryableError(lastErr) {
			return lastErr
		}
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode == http.StatusTooManyRequests {
		return ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func calculateRetryDelay(base time.Duration, attempt int) time.Duration {
	delay := base
	for i := 0; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}
