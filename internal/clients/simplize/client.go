// Package simplize provides a client for the Simplize analysis-report API
package simplize

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

const (
	DefaultBaseURL   = "https://api2.simplize.vn/api/company/analysis-report/list"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 5 // requests per second

	// minPageSize keeps single-page fetches large enough to filter from.
	minPageSize = 20
)

// Client implements the ReportSource interface against the Simplize API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time // injectable clock for age filtering
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Simplize client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Simplize API error: %s (status: %d)", e.Message, e.StatusCode)
}

// NoReportsError signals an empty report list for a ticker. It is the
// explicit "no data found" condition, distinct from transport failures.
type NoReportsError struct {
	Ticker     string
	MaxAgeDays int // 0 when no age window was applied
}

func (e *NoReportsError) Error() string {
	if e.MaxAgeDays > 0 {
		return fmt.Sprintf("no reports found within %d days for ticker: %s", e.MaxAgeDays, e.Ticker)
	}
	return fmt.Sprintf("no reports found for ticker: %s", e.Ticker)
}

// listResponse is the report list envelope returned by the API.
type listResponse struct {
	Data []models.ReportMetadata `json:"data"`
}

// GetReports retrieves a page of reports for a ticker in the source's
// most-recent-first order. An empty result is a NoReportsError.
func (c *Client) GetReports(ctx context.Context, ticker string, limit int) ([]models.ReportMetadata, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	params := url.Values{}
	params.Set("ticker", strings.ToUpper(ticker))
	params.Set("isWl", "false")
	params.Set("page", "0")
	params.Set("size", strconv.Itoa(limit))

	reqURL := fmt.Sprintf("%s?%s", c.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug().Str("ticker", ticker).Int("size", limit).Msg("Simplize report list request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var list listResponse
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(list.Data) == 0 {
		return nil, &NoReportsError{Ticker: ticker}
	}

	return list.Data, nil
}

// GetLatestReports retrieves the newest count reports.
func (c *Client) GetLatestReports(ctx context.Context, ticker string, count int) ([]models.ReportMetadata, error) {
	pageSize := count
	if pageSize < minPageSize {
		pageSize = minPageSize
	}

	reports, err := c.GetReports(ctx, ticker, pageSize)
	if err != nil {
		return nil, err
	}

	if len(reports) > count {
		reports = reports[:count]
	}
	return reports, nil
}

// GetValidReports retrieves the newest count reports issued within
// maxAgeDays of now. Reports with unparseable issue dates are dropped.
func (c *Client) GetValidReports(ctx context.Context, ticker string, count, maxAgeDays int) ([]models.ReportMetadata, error) {
	pageSize := count * 2
	if pageSize < minPageSize {
		pageSize = minPageSize
	}

	reports, err := c.GetReports(ctx, ticker, pageSize)
	if err != nil {
		return nil, err
	}

	valid := filterReportsByAge(reports, maxAgeDays, c.now(), c.logger)
	if len(valid) == 0 {
		return nil, &NoReportsError{Ticker: ticker, MaxAgeDays: maxAgeDays}
	}

	c.logger.Debug().
		Str("ticker", ticker).
		Int("valid", len(valid)).
		Int("max_age_days", maxAgeDays).
		Msg("Filtered reports by age")

	if len(valid) > count {
		valid = valid[:count]
	}
	return valid, nil
}

// filterReportsByAge keeps reports no older than maxAgeDays at the given
// reference time, preserving source order.
func filterReportsByAge(reports []models.ReportMetadata, maxAgeDays int, now time.Time, logger *common.Logger) []models.ReportMetadata {
	var valid []models.ReportMetadata
	for _, r := range reports {
		age, ok := r.AgeDays(now)
		if !ok {
			logger.Warn().Str("issue_date", r.IssueDate).Msg("Cannot parse report date, skipping")
			continue
		}
		if age <= maxAgeDays {
			valid = append(valid, r)
		}
	}
	return valid
}

// Ensure Client implements ReportSource
var _ interfaces.ReportSource = (*Client)(nil)
