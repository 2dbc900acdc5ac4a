// Package iqx provides a client for the IQX market-data API
package iqx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

const (
	DefaultBaseURL    = "https://proxy.iqx.vn/proxy/trading/api/chart/OHLCChart/gap-chart"
	DefaultInsightURL = "https://proxy.iqx.vn/proxy/trading/api/iq-insight-service/v1/company"
	DefaultTimeout    = 10 * time.Second

	// barsPerSymbol is the default history depth requested per symbol.
	barsPerSymbol = 60
)

// Client implements PriceSource and StatementSource against the IQX API.
type Client struct {
	baseURL    string
	insightURL string
	httpClient *http.Client
	logger     *common.Logger
	now        func() time.Time // injectable clock for the series cutoff
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the gap-chart endpoint URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithInsightURL sets the company-insight endpoint URL
func WithInsightURL(insightURL string) ClientOption {
	return func(c *Client) {
		c.insightURL = insightURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new IQX client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		insightURL: DefaultInsightURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
		now:    time.Now,
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
	return fmt.Sprintf("IQX API error: %s (status: %d)", e.Message, e.StatusCode)
}

// gapChartRequest is the gap-chart request body. To is a unix-second
// cutoff; the API returns bars strictly before it.
type gapChartRequest struct {
	TimeFrame string   `json:"timeFrame"`
	Symbols   []string `json:"symbols"`
	To        int64    `json:"to"`
	CountBack int      `json:"countBack"`
}

// GetOHLC retrieves one day-granularity series per symbol. The cutoff is
// 7 AM local on the current day so intraday partial bars are excluded.
// countBack 0 defaults to len(symbols)*60.
func (c *Client) GetOHLC(ctx context.Context, symbols []string, countBack int) ([]models.OHLCSeries, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("no symbols provided")
	}

	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}

	if countBack <= 0 {
		countBack = len(upper) * barsPerSymbol
	}

	now := c.now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 7, 0, 0, 0, now.Location())

	body, err := json.Marshal(gapChartRequest{
		TimeFrame: "ONE_DAY",
		Symbols:   upper,
		To:        cutoff.Unix(),
		CountBack: countBack,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Debug().
		Strs("symbols", upper).
		Int("count_back", countBack).
		Msg("IQX gap-chart request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	var series []models.OHLCSeries
	if err := json.NewDecoder(resp.Body).Decode(&series); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return series, nil
}

// GetStatementSection retrieves one raw company-insight document for a
// ticker. section is the resource suffix, e.g. "statistics-financial" or
// "financial-statement?section=CASH_FLOW". The body is returned verbatim
// for the ingest pipeline to flatten.
func (c *Client) GetStatementSection(ctx context.Context, ticker, section string) ([]byte, error) {
	reqURL := fmt.Sprintf("%s/%s/%s", c.insightURL, strings.ToUpper(ticker), section)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(respBody)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return data, nil
}

// Ensure Client implements the data source interfaces
var (
	_ interfaces.PriceSource     = (*Client)(nil)
	_ interfaces.StatementSource = (*Client)(nil)
)
