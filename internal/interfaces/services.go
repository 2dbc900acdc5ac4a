package interfaces

import (
	"context"

	"github.com/iqx-labs/arix/internal/models"
)

// QueryService classifies user messages into ticker + intent.
type QueryService interface {
	// Classify never fails; on any model or parse error it falls back to a
	// deterministic heuristic.
	Classify(ctx context.Context, message string) models.QueryAnalysis
}

// RAGResult is the retrieval engine's soft-fail result. Success false with
// a reason is the degraded path, not an error.
type RAGResult struct {
	Success    bool   `json:"success"`
	Context    string `json:"context"`
	DataPoints int    `json:"dataPoints"`
	Error      string `json:"error,omitempty"`
}

// RAGService retrieves a bounded, ordered set of financial data points and
// renders them into labeled text blocks.
type RAGService interface {
	QueryFinancials(ctx context.Context, ticker, question string) RAGResult
}

// PriceService derives summaries and prompt text from OHLC series.
type PriceService interface {
	// GetPriceContext fetches and formats price data for the prompt.
	// Fetch failure yields placeholder text, never an error.
	GetPriceContext(ctx context.Context, symbols []string) string

	// Summarize computes the derived price summary. Errors on empty series.
	Summarize(series *models.OHLCSeries) (*models.PriceSummary, error)

	// FormatForPrompt renders the summary plus a recent-bars table.
	FormatForPrompt(series *models.OHLCSeries) (string, error)
}

// AnalysisResult is one completed stock analysis.
type AnalysisResult struct {
	Ticker       string                 `json:"ticker"`
	Analysis     string                 `json:"analysis"`
	Reports      []models.ReportSummary `json:"reports"`
	TotalReports int                    `json:"totalReports"`
	Usage        *models.ChatUsage      `json:"usage,omitempty"`
}

// AnalysisService orchestrates report retrieval, document extraction,
// retrieval-augmented context fusion, and the completion relay.
type AnalysisService interface {
	// AnalyzeStock runs the comprehensive multi-report analysis.
	AnalyzeStock(ctx context.Context, ticker string, numReports int, model string) (*AnalysisResult, error)

	// SmartAnalyze answers a user question about a ticker using recency-
	// filtered reports, price context, and vector-retrieved financials.
	SmartAnalyze(ctx context.Context, ticker, question, model string) (*AnalysisResult, error)

	// GeneralChat answers a question with the conversational persona and
	// no market data context.
	GeneralChat(ctx context.Context, question, model string) (*models.ChatResult, error)
}
