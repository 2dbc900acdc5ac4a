// Package interfaces defines the capability contracts for Arix
package interfaces

import (
	"context"

	"github.com/iqx-labs/arix/internal/models"
)

// ReportSource provides access to the broker analysis-report catalog.
type ReportSource interface {
	// GetReports retrieves a page of reports for a ticker in the source's
	// default (most recent first) order.
	GetReports(ctx context.Context, ticker string, limit int) ([]models.ReportMetadata, error)

	// GetLatestReports retrieves the newest count reports.
	GetLatestReports(ctx context.Context, ticker string, count int) ([]models.ReportMetadata, error)

	// GetValidReports retrieves the newest count reports issued within
	// maxAgeDays of now.
	GetValidReports(ctx context.Context, ticker string, count, maxAgeDays int) ([]models.ReportMetadata, error)
}

// PriceSource provides access to OHLCV bar series.
type PriceSource interface {
	// GetOHLC retrieves one day-granularity series per symbol.
	// countBack 0 defaults to len(symbols)*60.
	GetOHLC(ctx context.Context, symbols []string, countBack int) ([]models.OHLCSeries, error)
}

// CompletionOptions tunes a single completion call. Zero values fall back
// to the provider's configured defaults.
type CompletionOptions struct {
	Temperature float64
	MaxTokens   int
}

// CompletionProvider is an opaque text-completion capability.
type CompletionProvider interface {
	// ChatCompletion sends a full message list to the completion endpoint.
	// An empty model selects the provider's default model.
	ChatCompletion(ctx context.Context, messages []models.ChatMessage, model string, opts CompletionOptions) (*models.ChatResult, error)

	// SimpleChat sends one user message with an optional system prompt.
	SimpleChat(ctx context.Context, userMessage, systemPrompt, model string) (*models.ChatResult, error)
}

// EmbeddingProvider is an opaque text-to-vector capability.
type EmbeddingProvider interface {
	// CreateEmbedding embeds a single input text.
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// FieldMatch is one exact-match condition on a point payload field.
type FieldMatch struct {
	Key   string
	Value string
}

// VectorPoint is one stored point: id, optional vector, and payload.
type VectorPoint struct {
	ID      uint64
	Vector  []float32
	Payload models.FinancialDataPoint
}

// CollectionInfo describes an existing vector collection.
type CollectionInfo struct {
	Name        string
	PointsCount int64
}

// VectorStore is an opaque point store supporting filtered scroll and
// similarity search. All methods are single network round trips with no
// internal retry.
type VectorStore interface {
	// GetCollection probes a collection; an error means it is unreachable
	// or absent.
	GetCollection(ctx context.Context, name string) (*CollectionInfo, error)

	// CreateCollection creates a collection with the given vector size and
	// cosine distance.
	CreateCollection(ctx context.Context, name string, vectorSize int) error

	// DeleteCollection removes a collection and its points.
	DeleteCollection(ctx context.Context, name string) error

	// UpsertPoints writes points into a collection.
	UpsertPoints(ctx context.Context, name string, points []VectorPoint) error

	// Scroll pages through points matching all conditions, payload included,
	// vectors omitted.
	Scroll(ctx context.Context, name string, must []FieldMatch, limit int) ([]VectorPoint, error)

	// Search runs a similarity query filtered by the given conditions,
	// ranked by the store's native similarity order.
	Search(ctx context.Context, name string, vector []float32, must []FieldMatch, limit int) ([]VectorPoint, error)
}

// DocumentExtractor turns attached document URLs into plain text.
type DocumentExtractor interface {
	// ExtractText downloads and extracts a single document.
	ExtractText(ctx context.Context, url string) (string, error)

	// ExtractAll extracts every URL independently and concurrently. The
	// result has the same length and order as urls; failed slots hold a
	// fixed placeholder instead of an error.
	ExtractAll(ctx context.Context, urls []string) []string
}

// StatementSource fetches structured financial-statement sections for
// ingestion into the vector store.
type StatementSource interface {
	// GetStatementSection retrieves one raw section document for a ticker.
	GetStatementSection(ctx context.Context, ticker, section string) ([]byte, error)
}
