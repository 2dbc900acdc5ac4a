// Package app wires configuration, clients, and services together.
package app

import (
	"fmt"

	"github.com/iqx-labs/arix/internal/clients/iqx"
	"github.com/iqx-labs/arix/internal/clients/openai"
	"github.com/iqx-labs/arix/internal/clients/qdrant"
	"github.com/iqx-labs/arix/internal/clients/simplize"
	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/services/analysis"
	"github.com/iqx-labs/arix/internal/services/extract"
	"github.com/iqx-labs/arix/internal/services/price"
	"github.com/iqx-labs/arix/internal/services/query"
	"github.com/iqx-labs/arix/internal/services/rag"
)

// App holds the assembled application graph.
type App struct {
	Config *common.Config
	Logger *common.Logger

	// Clients
	Reports     interfaces.ReportSource
	PriceSource interfaces.PriceSource
	Statements  interfaces.StatementSource
	Completions interfaces.CompletionProvider
	Embeddings  interfaces.EmbeddingProvider
	VectorStore interfaces.VectorStore

	// Services
	QueryService    interfaces.QueryService
	RAGService      interfaces.RAGService
	PriceService    interfaces.PriceService
	AnalysisService interfaces.AnalysisService
}

// New builds the application from config. Construction is explicit so the
// dependency graph stays visible in one place.
func New(config *common.Config, logger *common.Logger) (*App, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		logger = common.NewSilentLogger()
	}

	openaiClient, err := openai.NewClient(
		config.Clients.OpenAI.APIKey,
		openai.WithBaseURL(config.Clients.OpenAI.BaseURL),
		openai.WithEmbeddingURL(config.Clients.OpenAI.EmbeddingURL),
		openai.WithDefaultModel(config.Clients.OpenAI.Model),
		openai.WithEmbeddingModel(config.Clients.OpenAI.EmbeddingModel),
		openai.WithMaxTokens(config.Clients.OpenAI.MaxTokens),
		openai.WithTemperature(config.Clients.OpenAI.Temperature),
		openai.WithTimeout(config.Clients.OpenAI.GetTimeout()),
		openai.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("openai client: %w", err)
	}

	simplizeClient := simplize.NewClient(
		simplize.WithBaseURL(config.Clients.Simplize.BaseURL),
		simplize.WithRateLimit(config.Clients.Simplize.RateLimit),
		simplize.WithTimeout(config.Clients.Simplize.GetTimeout()),
		simplize.WithLogger(logger),
	)

	iqxClient := iqx.NewClient(
		iqx.WithBaseURL(config.Clients.IQX.BaseURL),
		iqx.WithInsightURL(config.Clients.IQX.InsightURL),
		iqx.WithTimeout(config.Clients.IQX.GetTimeout()),
		iqx.WithLogger(logger),
	)

	qdrantClient := qdrant.NewClient(
		qdrant.WithBaseURL(config.Clients.Qdrant.URL()),
		qdrant.WithTimeout(config.Clients.Qdrant.GetTimeout()),
		qdrant.WithLogger(logger),
	)

	extractor := extract.NewService(
		extract.WithTimeout(config.Analysis.GetPDFTimeout()),
		extract.WithMaxTextLength(config.Analysis.MaxPDFTextLength),
		extract.WithLogger(logger),
	)

	queryService := query.NewService(openaiClient, config.Clients.OpenAI.MiniModel, logger)
	ragService := rag.NewService(qdrantClient, openaiClient, config.Clients.Qdrant.Collection, logger)
	priceService := price.NewService(iqxClient, logger)
	analysisService := analysis.NewService(
		simplizeClient,
		extractor,
		openaiClient,
		priceService,
		ragService,
		config.Analysis,
		logger,
	)

	return &App{
		Config:          config,
		Logger:          logger,
		Reports:         simplizeClient,
		PriceSource:     iqxClient,
		Statements:      iqxClient,
		Completions:     openaiClient,
		Embeddings:      openaiClient,
		VectorStore:     qdrantClient,
		QueryService:    queryService,
		RAGService:      ragService,
		PriceService:    priceService,
		AnalysisService: analysisService,
	}, nil
}
