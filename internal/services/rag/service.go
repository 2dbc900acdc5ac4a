// Package rag retrieves financial data points from the vector store and
// renders them into labeled prompt context.
package rag

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

const (
	// scrollLimit bounds the statistics scroll before sorting.
	scrollLimit = 50

	// searchLimit bounds semantic search results.
	searchLimit = 15

	// Selection caps per retrieval mode.
	annualCap         = 5
	quarterlyCap      = 8
	mixedAnnualCap    = 3
	mixedQuarterlyCap = 6
)

// Intent patterns over the lowercased question. Vietnamese and English
// markers are matched together.
var (
	latestPattern    = regexp.MustCompile(`mới nhất|gần đây|hiện tại|năm nay|latest|recent|current`)
	annualPattern    = regexp.MustCompile(`năm|year|annual|hàng năm|yearly`)
	quarterlyPattern = regexp.MustCompile(`quý|quarter|quarterly`)
)

// Service implements RAGService over a VectorStore and EmbeddingProvider.
type Service struct {
	store      interfaces.VectorStore
	embeddings interfaces.EmbeddingProvider
	collection string
	logger     *common.Logger
}

// NewService creates a new RAG service
func NewService(store interfaces.VectorStore, embeddings interfaces.EmbeddingProvider, collection string, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		store:      store,
		embeddings: embeddings,
		collection: collection,
		logger:     logger,
	}
}

// QueryFinancials retrieves a bounded, ordered set of financial data
// points for a ticker. All failures degrade to Success false with a
// reason; callers never receive an error.
func (s *Service) QueryFinancials(ctx context.Context, ticker, question string) interfaces.RAGResult {
	// Probe the store first so an absent collection degrades quietly
	// instead of failing the chat turn.
	if _, err := s.store.GetCollection(ctx, s.collection); err != nil {
		s.logger.Warn().Err(err).Str("collection", s.collection).Msg("Vector store not available, skipping financial data")
		return interfaces.RAGResult{Success: false, Error: "vector store not available"}
	}

	lower := strings.ToLower(question)
	isLatest := question == "" || latestPattern.MatchString(lower)
	isAnnual := question != "" && annualPattern.MatchString(lower)
	isQuarterly := question != "" && quarterlyPattern.MatchString(lower)

	s.logger.Debug().
		Str("ticker", ticker).
		Bool("latest", isLatest).
		Bool("annual", isAnnual).
		Bool("quarterly", isQuarterly).
		Msg("Retrieval intent")

	var (
		points []interfaces.VectorPoint
		err    error
	)
	switch {
	case isLatest:
		points, err = s.latestPoints(ctx, ticker, isAnnual, isQuarterly)
	case question != "":
		points, err = s.semanticSearch(ctx, ticker, question)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("Financial retrieval failed")
		return interfaces.RAGResult{Success: false, Error: err.Error()}
	}

	s.logger.Info().Str("ticker", ticker).Int("points", len(points)).Msg("Retrieved financial data points")

	return interfaces.RAGResult{
		Success:    true,
		Context:    renderContext(points),
		DataPoints: len(points),
	}
}

// latestPoints scrolls the statistics section and selects the newest rows
// per the annual/quarterly/mixed policy.
func (s *Service) latestPoints(ctx context.Context, ticker string, isAnnual, isQuarterly bool) ([]interfaces.VectorPoint, error) {
	must := []interfaces.FieldMatch{
		{Key: "ticker", Value: ticker},
		{Key: "section", Value: models.StatisticsSection},
	}

	points, err := s.store.Scroll(ctx, s.collection, must, scrollLimit)
	if err != nil {
		return nil, fmt.Errorf("scroll statistics: %w", err)
	}

	// Newest first; points without a parseable period sort last.
	sort.SliceStable(points, func(i, j int) bool {
		pi := models.ExtractPeriod(points[i].Payload.Text)
		pj := models.ExtractPeriod(points[j].Payload.Text)
		return pi.NewerThan(pj)
	})

	annual, quarterly := partitionByPeriod(points)

	switch {
	case isAnnual:
		return capPoints(annual, annualCap), nil
	case isQuarterly:
		return capPoints(quarterly, quarterlyCap), nil
	default:
		mixed := capPoints(annual, mixedAnnualCap)
		return append(mixed, capPoints(quarterly, mixedQuarterlyCap)...), nil
	}
}

// partitionByPeriod splits sorted points into annual aggregates and
// calendar quarters, preserving relative order.
func partitionByPeriod(points []interfaces.VectorPoint) (annual, quarterly []interfaces.VectorPoint) {
	for _, p := range points {
		if models.ExtractPeriod(p.Payload.Text).IsAnnual() {
			annual = append(annual, p)
		} else {
			quarterly = append(quarterly, p)
		}
	}
	return annual, quarterly
}

func capPoints(points []interfaces.VectorPoint, n int) []interfaces.VectorPoint {
	if len(points) > n {
		return points[:n]
	}
	return points
}

// semanticSearch embeds the question and runs a filtered similarity query.
func (s *Service) semanticSearch(ctx context.Context, ticker, question string) ([]interfaces.VectorPoint, error) {
	vector, err := s.embeddings.CreateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed question: %w", err)
	}

	must := []interfaces.FieldMatch{{Key: "ticker", Value: ticker}}
	points, err := s.store.Search(ctx, s.collection, vector, must, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("semantic search: %w", err)
	}
	return points, nil
}

// renderContext renders points into numbered labeled blocks. The period
// suffix is omitted when the point carries no parseable period.
func renderContext(points []interfaces.VectorPoint) string {
	blocks := make([]string, len(points))
	for i, p := range points {
		period := models.ExtractPeriod(p.Payload.Text)
		label := fmt.Sprintf("[Dữ liệu %d]", i+1)
		if period.Year != 0 {
			label = fmt.Sprintf("[Dữ liệu %d - Q%d/%d]", i+1, period.Quarter, period.Year)
		}
		blocks[i] = label + "\n" + p.Payload.Text
	}
	return strings.Join(blocks, "\n\n")
}

// Ensure Service implements RAGService
var _ interfaces.RAGService = (*Service)(nil)
