// Package ingest flattens company financial documents into text points
// and loads them into the vector store.
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// Sections fetched per ticker, in ingestion order. Each entry is the
// company-insight resource suffix and doubles as the stored section name.
var Sections = []string{
	"financial-statement?section=CASH_FLOW",
	"financial-statement?section=INCOME_STATEMENT",
	"financial-statement?section=BALANCE_SHEET",
	"statistics-financial",
}

// statisticsFields are the metrics carried from statistics rows into the
// flattened text, in render order.
var statisticsFields = []string{
	"marketCap", "pe", "pb", "ps", "roe", "roa", "eps", "bvps",
	"grossMargin", "ebitMargin", "afterTaxProfitMargin",
	"currentRatio", "quickRatio", "debtPerEquity", "debtToEquity",
	"revenue", "grossProfit", "netProfit", "totalAssets", "totalEquity",
}

// statementPrefixes select the line items kept from yearly statement rows.
var statementPrefixes = []string{"cfa", "isa", "bsa"}

const (
	// statementYears is how many trailing years of statement data to keep.
	statementYears = 3

	// statementMetricCap bounds the line items per statement year.
	statementMetricCap = 30
)

// Service loads flattened financial text into the vector store.
type Service struct {
	statements interfaces.StatementSource
	embeddings interfaces.EmbeddingProvider
	store      interfaces.VectorStore
	collection string
	vectorSize int
	logger     *common.Logger
}

// NewService creates a new ingestion service
func NewService(
	statements interfaces.StatementSource,
	embeddings interfaces.EmbeddingProvider,
	store interfaces.VectorStore,
	collection string,
	vectorSize int,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		statements: statements,
		embeddings: embeddings,
		store:      store,
		collection: collection,
		vectorSize: vectorSize,
		logger:     logger,
	}
}

// IngestTicker fetches, flattens, embeds, and upserts all sections for one
// ticker. When recreate is true the collection is dropped and rebuilt
// first; otherwise points are appended after the current maximum ID.
// Returns the number of points written.
func (s *Service) IngestTicker(ctx context.Context, ticker string, recreate bool) (int, error) {
	ticker = strings.ToUpper(ticker)

	if err := s.prepareCollection(ctx, recreate); err != nil {
		return 0, err
	}

	texts := s.fetchAndFlatten(ctx, ticker)
	if len(texts) == 0 {
		return 0, fmt.Errorf("no ingestable data for ticker %s", ticker)
	}

	s.logger.Info().Str("ticker", ticker).Int("texts", len(texts)).Msg("Embedding data points")

	offset := uint64(0)
	if !recreate {
		offset = s.nextPointID(ctx)
	}

	var points []interfaces.VectorPoint
	for i, t := range texts {
		vector, err := s.embeddings.CreateEmbedding(ctx, t.Payload.Text)
		if err != nil {
			s.logger.Warn().Err(err).Int("index", i).Msg("Embedding failed, skipping point")
			continue
		}
		points = append(points, interfaces.VectorPoint{
			ID:      offset + uint64(i),
			Vector:  vector,
			Payload: t.Payload,
		})
	}

	if len(points) == 0 {
		return 0, fmt.Errorf("all embeddings failed for ticker %s", ticker)
	}

	if err := s.store.UpsertPoints(ctx, s.collection, points); err != nil {
		return 0, fmt.Errorf("upsert points: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Int("points", len(points)).Msg("Ingestion complete")
	return len(points), nil
}

// prepareCollection drops and recreates the collection when asked, and
// creates it when absent.
func (s *Service) prepareCollection(ctx context.Context, recreate bool) error {
	_, err := s.store.GetCollection(ctx, s.collection)
	exists := err == nil

	if exists && recreate {
		s.logger.Info().Str("collection", s.collection).Msg("Dropping existing collection")
		if err := s.store.DeleteCollection(ctx, s.collection); err != nil {
			return fmt.Errorf("delete collection: %w", err)
		}
		exists = false
	}

	if !exists {
		s.logger.Info().Str("collection", s.collection).Int("vector_size", s.vectorSize).Msg("Creating collection")
		if err := s.store.CreateCollection(ctx, s.collection, s.vectorSize); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	return nil
}

// nextPointID finds the append offset for multi-ticker runs. Any probe
// failure starts from zero.
func (s *Service) nextPointID(ctx context.Context) uint64 {
	points, err := s.store.Scroll(ctx, s.collection, nil, 1)
	if err != nil || len(points) == 0 {
		return 0
	}
	max := points[0].ID
	for _, p := range points {
		if p.ID > max {
			max = p.ID
		}
	}
	return max + 1
}

// flatText pairs one flattened text with its payload.
type flatText struct {
	Payload models.FinancialDataPoint
}

// fetchAndFlatten pulls every section and flattens it. Sections that fail
// to fetch or parse are skipped.
func (s *Service) fetchAndFlatten(ctx context.Context, ticker string) []flatText {
	var out []flatText
	for _, section := range Sections {
		raw, err := s.statements.GetStatementSection(ctx, ticker, section)
		if err != nil {
			s.logger.Warn().Err(err).Str("section", section).Msg("Section fetch failed, skipping")
			continue
		}

		texts := FlattenSection(section, raw)
		for _, text := range texts {
			period := models.ExtractPeriod(text)
			out = append(out, flatText{Payload: models.FinancialDataPoint{
				Text:    text,
				Section: section,
				Ticker:  ticker,
				Year:    period.Year,
				Quarter: period.Quarter,
			}})
		}

		s.logger.Debug().Str("section", section).Int("texts", len(texts)).Msg("Flattened section")
	}
	return out
}

// sectionEnvelope is the common {data: ...} wrapper on insight responses.
type sectionEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// FlattenSection renders one raw section document into flat text blocks.
// Statistics rows become "(Qq/yyyy)"-tagged metric lists; statement
// documents become per-year line-item lists for the trailing years.
func FlattenSection(section string, raw []byte) []string {
	var envelope sectionEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil || len(envelope.Data) == 0 {
		return nil
	}

	// Statistics sections are arrays of period rows.
	var rows []map[string]any
	if err := json.Unmarshal(envelope.Data, &rows); err == nil {
		return flattenStatisticsRows(section, rows)
	}

	// Statement sections are objects carrying a years array.
	var statement struct {
		Years []map[string]any `json:"years"`
	}
	if err := json.Unmarshal(envelope.Data, &statement); err == nil && len(statement.Years) > 0 {
		return flattenStatementYears(section, statement.Years)
	}

	return nil
}

func flattenStatisticsRows(section string, rows []map[string]any) []string {
	var texts []string
	for _, row := range rows {
		year := numberField(row, "year")
		quarter := numberField(row, "quarter")
		if year == 0 || quarter == 0 {
			continue
		}

		var metrics []string
		for _, key := range statisticsFields {
			if v, ok := row[key]; ok && v != nil && v != "" {
				metrics = append(metrics, fmt.Sprintf("%s: %v", key, v))
			}
		}
		if len(metrics) == 0 {
			continue
		}

		texts = append(texts, fmt.Sprintf("%s (Q%d/%d)\n%s", section, quarter, year, strings.Join(metrics, "\n")))
	}
	return texts
}

func flattenStatementYears(section string, years []map[string]any) []string {
	if len(years) > statementYears {
		years = years[len(years)-statementYears:]
	}

	var texts []string
	for _, yearData := range years {
		year := numberField(yearData, "yearReport")
		if year == 0 {
			continue
		}

		// Sorted keys keep the flattened text stable across runs.
		keys := make([]string, 0, len(yearData))
		for key := range yearData {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		var metrics []string
		for _, key := range keys {
			value := yearData[key]
			if value == nil || value == "" || value == float64(0) {
				continue
			}
			if !hasStatementPrefix(key) {
				continue
			}
			metrics = append(metrics, fmt.Sprintf("%s: %v", strings.ToUpper(key), value))
		}
		if len(metrics) == 0 {
			continue
		}
		if len(metrics) > statementMetricCap {
			metrics = metrics[:statementMetricCap]
		}

		texts = append(texts, fmt.Sprintf("%s - Năm %d\n%s", section, year, strings.Join(metrics, "\n")))
	}
	return texts
}

func hasStatementPrefix(key string) bool {
	lower := strings.ToLower(key)
	for _, prefix := range statementPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

func numberField(row map[string]any, key string) int {
	switch v := row[key].(type) {
	case float64:
		return int(v)
	case string:
		var n int
		fmt.Sscanf(v, "%d", &n)
		return n
	default:
		return 0
	}
}
