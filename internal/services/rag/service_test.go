package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// --- Mocks ---

type mockStore struct {
	collectionErr error
	scrollPoints  []interfaces.VectorPoint
	scrollErr     error
	searchPoints  []interfaces.VectorPoint
	searchErr     error

	scrollMust  []interfaces.FieldMatch
	scrollLimit int
	searchMust  []interfaces.FieldMatch
	searchLimit int
}

func (m *mockStore) GetCollection(_ context.Context, name string) (*interfaces.CollectionInfo, error) {
	if m.collectionErr != nil {
		return nil, m.collectionErr
	}
	return &interfaces.CollectionInfo{Name: name}, nil
}

func (m *mockStore) CreateCollection(_ context.Context, _ string, _ int) error { return nil }
func (m *mockStore) DeleteCollection(_ context.Context, _ string) error       { return nil }
func (m *mockStore) UpsertPoints(_ context.Context, _ string, _ []interfaces.VectorPoint) error {
	return nil
}

func (m *mockStore) Scroll(_ context.Context, _ string, must []interfaces.FieldMatch, limit int) ([]interfaces.VectorPoint, error) {
	m.scrollMust = must
	m.scrollLimit = limit
	return m.scrollPoints, m.scrollErr
}

func (m *mockStore) Search(_ context.Context, _ string, _ []float32, must []interfaces.FieldMatch, limit int) ([]interfaces.VectorPoint, error) {
	m.searchMust = must
	m.searchLimit = limit
	return m.searchPoints, m.searchErr
}

type mockEmbeddings struct {
	err    error
	called bool
}

func (m *mockEmbeddings) CreateEmbedding(_ context.Context, _ string) ([]float32, error) {
	m.called = true
	if m.err != nil {
		return nil, m.err
	}
	return []float32{0.1, 0.2}, nil
}

func statsPoint(id uint64, quarter, year int) interfaces.VectorPoint {
	return interfaces.VectorPoint{
		ID: id,
		Payload: models.FinancialDataPoint{
			Text:    fmt.Sprintf("statistics-financial (Q%d/%d)\nroe: 18", quarter, year),
			Section: models.StatisticsSection,
			Ticker:  "VIC",
		},
	}
}

func newTestService(store *mockStore, emb *mockEmbeddings) *Service {
	return NewService(store, emb, "financial_data", common.NewSilentLogger())
}

// --- Tests ---

func TestQueryFinancials_StoreUnavailable(t *testing.T) {
	store := &mockStore{collectionErr: errors.New("connection refused")}
	svc := newTestService(store, &mockEmbeddings{})

	result := svc.QueryFinancials(context.Background(), "VIC", "doanh thu mới nhất")
	if result.Success {
		t.Fatal("expected soft failure")
	}
	if result.Error != "vector store not available" {
		t.Errorf("error = %q", result.Error)
	}
	if result.Context != "" || result.DataPoints != 0 {
		t.Errorf("degraded result should be empty: %+v", result)
	}
}

func TestQueryFinancials_EmptyQuestionIsLatest(t *testing.T) {
	store := &mockStore{scrollPoints: []interfaces.VectorPoint{statsPoint(1, 2, 2025)}}
	emb := &mockEmbeddings{}
	svc := newTestService(store, emb)

	result := svc.QueryFinancials(context.Background(), "VIC", "")
	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}
	if emb.called {
		t.Error("latest path should not embed")
	}
	if store.scrollLimit != 50 {
		t.Errorf("scroll limit = %d, want 50", store.scrollLimit)
	}
	if len(store.scrollMust) != 2 {
		t.Fatalf("scroll filter = %+v", store.scrollMust)
	}
	if store.scrollMust[1].Key != "section" || store.scrollMust[1].Value != models.StatisticsSection {
		t.Errorf("section filter = %+v", store.scrollMust[1])
	}
}

func TestQueryFinancials_MixedSelection(t *testing.T) {
	// Unsorted input: 4 annual rows and 7 quarterly rows.
	store := &mockStore{scrollPoints: []interfaces.VectorPoint{
		statsPoint(1, 2, 2024),
		statsPoint(2, 5, 2022),
		statsPoint(3, 1, 2025),
		statsPoint(4, 5, 2024),
		statsPoint(5, 4, 2024),
		statsPoint(6, 5, 2023),
		statsPoint(7, 3, 2024),
		statsPoint(8, 2, 2025),
		statsPoint(9, 5, 2021),
		statsPoint(10, 1, 2024),
		statsPoint(11, 4, 2023),
	}}
	svc := newTestService(store, &mockEmbeddings{})

	result := svc.QueryFinancials(context.Background(), "VIC", "tình hình tài chính hiện tại")
	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}
	// Mixed mode keeps 3 newest annual rows plus 6 newest quarterly rows.
	if result.DataPoints != 9 {
		t.Fatalf("dataPoints = %d, want 9", result.DataPoints)
	}

	blocks := strings.Split(result.Context, "\n\n")
	if len(blocks) != 9 {
		t.Fatalf("got %d blocks, want 9", len(blocks))
	}

	// Annual rows come first, newest first.
	wantPrefixes := []string{
		"[Dữ liệu 1 - Q5/2024]",
		"[Dữ liệu 2 - Q5/2023]",
		"[Dữ liệu 3 - Q5/2022]",
		"[Dữ liệu 4 - Q2/2025]",
		"[Dữ liệu 5 - Q1/2025]",
		"[Dữ liệu 6 - Q4/2024]",
		"[Dữ liệu 7 - Q3/2024]",
		"[Dữ liệu 8 - Q2/2024]",
		"[Dữ liệu 9 - Q1/2024]",
	}
	for i, want := range wantPrefixes {
		if !strings.HasPrefix(blocks[i], want) {
			t.Errorf("block %d = %q, want prefix %q", i, blocks[i], want)
		}
	}
}

func TestQueryFinancials_AnnualSelection(t *testing.T) {
	store := &mockStore{scrollPoints: []interfaces.VectorPoint{
		statsPoint(1, 5, 2019),
		statsPoint(2, 5, 2024),
		statsPoint(3, 5, 2023),
		statsPoint(4, 5, 2022),
		statsPoint(5, 5, 2021),
		statsPoint(6, 5, 2020),
		statsPoint(7, 2, 2025),
	}}
	svc := newTestService(store, &mockEmbeddings{})

	result := svc.QueryFinancials(context.Background(), "VIC", "kết quả hàng năm gần đây")
	if result.DataPoints != 5 {
		t.Fatalf("dataPoints = %d, want 5 annual rows", result.DataPoints)
	}
	if strings.Contains(result.Context, "Q2/2025") {
		t.Error("annual selection should exclude quarterly rows")
	}
	if !strings.HasPrefix(result.Context, "[Dữ liệu 1 - Q5/2024]") {
		t.Errorf("context starts with %q", result.Context[:40])
	}
}

func TestQueryFinancials_QuarterlySelection(t *testing.T) {
	points := []interfaces.VectorPoint{statsPoint(1, 5, 2024)}
	for q := 1; q <= 4; q++ {
		points = append(points, statsPoint(uint64(10+q), q, 2024))
		points = append(points, statsPoint(uint64(20+q), q, 2023))
		points = append(points, statsPoint(uint64(30+q), q, 2022))
	}
	store := &mockStore{scrollPoints: points}
	svc := newTestService(store, &mockEmbeddings{})

	result := svc.QueryFinancials(context.Background(), "VIC", "kết quả theo quý gần đây")
	if result.DataPoints != 8 {
		t.Fatalf("dataPoints = %d, want 8 quarterly rows", result.DataPoints)
	}
	if strings.Contains(result.Context, "Q5/") {
		t.Error("quarterly selection should exclude annual rows")
	}
}

func TestQueryFinancials_SemanticSearch(t *testing.T) {
	store := &mockStore{searchPoints: []interfaces.VectorPoint{
		{Payload: models.FinancialDataPoint{Text: "biên lợi nhuận gộp cải thiện", Ticker: "VIC"}},
	}}
	emb := &mockEmbeddings{}
	svc := newTestService(store, emb)

	result := svc.QueryFinancials(context.Background(), "VIC", "biên lợi nhuận gộp thay đổi ra sao")
	if !result.Success {
		t.Fatalf("unexpected failure: %q", result.Error)
	}
	if !emb.called {
		t.Error("semantic path should embed the question")
	}
	if store.searchLimit != 15 {
		t.Errorf("search limit = %d, want 15", store.searchLimit)
	}
	if len(store.searchMust) != 1 || store.searchMust[0].Key != "ticker" {
		t.Errorf("search filter = %+v", store.searchMust)
	}
	// Points without a period marker get an unlabeled block.
	if !strings.HasPrefix(result.Context, "[Dữ liệu 1]\n") {
		t.Errorf("context = %q", result.Context)
	}
}

func TestQueryFinancials_EmbeddingFailureSoftFails(t *testing.T) {
	store := &mockStore{}
	svc := newTestService(store, &mockEmbeddings{err: errors.New("embedding down")})

	result := svc.QueryFinancials(context.Background(), "VIC", "so sánh biên lợi nhuận")
	if result.Success {
		t.Fatal("expected soft failure")
	}
	if !strings.Contains(result.Error, "embed question") {
		t.Errorf("error = %q", result.Error)
	}
}

func TestQueryFinancials_ScrollFailureSoftFails(t *testing.T) {
	store := &mockStore{scrollErr: errors.New("timeout")}
	svc := newTestService(store, &mockEmbeddings{})

	result := svc.QueryFinancials(context.Background(), "VIC", "mới nhất")
	if result.Success {
		t.Fatal("expected soft failure")
	}
}
