package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

func TestGetCollection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/financial_data" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Write([]byte(`{"result": {"points_count": 42}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	info, err := c.GetCollection(context.Background(), "financial_data")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Name != "financial_data" || info.PointsCount != 42 {
		t.Errorf("info = %+v", info)
	}
}

func TestGetCollection_Absent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if _, err := c.GetCollection(context.Background(), "missing"); err == nil {
		t.Fatal("expected error for missing collection")
	}
}

func TestCreateCollection_Body(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("method = %s, want PUT", r.Method)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result": true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	if err := c.CreateCollection(context.Background(), "financial_data", 3072); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vectors, ok := got["vectors"].(map[string]any)
	if !ok {
		t.Fatalf("no vectors clause: %v", got)
	}
	if vectors["size"] != float64(3072) {
		t.Errorf("size = %v, want 3072", vectors["size"])
	}
	if vectors["distance"] != "Cosine" {
		t.Errorf("distance = %v, want Cosine", vectors["distance"])
	}
}

func TestScroll_FilterAndDecode(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/financial_data/points/scroll" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result": {"points": [
			{"id": 1, "payload": {"text": "statistics-financial (Q2/2025)", "section": "statistics-financial", "ticker": "VIC"}},
			{"id": 2, "payload": {"text": "statistics-financial (Q5/2024)", "section": "statistics-financial", "ticker": "VIC"}}
		]}}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	must := []interfaces.FieldMatch{
		{Key: "ticker", Value: "VIC"},
		{Key: "section", Value: models.StatisticsSection},
	}
	points, err := c.Scroll(context.Background(), "financial_data", must, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got["limit"] != float64(50) {
		t.Errorf("limit = %v", got["limit"])
	}
	if got["with_payload"] != true || got["with_vector"] != false {
		t.Errorf("payload/vector flags = %v / %v", got["with_payload"], got["with_vector"])
	}
	filter, _ := got["filter"].(map[string]any)
	conditions, _ := filter["must"].([]any)
	if len(conditions) != 2 {
		t.Fatalf("filter conditions = %v", filter)
	}

	if len(points) != 2 {
		t.Fatalf("got %d points, want 2", len(points))
	}
	if points[0].Payload.Ticker != "VIC" || points[0].Payload.Text != "statistics-financial (Q2/2025)" {
		t.Errorf("payload = %+v", points[0].Payload)
	}
}

func TestSearch_VectorAndFilter(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/collections/financial_data/points/search" {
			t.Errorf("path = %q", r.URL.Path)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result": [{"id": 7, "payload": {"text": "roe: 18", "section": "statistics-financial", "ticker": "VIC"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	points, err := c.Search(context.Background(), "financial_data", []float32{0.1, 0.2}, []interfaces.FieldMatch{{Key: "ticker", Value: "VIC"}}, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	vec, _ := got["vector"].([]any)
	if len(vec) != 2 {
		t.Errorf("vector = %v", got["vector"])
	}
	if got["limit"] != float64(15) {
		t.Errorf("limit = %v", got["limit"])
	}
	if len(points) != 1 || points[0].ID != 7 {
		t.Errorf("points = %+v", points)
	}
}

func TestUpsertPoints_Empty(t *testing.T) {
	c := NewClient(WithBaseURL("http://unreachable.invalid"))
	if err := c.UpsertPoints(context.Background(), "financial_data", nil); err != nil {
		t.Fatalf("empty upsert should be a no-op, got %v", err)
	}
}

func TestUpsertPoints_Body(t *testing.T) {
	var got struct {
		Points []upsertPoint `json:"points"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"result": true}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	err := c.UpsertPoints(context.Background(), "financial_data", []interfaces.VectorPoint{
		{ID: 3, Vector: []float32{0.5}, Payload: models.FinancialDataPoint{Text: "x", Ticker: "VIC", Section: "s"}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Points) != 1 || got.Points[0].ID != 3 {
		t.Errorf("points = %+v", got.Points)
	}
}
