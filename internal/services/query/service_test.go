package query

import (
	"context"
	"errors"
	"testing"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// --- Mocks ---

type mockCompletions struct {
	message string
	err     error
}

func (m *mockCompletions) ChatCompletion(_ context.Context, _ []models.ChatMessage, _ string, _ interfaces.CompletionOptions) (*models.ChatResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ChatResult{Message: m.message}, nil
}

func (m *mockCompletions) SimpleChat(_ context.Context, _, _, _ string) (*models.ChatResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.ChatResult{Message: m.message}, nil
}

func newTestService(m *mockCompletions) *Service {
	return NewService(m, "mini-model", common.NewSilentLogger())
}

// --- Tests ---

func TestClassify_ModelVerdict(t *testing.T) {
	svc := newTestService(&mockCompletions{
		message: `{"ticker": "vic", "intent": "stock_analysis", "cleanedQuestion": "thế nào?", "confidence": 0.9}`,
	})

	got := svc.Classify(context.Background(), "VIC thế nào?")
	if got.Ticker != "VIC" {
		t.Errorf("ticker = %q, want VIC (uppercased)", got.Ticker)
	}
	if got.Intent != models.IntentStockAnalysis {
		t.Errorf("intent = %q", got.Intent)
	}
	if got.Confidence != 0.9 {
		t.Errorf("confidence = %v", got.Confidence)
	}
}

func TestClassify_JSONWithSurroundingProse(t *testing.T) {
	svc := newTestService(&mockCompletions{
		message: "Kết quả phân tích:\n{\"ticker\": \"HPG\", \"intent\": \"stock_analysis\", \"cleanedQuestion\": \"đánh giá\", \"confidence\": 0.85}\nHết.",
	})

	got := svc.Classify(context.Background(), "đánh giá HPG")
	if got.Ticker != "HPG" || got.Confidence != 0.85 {
		t.Errorf("verdict = %+v", got)
	}
}

func TestClassify_NullTicker(t *testing.T) {
	svc := newTestService(&mockCompletions{
		message: `{"ticker": null, "intent": "general_question", "cleanedQuestion": "P/E là gì?", "confidence": 0.95}`,
	})

	got := svc.Classify(context.Background(), "P/E là gì?")
	if got.Ticker != "" {
		t.Errorf("ticker = %q, want empty", got.Ticker)
	}
	if got.Intent != models.IntentGeneralQuestion {
		t.Errorf("intent = %q", got.Intent)
	}
}

func TestClassify_MissingFieldsDefaulted(t *testing.T) {
	svc := newTestService(&mockCompletions{message: `{"ticker": "FPT"}`})

	got := svc.Classify(context.Background(), "FPT ra sao")
	if got.Intent != models.IntentUnclear {
		t.Errorf("intent = %q, want unclear", got.Intent)
	}
	if got.CleanedQuestion != "FPT ra sao" {
		t.Errorf("cleanedQuestion = %q, want original message", got.CleanedQuestion)
	}
	if got.Confidence != 0.5 {
		t.Errorf("confidence = %v, want 0.5", got.Confidence)
	}
}

func TestClassify_ModelErrorFallsBackToHeuristic(t *testing.T) {
	svc := newTestService(&mockCompletions{err: errors.New("model unavailable")})

	got := svc.Classify(context.Background(), "Phân tích cổ phiếu VIC cho tôi")
	if got.Ticker != "VIC" {
		t.Errorf("ticker = %q, want VIC", got.Ticker)
	}
	if got.Intent != models.IntentStockAnalysis {
		t.Errorf("intent = %q, want stock_analysis", got.Intent)
	}
	if got.Confidence != 0.7 {
		t.Errorf("confidence = %v, want 0.7", got.Confidence)
	}
}

func TestClassify_NoJSONFallsBack(t *testing.T) {
	svc := newTestService(&mockCompletions{message: "Tôi không chắc."})

	got := svc.Classify(context.Background(), "EBITDA là gì?")
	if got.Intent != models.IntentGeneralQuestion {
		t.Errorf("intent = %q, want general_question", got.Intent)
	}
	if got.Confidence != 0.6 {
		t.Errorf("confidence = %v, want 0.6", got.Confidence)
	}
	if got.CleanedQuestion != "EBITDA là gì?" {
		t.Errorf("cleanedQuestion = %q", got.CleanedQuestion)
	}
}

func TestFallbackClassify(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		wantTicker     string
		wantIntent     string
		wantConfidence float64
	}{
		{"ticker with keyword", "Phân tích VNM giúp tôi", "VNM", models.IntentStockAnalysis, 0.7},
		{"ticker without keyword", "VNM", "", models.IntentGeneralQuestion, 0.6},
		{"keyword without ticker", "phân tích thị trường chung", "", models.IntentGeneralQuestion, 0.6},
		{"lowercase symbol ignored", "phân tích vnm", "", models.IntentGeneralQuestion, 0.6},
		{"english keyword not matched", "analyze ABC", "", models.IntentGeneralQuestion, 0.6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fallbackClassify(tt.message)
			if got.Ticker != tt.wantTicker {
				t.Errorf("ticker = %q, want %q", got.Ticker, tt.wantTicker)
			}
			if got.Intent != tt.wantIntent {
				t.Errorf("intent = %q, want %q", got.Intent, tt.wantIntent)
			}
			if got.Confidence != tt.wantConfidence {
				t.Errorf("confidence = %v, want %v", got.Confidence, tt.wantConfidence)
			}
		})
	}
}

func TestFallbackClassify_RemovesTickerFromQuestion(t *testing.T) {
	got := fallbackClassify("Cho tôi báo cáo HPG nhé")
	if got.Ticker != "HPG" {
		t.Fatalf("ticker = %q", got.Ticker)
	}
	if got.CleanedQuestion != "Cho tôi báo cáo  nhé" {
		t.Errorf("cleanedQuestion = %q", got.CleanedQuestion)
	}
}
