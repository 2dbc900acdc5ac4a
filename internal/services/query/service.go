// Package query classifies user messages into ticker and intent.
package query

import (
	"context"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// classifierPrompt instructs the mini model to emit a single JSON verdict.
const classifierPrompt = `Bạn là một AI phân tích câu hỏi về chứng khoán.
Nhiệm vụ: Phân tích câu hỏi của user và trả về JSON với format sau:

{
  "ticker": "MÃ_CỔ_PHIẾU" hoặc null (nếu không tìm thấy),
  "intent": "stock_analysis" | "general_question" | "unclear",
  "cleanedQuestion": "Câu hỏi đã được làm sạch, bỏ mã cổ phiếu",
  "confidence": 0.0-1.0
}

Quy tắc:
1. Mã cổ phiếu VN thường là 3 ký tự viết hoa (VIC, VNM, HPG, FPT, VCB, TCB, MWG, etc.)
2. Intent "stock_analysis" nếu user hỏi về phân tích, đánh giá, thông tin, triển vọng cổ phiếu
3. Intent "general_question" nếu user hỏi về kiến thức chung (P/E là gì, EBITDA, etc.)
4. Intent "unclear" nếu không rõ ý định
5. cleanedQuestion: Câu hỏi gốc nhưng bỏ mã cổ phiếu (nếu có)

Ví dụ:
Input: "Phân tích cổ phiếu VIC cho tôi"
Output: {"ticker": "VIC", "intent": "stock_analysis", "cleanedQuestion": "Phân tích cổ phiếu cho tôi", "confidence": 0.95}

Input: "VNM thế nào?"
Output: {"ticker": "VNM", "intent": "stock_analysis", "cleanedQuestion": "thế nào?", "confidence": 0.9}

Input: "P/E ratio là gì?"
Output: {"ticker": null, "intent": "general_question", "cleanedQuestion": "P/E ratio là gì?", "confidence": 0.95}

Input: "Cho tôi xem thông tin về HPG"
Output: {"ticker": "HPG", "intent": "stock_analysis", "cleanedQuestion": "Cho tôi xem thông tin", "confidence": 0.9}

CHỈ TRẢ VỀ JSON, KHÔNG GHI GÌ THÊM.`

var (
	// jsonPattern grabs the first brace-delimited block so prose around the
	// model's JSON does not break parsing.
	jsonPattern = regexp.MustCompile(`\{[\s\S]*\}`)

	// tickerPattern matches a standalone three-letter uppercase symbol.
	tickerPattern = regexp.MustCompile(`\b([A-Z]{3})\b`)
)

// analysisKeywords mark a message as an analysis request in the heuristic
// fallback. Matching is case-insensitive substring.
var analysisKeywords = []string{
	"phân tích", "báo cáo", "đánh giá", "thế nào", "như thế nào",
	"thông tin", "có nên mua", "có nên bán", "triển vọng",
	"dự báo", "khuyến nghị", "giá mục tiêu",
}

// Service classifies queries with the mini model, falling back to a
// deterministic heuristic when the model fails.
type Service struct {
	completions interfaces.CompletionProvider
	miniModel   string
	logger      *common.Logger
}

// NewService creates a new query classification service
func NewService(completions interfaces.CompletionProvider, miniModel string, logger *common.Logger) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		completions: completions,
		miniModel:   miniModel,
		logger:      logger,
	}
}

// Classify analyzes a user message. It never fails; on any model or parse
// error it falls back to the regex heuristic.
func (s *Service) Classify(ctx context.Context, message string) models.QueryAnalysis {
	result, err := s.classifyWithModel(ctx, message)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Model classification failed, using fallback")
		return fallbackClassify(message)
	}
	return result
}

// modelVerdict mirrors the JSON shape the classifier prompt requests.
// Ticker is a pointer because the prompt asks for null when absent.
type modelVerdict struct {
	Ticker          *string `json:"ticker"`
	Intent          string  `json:"intent"`
	CleanedQuestion string  `json:"cleanedQuestion"`
	Confidence      float64 `json:"confidence"`
}

func (s *Service) classifyWithModel(ctx context.Context, message string) (models.QueryAnalysis, error) {
	resp, err := s.completions.SimpleChat(ctx, message, classifierPrompt, s.miniModel)
	if err != nil {
		return models.QueryAnalysis{}, err
	}

	raw := jsonPattern.FindString(resp.Message)
	if raw == "" {
		return models.QueryAnalysis{}, errNoJSON
	}

	var verdict modelVerdict
	if err := json.Unmarshal([]byte(raw), &verdict); err != nil {
		return models.QueryAnalysis{}, err
	}

	result := models.QueryAnalysis{
		Intent:          verdict.Intent,
		CleanedQuestion: verdict.CleanedQuestion,
		Confidence:      verdict.Confidence,
	}
	if verdict.Ticker != nil && *verdict.Ticker != "" {
		result.Ticker = strings.ToUpper(*verdict.Ticker)
	}
	if result.Intent == "" {
		result.Intent = models.IntentUnclear
	}
	if result.CleanedQuestion == "" {
		result.CleanedQuestion = message
	}
	if result.Confidence == 0 {
		result.Confidence = 0.5
	}

	s.logger.Debug().
		Str("ticker", result.Ticker).
		Str("intent", result.Intent).
		Float64("confidence", result.Confidence).
		Msg("Query classified")

	return result, nil
}

type classifyError string

func (e classifyError) Error() string { return string(e) }

const errNoJSON = classifyError("no JSON object in classifier response")

// fallbackClassify is the deterministic heuristic: a standalone uppercase
// three-letter token plus an analysis keyword means stock analysis,
// anything else is a general question.
func fallbackClassify(message string) models.QueryAnalysis {
	match := tickerPattern.FindStringSubmatch(message)

	lower := strings.ToLower(message)
	hasAnalysisIntent := false
	for _, kw := range analysisKeywords {
		if strings.Contains(lower, kw) {
			hasAnalysisIntent = true
			break
		}
	}

	if match != nil && hasAnalysisIntent {
		return models.QueryAnalysis{
			Ticker:          match[1],
			Intent:          models.IntentStockAnalysis,
			CleanedQuestion: strings.TrimSpace(strings.Replace(message, match[1], "", 1)),
			Confidence:      0.7,
		}
	}

	return models.QueryAnalysis{
		Intent:          models.IntentGeneralQuestion,
		CleanedQuestion: message,
		Confidence:      0.6,
	}
}

// Ensure Service implements QueryService
var _ interfaces.QueryService = (*Service)(nil)
