// Package analysis orchestrates report retrieval, document extraction,
// retrieval-augmented context fusion, and the completion relay.
package analysis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

// sectionSeparator divides context sections in the fused prompt.
var sectionSeparator = strings.Repeat("=", 80)

// Service implements AnalysisService.
type Service struct {
	reports     interfaces.ReportSource
	extractor   interfaces.DocumentExtractor
	completions interfaces.CompletionProvider
	prices      interfaces.PriceService
	rag         interfaces.RAGService
	config      common.AnalysisConfig
	logger      *common.Logger
}

// NewService creates a new analysis service
func NewService(
	reports interfaces.ReportSource,
	extractor interfaces.DocumentExtractor,
	completions interfaces.CompletionProvider,
	prices interfaces.PriceService,
	rag interfaces.RAGService,
	config common.AnalysisConfig,
	logger *common.Logger,
) *Service {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	return &Service{
		reports:     reports,
		extractor:   extractor,
		completions: completions,
		prices:      prices,
		rag:         rag,
		config:      config,
		logger:      logger,
	}
}

// AnalyzeStock runs the comprehensive multi-report analysis: the newest
// numReports reports, their extracted documents, one completion call.
func (s *Service) AnalyzeStock(ctx context.Context, ticker string, numReports int, model string) (*interfaces.AnalysisResult, error) {
	ticker = strings.ToUpper(ticker)
	if numReports <= 0 {
		numReports = s.config.MaxReports
	}

	s.logger.Info().Str("ticker", ticker).Int("reports", numReports).Msg("Starting stock analysis")

	reports, err := s.reports.GetLatestReports(ctx, ticker, numReports)
	if err != nil {
		return nil, fmt.Errorf("fetch reports: %w", err)
	}

	urls := make([]string, len(reports))
	for i, r := range reports {
		urls[i] = r.AttachedLink
	}
	contents := s.extractor.ExtractAll(ctx, urls)

	userPrompt := buildAnalysisUserPrompt(ticker, reports, contents) + analysisUserNote

	resp, err := s.completions.ChatCompletion(ctx, []models.ChatMessage{
		{Role: models.RoleSystem, Content: stockAnalysisSystemPrompt},
		{Role: models.RoleUser, Content: userPrompt},
	}, model, interfaces.CompletionOptions{})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Int("reports", len(reports)).Msg("Stock analysis completed")

	return &interfaces.AnalysisResult{
		Ticker:       ticker,
		Analysis:     resp.Message,
		Reports:      summarize(reports),
		TotalReports: len(reports),
		Usage:        resp.Usage,
	}, nil
}

// SmartAnalyze answers a user question about a ticker. Recency-filtered
// reports are the primary source; price context and vector-retrieved
// financials are fetched alongside and degrade independently.
func (s *Service) SmartAnalyze(ctx context.Context, ticker, question, model string) (*interfaces.AnalysisResult, error) {
	ticker = strings.ToUpper(ticker)

	s.logger.Info().Str("ticker", ticker).Msg("Starting smart analysis")

	reports, err := s.reports.GetValidReports(ctx, ticker, s.config.MaxReports, s.config.MaxReportAgeDays)
	if err != nil {
		return nil, fmt.Errorf("fetch reports: %w", err)
	}

	urls := make([]string, len(reports))
	for i, r := range reports {
		urls[i] = r.AttachedLink
	}

	// Price context, document extraction, and retrieval run concurrently;
	// each degrades on its own without failing the turn.
	var (
		wg        sync.WaitGroup
		priceText string
		contents  []string
		ragResult interfaces.RAGResult
	)
	wg.Add(3)
	go func() {
		defer wg.Done()
		priceText = s.prices.GetPriceContext(ctx, []string{ticker})
	}()
	go func() {
		defer wg.Done()
		contents = s.extractor.ExtractAll(ctx, urls)
	}()
	go func() {
		defer wg.Done()
		ragResult = s.rag.QueryFinancials(ctx, ticker, question)
	}()
	wg.Wait()

	context := BuildSmartContext(ticker, question, priceText, reports, contents, ragResult, s.config)

	s.logger.Debug().Int("context_chars", len(context)).Int("rag_points", ragResult.DataPoints).Msg("Built analysis context")

	systemPrompt := smartAnalysisSystemPrompt(ticker, s.config.CurrentYear, s.config.CurrentQuarter)
	resp, err := s.completions.SimpleChat(ctx, context, systemPrompt, model)
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	s.logger.Info().Str("ticker", ticker).Int("reports", len(reports)).Msg("Smart analysis completed")

	return &interfaces.AnalysisResult{
		Ticker:       ticker,
		Analysis:     resp.Message,
		Reports:      summarize(reports),
		TotalReports: len(reports),
		Usage:        resp.Usage,
	}, nil
}

// GeneralChat answers a question with the conversational persona and no
// market data context.
func (s *Service) GeneralChat(ctx context.Context, question, model string) (*models.ChatResult, error) {
	return s.completions.SimpleChat(ctx, question, generalChatSystemPrompt, model)
}

// BuildSmartContext fuses price text, report metadata, extracted document
// text, and retrieval context into the user prompt. Section order is part
// of the prompt contract: price first, report overview and per-report
// primary blocks next, reference financials after, question last.
func BuildSmartContext(
	ticker, question, priceText string,
	reports []models.ReportMetadata,
	contents []string,
	ragResult interfaces.RAGResult,
	config common.AnalysisConfig,
) string {
	var sb strings.Builder

	sb.WriteString(priceText)

	fmt.Fprintf(&sb, "# Phân tích cổ phiếu %s (%d)\n\n", ticker, config.CurrentYear)
	sb.WriteString("## 🎯 NGUỒN DỮ LIỆU CHÍNH: Phân tích từ các công ty chứng khoán (PDF)\n\n")

	sb.WriteString("## 📊 Tổng quan đánh giá\n")
	buy, hold, sell := tallyRecommendations(reports)
	fmt.Fprintf(&sb, "- Các đánh giá: Mua (%d), Nắm giữ (%d), Bán (%d)\n", buy, hold, sell)
	if avg, ok := averageTargetPrice(reports); ok {
		fmt.Fprintf(&sb, "- Giá mục tiêu ước tính: %s VNĐ\n", formatVND(avg))
	}
	sb.WriteString("\n" + sectionSeparator + "\n\n")

	for i, r := range reports {
		fmt.Fprintf(&sb, "## 📄 Phân tích %d [NGUỒN CHÍNH]\n", i+1)
		fmt.Fprintf(&sb, "- **Tiêu đề:** %s\n", r.Title)
		fmt.Fprintf(&sb, "- **Ngày:** %s\n", r.IssueDate)
		fmt.Fprintf(&sb, "- **Đánh giá:** %s\n", r.Recommend)
		fmt.Fprintf(&sb, "- **Giá mục tiêu:** %s\n\n", formatTargetPrice(r.TargetPrice))

		content := ""
		if i < len(contents) {
			content = contents[i]
		}
		content = truncateText(content, config.ReportContextCap)
		fmt.Fprintf(&sb, "### Nội dung:\n%s\n\n", content)
		sb.WriteString(sectionSeparator + "\n\n")
	}

	if ragResult.Success && ragResult.Context != "" {
		sb.WriteString("\n## 📑 Dữ liệu báo cáo tài chính [CHỈ THAM KHẢO]\n\n")
		sb.WriteString(ragResult.Context)
		sb.WriteString("\n\n" + sectionSeparator + "\n\n")
	}

	fmt.Fprintf(&sb, "\n**Câu hỏi:** %s\n\n", question)
	sb.WriteString("**LƯU Ý QUAN TRỌNG:**\n")
	sb.WriteString("- Phân tích BẮT BUỘC dựa vào nội dung PDF từ các công ty chứng khoán\n")
	sb.WriteString("- Báo cáo tài chính CHỈ để tham khảo thêm\n")
	fmt.Fprintf(&sb, "- Luôn ưu tiên dữ liệu MỚI NHẤT (năm %d)\n", config.CurrentYear)
	sb.WriteString("- Độ dài: 500-700 từ\n")
	sb.WriteString("- Không bịa đặt, không nhắc nguồn")

	return sb.String()
}

// buildAnalysisUserPrompt renders the comprehensive-analysis user prompt:
// a report overview followed by every document's full extracted text.
func buildAnalysisUserPrompt(ticker string, reports []models.ReportMetadata, contents []string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "# PHÂN TÍCH TỔNG HỢP MÃ CỔ PHIẾU: %s\n\n", ticker)
	sb.WriteString("## Tổng quan báo cáo:\n")
	fmt.Fprintf(&sb, "Có %d báo cáo phân tích được thu thập:\n\n", len(reports))

	for i, r := range reports {
		fmt.Fprintf(&sb, "### Báo cáo %d:\n", i+1)
		fmt.Fprintf(&sb, "- Tiêu đề: %s\n", r.Title)
		fmt.Fprintf(&sb, "- Ngày phát hành: %s\n", r.IssueDate)
		fmt.Fprintf(&sb, "- Khuyến nghị: %s\n", r.Recommend)
		fmt.Fprintf(&sb, "- Giá mục tiêu: %s\n\n", formatTargetPrice(r.TargetPrice))
	}

	sb.WriteString("\n## Nội dung các báo cáo:\n\n")
	for i, content := range contents {
		fmt.Fprintf(&sb, "### NỘI DUNG BÁO CÁO %d:\n", i+1)
		sb.WriteString(content + "\n\n")
		sb.WriteString(sectionSeparator + "\n\n")
	}

	sb.WriteString("\nHãy phân tích tổng hợp dựa trên tất cả các báo cáo trên theo yêu cầu đã nêu.")
	return sb.String()
}

// tallyRecommendations counts recommendation classes by substring. The
// checks are independent, so a mixed recommendation like "MUA / GIỮ" counts
// in every class it mentions. The hold class also matches "TRUNG LẬP" via
// its "LẬP" fragment.
func tallyRecommendations(reports []models.ReportMetadata) (buy, hold, sell int) {
	for _, r := range reports {
		if strings.Contains(r.Recommend, "MUA") {
			buy++
		}
		if strings.Contains(r.Recommend, "GIỮ") || strings.Contains(r.Recommend, "LẬP") {
			hold++
		}
		if strings.Contains(r.Recommend, "BÁN") {
			sell++
		}
	}
	return buy, hold, sell
}

// truncateText caps text at max bytes, backing up to a rune boundary so a
// multi-byte character is never cut in half.
func truncateText(text string, max int) string {
	if max < 0 {
		max = 0
	}
	if len(text) <= max {
		return text
	}
	for max > 0 && !utf8.RuneStart(text[max]) {
		max--
	}
	return text[:max]
}

// averageTargetPrice returns the rounded mean over reports that carry a
// target price. ok is false when none do.
func averageTargetPrice(reports []models.ReportMetadata) (float64, bool) {
	var sum float64
	var n int
	for _, r := range reports {
		if r.TargetPrice > 0 {
			sum += r.TargetPrice
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return math.Round(sum / float64(n)), true
}

func formatTargetPrice(v float64) string {
	if v <= 0 {
		return "N/A"
	}
	return formatVND(v) + " VNĐ"
}

// formatVND renders a whole-number value with thousands separators.
func formatVND(v float64) string {
	digits := strconv.FormatInt(int64(math.Round(v)), 10)
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var sb strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte(',')
		}
		sb.WriteRune(d)
	}
	if neg {
		return "-" + sb.String()
	}
	return sb.String()
}

func summarize(reports []models.ReportMetadata) []models.ReportSummary {
	out := make([]models.ReportSummary, len(reports))
	for i := range reports {
		out[i] = reports[i].Summary()
	}
	return out
}

// Ensure Service implements AnalysisService
var _ interfaces.AnalysisService = (*Service)(nil)
