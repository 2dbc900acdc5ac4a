package server

import (
	"net/http"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/models"
)

// handleRoot is the bare liveness probe.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.Write([]byte("hello"))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": common.GetVersion(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{
		"version": common.GetVersion(),
		"build":   common.GetBuild(),
		"commit":  common.GetGitCommit(),
	})
}

// ChatRequest is the POST /api/chat body.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model,omitempty"`
}

// ChatResponse is the POST /api/chat success body. Type distinguishes a
// full stock analysis turn from a general chat turn.
type ChatResponse struct {
	Success       bool              `json:"success"`
	Type          string            `json:"type"`
	Ticker        string            `json:"ticker,omitempty"`
	Message       string            `json:"message"`
	QueryAnalysis ChatQueryAnalysis `json:"queryAnalysis"`
	Usage         *models.ChatUsage `json:"usage,omitempty"`
}

// ChatQueryAnalysis is the classifier verdict echoed in chat responses.
type ChatQueryAnalysis struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// minAnalysisConfidence gates the stock-analysis path. Verdicts below it
// fall through to general chat.
const minAnalysisConfidence = 0.5

// handleChat classifies the message and routes it to stock analysis or
// general chat. A failed stock analysis falls back to general chat rather
// than failing the request.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req ChatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Message == "" {
		WriteError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx := r.Context()
	verdict := s.app.QueryService.Classify(ctx, req.Message)

	s.logger.Info().
		Str("ticker", verdict.Ticker).
		Str("intent", verdict.Intent).
		Float64("confidence", verdict.Confidence).
		Msg("Chat query classified")

	echo := ChatQueryAnalysis{Intent: verdict.Intent, Confidence: verdict.Confidence}

	if verdict.Ticker != "" &&
		verdict.Intent == models.IntentStockAnalysis &&
		verdict.Confidence >= minAnalysisConfidence {

		result, err := s.app.AnalysisService.SmartAnalyze(ctx, verdict.Ticker, verdict.CleanedQuestion, req.Model)
		if err == nil {
			WriteJSON(w, http.StatusOK, ChatResponse{
				Success:       true,
				Type:          "stock_analysis",
				Ticker:        verdict.Ticker,
				Message:       result.Analysis,
				QueryAnalysis: echo,
				Usage:         result.Usage,
			})
			return
		}
		s.logger.Warn().Err(err).Str("ticker", verdict.Ticker).Msg("Stock analysis failed, falling back to general chat")
	}

	resp, err := s.app.AnalysisService.GeneralChat(ctx, req.Message, req.Model)
	if err != nil {
		s.logger.Error().Err(err).Msg("General chat failed")
		WriteErrorWithDetails(w, http.StatusInternalServerError, "Failed to process chat request", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, ChatResponse{
		Success:       true,
		Type:          "general_chat",
		Message:       resp.Message,
		QueryAnalysis: echo,
		Usage:         resp.Usage,
	})
}

// AnalyzeRequest is the POST /api/analyze body.
type AnalyzeRequest struct {
	Ticker          string `json:"ticker"`
	NumberOfReports int    `json:"numberOfReports,omitempty"`
	Model           string `json:"model,omitempty"`
}

// AnalyzeResponse is the POST /api/analyze success body.
type AnalyzeResponse struct {
	Success              bool                   `json:"success"`
	Ticker               string                 `json:"ticker"`
	Analysis             string                 `json:"analysis"`
	ReportsSummary       []models.ReportSummary `json:"reportsSummary"`
	TotalReportsAnalyzed int                    `json:"totalReportsAnalyzed"`
	Usage                *models.ChatUsage      `json:"usage,omitempty"`
}

// handleAnalyze runs the comprehensive multi-report analysis.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req AnalyzeRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.Ticker == "" {
		WriteError(w, http.StatusBadRequest, "Ticker is required")
		return
	}

	result, err := s.app.AnalysisService.AnalyzeStock(r.Context(), req.Ticker, req.NumberOfReports, req.Model)
	if err != nil {
		s.logger.Error().Err(err).Str("ticker", req.Ticker).Msg("Stock analysis failed")
		WriteErrorWithDetails(w, http.StatusInternalServerError, "Failed to analyze stock", err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, AnalyzeResponse{
		Success:              true,
		Ticker:               result.Ticker,
		Analysis:             result.Analysis,
		ReportsSummary:       result.Reports,
		TotalReportsAnalyzed: result.TotalReports,
		Usage:                result.Usage,
	})
}
