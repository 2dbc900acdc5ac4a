package models

// Query intents recognized by the classifier.
const (
	IntentStockAnalysis   = "stock_analysis"
	IntentGeneralQuestion = "general_question"
	IntentUnclear         = "unclear"
)

// QueryAnalysis is the classifier's verdict for one user message.
// Ticker is empty when no symbol was recognized.
type QueryAnalysis struct {
	Ticker          string  `json:"ticker,omitempty"`
	Intent          string  `json:"intent"`
	CleanedQuestion string  `json:"cleanedQuestion"`
	Confidence      float64 `json:"confidence"`
}
