package models

// Chat message roles for the completion API.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is one turn in a completion request.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatUsage is the token accounting reported by the completion endpoint.
type ChatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatResult is a completed model call: the assistant text plus usage.
type ChatResult struct {
	Message string     `json:"message"`
	Usage   *ChatUsage `json:"usage,omitempty"`
}
