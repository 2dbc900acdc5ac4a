// Package openai provides a client for OpenAI-compatible completion and
// embedding endpoints.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
	"github.com/iqx-labs/arix/internal/models"
)

const (
	DefaultBaseURL      = "https://v98store.com/v1/chat/completions"
	DefaultEmbeddingURL = "https://v98store.com/v1/embeddings"
	DefaultTimeout      = 120 * time.Second
	DefaultRateLimit    = 3 // requests per second

	DefaultMaxTokens   = 2500
	DefaultTemperature = 0.7
)

// Client implements CompletionProvider and EmbeddingProvider against any
// OpenAI-compatible relay.
type Client struct {
	apiKey         string
	baseURL        string
	embeddingURL   string
	defaultModel   string
	embeddingModel string
	maxTokens      int
	temperature    float64
	httpClient     *http.Client
	logger         *common.Logger
	limiter        *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the chat-completion endpoint URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithEmbeddingURL sets the embedding endpoint URL
func WithEmbeddingURL(embeddingURL string) ClientOption {
	return func(c *Client) {
		c.embeddingURL = embeddingURL
	}
}

// WithDefaultModel sets the model used when a call does not name one
func WithDefaultModel(model string) ClientOption {
	return func(c *Client) {
		c.defaultModel = model
	}
}

// WithEmbeddingModel sets the embedding model
func WithEmbeddingModel(model string) ClientOption {
	return func(c *Client) {
		c.embeddingModel = model
	}
}

// WithMaxTokens sets the default completion token cap
func WithMaxTokens(maxTokens int) ClientOption {
	return func(c *Client) {
		c.maxTokens = maxTokens
	}
}

// WithTemperature sets the default sampling temperature
func WithTemperature(temperature float64) ClientOption {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new client with the given API key
func NewClient(apiKey string, opts ...ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}

	c := &Client{
		apiKey:         apiKey,
		baseURL:        DefaultBaseURL,
		embeddingURL:   DefaultEmbeddingURL,
		embeddingModel: "text-embedding-3-large",
		maxTokens:      DefaultMaxTokens,
		temperature:    DefaultTemperature,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("OpenAI API error: %s (status: %d)", e.Message, e.StatusCode)
}

type chatRequest struct {
	Model       string               `json:"model"`
	Messages    []models.ChatMessage `json:"messages"`
	MaxTokens   int                  `json:"max_tokens,omitempty"`
	Temperature float64              `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message models.ChatMessage `json:"message"`
	} `json:"choices"`
	Usage *models.ChatUsage `json:"usage"`
}

// ChatCompletion sends a full message list to the completion endpoint.
// An empty model selects the configured default model.
func (c *Client) ChatCompletion(ctx context.Context, messages []models.ChatMessage, model string, opts interfaces.CompletionOptions) (*models.ChatResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	if model == "" {
		model = c.defaultModel
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.maxTokens
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = c.temperature
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	var chat chatResponse
	if err := c.post(ctx, c.baseURL, reqBody, &chat); err != nil {
		return nil, err
	}

	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	c.logger.Debug().
		Str("model", model).
		Int("messages", len(messages)).
		Msg("Chat completion succeeded")

	return &models.ChatResult{
		Message: chat.Choices[0].Message.Content,
		Usage:   chat.Usage,
	}, nil
}

// SimpleChat sends one user message with an optional system prompt.
func (c *Client) SimpleChat(ctx context.Context, userMessage, systemPrompt, model string) (*models.ChatResult, error) {
	var messages []models.ChatMessage
	if systemPrompt != "" {
		messages = append(messages, models.ChatMessage{Role: models.RoleSystem, Content: systemPrompt})
	}
	messages = append(messages, models.ChatMessage{Role: models.RoleUser, Content: userMessage})

	return c.ChatCompletion(ctx, messages, model, interfaces.CompletionOptions{})
}

type embeddingRequest struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
}

// CreateEmbedding embeds a single input text.
func (c *Client) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("no input text provided")
	}

	reqBody := embeddingRequest{
		Model: c.embeddingModel,
		Input: text,
	}

	var emb embeddingResponse
	if err := c.post(ctx, c.embeddingURL, reqBody, &emb); err != nil {
		return nil, err
	}

	if len(emb.Data) == 0 {
		return nil, fmt.Errorf("embedding returned no data")
	}

	return emb.Data[0].Embedding, nil
}

// post sends an authenticated JSON request and decodes the response.
func (c *Client) post(ctx context.Context, url string, reqBody, respBody any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// Ensure Client implements the provider interfaces
var (
	_ interfaces.CompletionProvider = (*Client)(nil)
	_ interfaces.EmbeddingProvider  = (*Client)(nil)
)
