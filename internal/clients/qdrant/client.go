// Package qdrant provides a REST client for the Qdrant vector store.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
)

const (
	DefaultBaseURL = "http://localhost:6333"
	DefaultTimeout = 15 * time.Second
)

// Client implements the VectorStore interface over the Qdrant REST API.
// Every method is a single round trip; availability probing and retries
// are the caller's concern.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Qdrant REST client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger: common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Qdrant API error: %s (status: %d)", e.Message, e.StatusCode)
}

type collectionInfoResponse struct {
	Result struct {
		PointsCount int64 `json:"points_count"`
	} `json:"result"`
}

// GetCollection probes a collection; an error means it is unreachable or
// absent.
func (c *Client) GetCollection(ctx context.Context, name string) (*interfaces.CollectionInfo, error) {
	var info collectionInfoResponse
	if err := c.do(ctx, http.MethodGet, "/collections/"+name, nil, &info); err != nil {
		return nil, err
	}
	return &interfaces.CollectionInfo{
		Name:        name,
		PointsCount: info.Result.PointsCount,
	}, nil
}

// CreateCollection creates a collection with the given vector size and
// cosine distance.
func (c *Client) CreateCollection(ctx context.Context, name string, vectorSize int) error {
	body := map[string]any{
		"vectors": map[string]any{
			"size":     vectorSize,
			"distance": "Cosine",
		},
	}
	return c.do(ctx, http.MethodPut, "/collections/"+name, body, nil)
}

// DeleteCollection removes a collection and its points.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	return c.do(ctx, http.MethodDelete, "/collections/"+name, nil, nil)
}

type upsertPoint struct {
	ID      uint64    `json:"id"`
	Vector  []float32 `json:"vector"`
	Payload any       `json:"payload"`
}

// UpsertPoints writes points into a collection.
func (c *Client) UpsertPoints(ctx context.Context, name string, points []interfaces.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	payload := make([]upsertPoint, len(points))
	for i, p := range points {
		payload[i] = upsertPoint{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
	}

	body := map[string]any{"points": payload}
	if err := c.do(ctx, http.MethodPut, "/collections/"+name+"/points?wait=true", body, nil); err != nil {
		return err
	}

	c.logger.Debug().Str("collection", name).Int("points", len(points)).Msg("Upserted points")
	return nil
}

// buildFilter renders exact-match conditions into a Qdrant filter clause.
// An empty condition list yields nil so the request omits the filter.
func buildFilter(must []interfaces.FieldMatch) map[string]any {
	if len(must) == 0 {
		return nil
	}
	conditions := make([]map[string]any, len(must))
	for i, m := range must {
		conditions[i] = map[string]any{
			"key":   m.Key,
			"match": map[string]any{"value": m.Value},
		}
	}
	return map[string]any{"must": conditions}
}

type scrollResponse struct {
	Result struct {
		Points []pointResult `json:"points"`
	} `json:"result"`
}

type searchResponse struct {
	Result []pointResult `json:"result"`
}

type pointResult struct {
	ID      uint64          `json:"id"`
	Payload json.RawMessage `json:"payload"`
}

// Scroll pages through points matching all conditions, payload included,
// vectors omitted.
func (c *Client) Scroll(ctx context.Context, name string, must []interfaces.FieldMatch, limit int) ([]interfaces.VectorPoint, error) {
	body := map[string]any{
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if filter := buildFilter(must); filter != nil {
		body["filter"] = filter
	}

	var scroll scrollResponse
	if err := c.do(ctx, http.MethodPost, "/collections/"+name+"/points/scroll", body, &scroll); err != nil {
		return nil, err
	}

	return decodePoints(scroll.Result.Points)
}

// Search runs a similarity query filtered by the given conditions, ranked
// by cosine similarity descending.
func (c *Client) Search(ctx context.Context, name string, vector []float32, must []interfaces.FieldMatch, limit int) ([]interfaces.VectorPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
	}
	if filter := buildFilter(must); filter != nil {
		body["filter"] = filter
	}

	var search searchResponse
	if err := c.do(ctx, http.MethodPost, "/collections/"+name+"/points/search", body, &search); err != nil {
		return nil, err
	}

	return decodePoints(search.Result)
}

// decodePoints maps raw point results onto typed payloads. Points whose
// payload does not decode are dropped rather than failing the batch.
func decodePoints(raw []pointResult) ([]interfaces.VectorPoint, error) {
	points := make([]interfaces.VectorPoint, 0, len(raw))
	for _, r := range raw {
		p := interfaces.VectorPoint{ID: r.ID}
		if len(r.Payload) > 0 {
			if err := json.Unmarshal(r.Payload, &p.Payload); err != nil {
				continue
			}
		}
		points = append(points, p)
	}
	return points, nil
}

// do sends a JSON request to the Qdrant REST API and decodes the response.
func (c *Client) do(ctx context.Context, method, path string, reqBody, respBody any) error {
	var reader io.Reader
	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Message: string(data)}
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Ensure Client implements VectorStore
var _ interfaces.VectorStore = (*Client)(nil)
