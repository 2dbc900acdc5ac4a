// Package extract downloads attached report documents and extracts their
// plain text for prompt assembly.
package extract

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	"github.com/iqx-labs/arix/internal/common"
	"github.com/iqx-labs/arix/internal/interfaces"
)

// FailedExtractionPlaceholder stands in for a report whose document could
// not be downloaded or parsed. The literal is part of the prompt contract.
const FailedExtractionPlaceholder = "[Không thể đọc được nội dung báo cáo này]"

const (
	DefaultTimeout       = 30 * time.Second
	DefaultMaxTextLength = 50000
)

// Service implements DocumentExtractor for PDF attachments.
type Service struct {
	httpClient    *http.Client
	logger        *common.Logger
	maxTextLength int
}

// ServiceOption configures the service
type ServiceOption func(*Service)

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ServiceOption {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTimeout sets the per-document download timeout
func WithTimeout(timeout time.Duration) ServiceOption {
	return func(s *Service) {
		s.httpClient.Timeout = timeout
	}
}

// WithMaxTextLength caps the extracted text per document
func WithMaxTextLength(n int) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.maxTextLength = n
		}
	}
}

// NewService creates a new extraction service
func NewService(opts ...ServiceOption) *Service {
	s := &Service{
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		logger:        common.NewSilentLogger(),
		maxTextLength: DefaultMaxTextLength,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// ExtractText downloads and extracts a single document. The result is
// truncated to the configured maximum length.
func (s *Service) ExtractText(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", fmt.Errorf("no document URL provided")
	}

	data, err := s.download(ctx, url)
	if err != nil {
		return "", err
	}

	text, err := extractPDFText(data)
	if err != nil {
		return "", fmt.Errorf("failed to extract PDF text: %w", err)
	}

	text = truncateText(text, s.maxTextLength)

	s.logger.Debug().Str("url", url).Int("chars", len(text)).Msg("Extracted document text")
	return text, nil
}

// ExtractAll extracts every URL independently and concurrently. The result
// has the same length and order as urls; failed slots hold the fixed
// placeholder. One slow or broken document never blocks the others beyond
// its own timeout.
func (s *Service) ExtractAll(ctx context.Context, urls []string) []string {
	results := make([]string, len(urls))

	var wg sync.WaitGroup
	for i, url := range urls {
		wg.Add(1)
		go func(i int, url string) {
			defer wg.Done()
			text, err := s.ExtractText(ctx, url)
			if err != nil {
				s.logger.Warn().Err(err).Str("url", url).Msg("Document extraction failed")
				results[i] = FailedExtractionPlaceholder
				return
			}
			results[i] = text
		}(i, url)
	}
	wg.Wait()

	return results
}

// download fetches the document bytes.
func (s *Service) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("document download returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read document body: %w", err)
	}

	return data, nil
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

// extractPDFText pulls plain text from PDF bytes, page by page.
func extractPDFText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	result := strings.TrimSpace(sb.String())
	if result == "" {
		return "", fmt.Errorf("no extractable text in PDF")
	}
	return result, nil
}

// Ensure Service implements DocumentExtractor
var _ interfaces.DocumentExtractor = (*Service)(nil)
