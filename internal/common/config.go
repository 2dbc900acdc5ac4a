// Package common provides shared utilities for Arix
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for Arix
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Clients     ClientsConfig  `toml:"clients"`
	Analysis    AnalysisConfig `toml:"analysis"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	OpenAI   OpenAIConfig   `toml:"openai"`
	Simplize SimplizeConfig `toml:"simplize"`
	IQX      IQXConfig      `toml:"iqx"`
	Qdrant   QdrantConfig   `toml:"qdrant"`
}

// OpenAIConfig holds configuration for the OpenAI-compatible completion
// and embedding endpoints.
type OpenAIConfig struct {
	APIKey         string  `toml:"api_key"`
	BaseURL        string  `toml:"base_url"`
	EmbeddingURL   string  `toml:"embedding_url"`
	Model          string  `toml:"model"`
	MiniModel      string  `toml:"mini_model"`
	EmbeddingModel string  `toml:"embedding_model"`
	MaxTokens      int     `toml:"max_tokens"`
	Temperature    float64 `toml:"temperature"`
	Timeout        string  `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *OpenAIConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// SimplizeConfig holds the broker-report API configuration
type SimplizeConfig struct {
	BaseURL   string `toml:"base_url"`
	RateLimit int    `toml:"rate_limit"`
	Timeout   string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *SimplizeConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// IQXConfig holds the IQX market-data API configuration
type IQXConfig struct {
	BaseURL    string `toml:"base_url"`
	InsightURL string `toml:"insight_url"`
	Timeout    string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *IQXConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// QdrantConfig holds the vector store configuration
type QdrantConfig struct {
	Host       string `toml:"host"`
	Port       int    `toml:"port"`
	Collection string `toml:"collection"`
	VectorSize int    `toml:"vector_size"`
	Timeout    string `toml:"timeout"`
}

// URL returns the base URL of the Qdrant REST API.
func (c *QdrantConfig) URL() string {
	return fmt.Sprintf("http://%s:%d", c.Host, c.Port)
}

// GetTimeout parses and returns the timeout duration
func (c *QdrantConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 15 * time.Second
	}
	return d
}

// AnalysisConfig holds analysis pipeline tuning knobs. The numeric caps are
// carried over from the original deployment as empirically reasonable values,
// not thresholds with deeper meaning.
type AnalysisConfig struct {
	MaxReports       int    `toml:"max_reports"`
	MaxReportAgeDays int    `toml:"max_report_age_days"`
	PDFTimeout       string `toml:"pdf_timeout"`
	MaxPDFTextLength int    `toml:"max_pdf_text_length"`
	ReportContextCap int    `toml:"report_context_cap"`
	CurrentYear      int    `toml:"current_year"`
	CurrentQuarter   int    `toml:"current_quarter"`
}

// GetPDFTimeout parses and returns the PDF download timeout duration
func (c *AnalysisConfig) GetPDFTimeout() time.Duration {
	d, err := time.ParseDuration(c.PDFTimeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	now := time.Now()
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 5999,
		},
		Clients: ClientsConfig{
			OpenAI: OpenAIConfig{
				BaseURL:        "https://v98store.com/v1/chat/completions",
				EmbeddingURL:   "https://v98store.com/v1/embeddings",
				Model:          "gpt-5-chat-latest",
				MiniModel:      "gpt-5-mini-2025-08-07",
				EmbeddingModel: "text-embedding-3-large",
				MaxTokens:      2500,
				Temperature:    0.7,
				Timeout:        "120s",
			},
			Simplize: SimplizeConfig{
				BaseURL:   "https://api2.simplize.vn/api/company/analysis-report/list",
				RateLimit: 5,
				Timeout:   "30s",
			},
			IQX: IQXConfig{
				BaseURL:    "https://proxy.iqx.vn/proxy/trading/api/chart/OHLCChart/gap-chart",
				InsightURL: "https://proxy.iqx.vn/proxy/trading/api/iq-insight-service/v1/company",
				Timeout:    "10s",
			},
			Qdrant: QdrantConfig{
				Host:       "localhost",
				Port:       6333,
				Collection: "financial_data",
				VectorSize: 3072,
				Timeout:    "15s",
			},
		},
		Analysis: AnalysisConfig{
			MaxReports:       5,
			MaxReportAgeDays: 60,
			PDFTimeout:       "30s",
			MaxPDFTextLength: 50000,
			ReportContextCap: 8000,
			CurrentYear:      now.Year(),
			CurrentQuarter:   (int(now.Month())-1)/3 + 1,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("ARIX_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("ARIX_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("ARIX_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("ARIX_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		config.Clients.OpenAI.APIKey = v
	}
	if v := os.Getenv("ARIX_OPENAI_API_KEY"); v != "" {
		config.Clients.OpenAI.APIKey = v
	}
	if v := os.Getenv("ARIX_OPENAI_BASE_URL"); v != "" {
		config.Clients.OpenAI.BaseURL = v
	}
	if v := os.Getenv("ARIX_OPENAI_EMBEDDING_URL"); v != "" {
		config.Clients.OpenAI.EmbeddingURL = v
	}
	if v := os.Getenv("ARIX_MODEL"); v != "" {
		config.Clients.OpenAI.Model = v
	}
	if v := os.Getenv("ARIX_MINI_MODEL"); v != "" {
		config.Clients.OpenAI.MiniModel = v
	}
	if v := os.Getenv("ARIX_EMBEDDING_MODEL"); v != "" {
		config.Clients.OpenAI.EmbeddingModel = v
	}

	if v := os.Getenv("ARIX_QDRANT_HOST"); v != "" {
		config.Clients.Qdrant.Host = v
	}
	if v := os.Getenv("ARIX_QDRANT_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			config.Clients.Qdrant.Port = p
		}
	}
	if v := os.Getenv("ARIX_QDRANT_COLLECTION"); v != "" {
		config.Clients.Qdrant.Collection = v
	}

	if v := os.Getenv("ARIX_MAX_REPORTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Analysis.MaxReports = n
		}
	}
	if v := os.Getenv("ARIX_MAX_REPORT_AGE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			config.Analysis.MaxReportAgeDays = n
		}
	}
	if v := os.Getenv("ARIX_CURRENT_YEAR"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Analysis.CurrentYear = n
		}
	}
	if v := os.Getenv("ARIX_CURRENT_QUARTER"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Analysis.CurrentQuarter = n
		}
	}
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
