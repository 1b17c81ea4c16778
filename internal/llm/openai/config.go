package openai

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joseph-ayodele/crewsheet/internal/common"
	"github.com/joseph-ayodele/crewsheet/internal/llm"
)

// Config for the OpenAI client.
type Config struct {
	APIKey       string        // if empty, falls back to env OPENAI_API_KEY
	BaseURL      string        // default https://api.openai.com/v1
	Model        string        // e.g., "gpt-4o-mini"
	Temperature  float32       // 0..2
	Timeout      time.Duration // http client timeout
	ExcerptChars int           // document text sent to the model
	Retry        llm.RetryPolicy
}

// ConfigFrom maps the application LLM section onto the client config.
func ConfigFrom(c common.LLMConfig) Config {
	return Config{
		APIKey:       c.APIKey,
		BaseURL:      c.BaseURL,
		Model:        c.Model,
		Temperature:  c.Temperature,
		Timeout:      c.Timeout,
		ExcerptChars: c.ExcerptChars,
	}
}

type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

var _ llm.Enhancer = (*Client)(nil)

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.ExcerptChars <= 0 {
		cfg.ExcerptChars = llm.DefaultExcerptChars
	}
	if cfg.Retry.Attempts <= 0 {
		cfg.Retry = llm.DefaultRetry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: logger,
	}
}

// Available reports whether an API key is configured.
func (c *Client) Available() bool {
	return c.cfg.APIKey != ""
}
