package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	LLM        LLMConfig        `yaml:"llm"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Cache      CacheConfig      `yaml:"cache"`
	Queue      QueueConfig      `yaml:"queue"`
	Watch      WatchConfig      `yaml:"watch"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr    string `yaml:"grpc_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string        `yaml:"driver"` // postgres | sqlite
	DSN              string        `yaml:"dsn"`
	MaxConns         int32         `yaml:"max_conns"`
	MinConns         int32         `yaml:"min_conns"`
	MaxConnLifetime  time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime  time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout      time.Duration `yaml:"dial_timeout"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model        string        `yaml:"model"`
	APIKey       string        `yaml:"api_key"`
	BaseURL      string        `yaml:"base_url"`
	Temperature  float32       `yaml:"temperature"`
	Timeout      time.Duration `yaml:"timeout"`
	ExcerptChars int           `yaml:"excerpt_chars"`
}

// ExtractionConfig carries the tunable thresholds and weights.
type ExtractionConfig struct {
	HighConfidence   float64       `yaml:"high_confidence"`
	MediumConfidence float64       `yaml:"medium_confidence"`
	LowConfidence    float64       `yaml:"low_confidence"`
	SourceWeight     float64       `yaml:"source_weight"`
	ValidationWeight float64       `yaml:"validation_weight"`
	CompletenessWt   float64       `yaml:"completeness_weight"`
	MinTextLength    int           `yaml:"min_text_length"`
	MaxContacts      int           `yaml:"max_contacts"`
	MaxProcessing    time.Duration `yaml:"max_processing_time"`
	PatternTimeout   time.Duration `yaml:"pattern_timeout"`
	PatternMatchCap  int           `yaml:"pattern_match_cap"`
	PatternWorkers   int           `yaml:"pattern_workers"`
	PhoneStyle       string        `yaml:"phone_style"` // e164 | national
}

// CacheConfig selects the result cache backend.
type CacheConfig struct {
	Backend   string        `yaml:"backend"` // memory | redis | none
	TTL       time.Duration `yaml:"ttl"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	Prefix    string        `yaml:"prefix"`
}

// QueueConfig sizes the batch worker pool.
type QueueConfig struct {
	Workers int           `yaml:"workers"`
	Size    int           `yaml:"size"`
	Timeout time.Duration `yaml:"timeout"`
}

// WatchConfig lists inbox directories the daemon picks documents up from.
type WatchConfig struct {
	Dirs     []string      `yaml:"dirs"`
	Debounce time.Duration `yaml:"debounce"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GRPCAddr:    ":8080",
			MetricsAddr: ":9090",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "file:crewsheet.db?_pragma=busy_timeout(5000)",
			MaxConns:        20,
			MinConns:        5,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		LLM: LLMConfig{
			Model:        "gpt-4o-mini",
			BaseURL:      "https://api.openai.com/v1",
			Timeout:      30 * time.Second,
			ExcerptChars: 6000,
		},
		Extraction: ExtractionConfig{
			HighConfidence:   0.8,
			MediumConfidence: 0.6,
			LowConfidence:    0.4,
			SourceWeight:     0.4,
			ValidationWeight: 0.3,
			CompletenessWt:   0.2,
			MinTextLength:    10,
			MaxContacts:      1000,
			MaxProcessing:    30 * time.Second,
			PatternTimeout:   15 * time.Second,
			PatternMatchCap:  500,
			PatternWorkers:   4,
			PhoneStyle:       "e164",
		},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     time.Hour,
			Prefix:  "crewsheet:",
		},
		Queue: QueueConfig{
			Workers: 4,
			Size:    256,
			Timeout: 3 * time.Minute,
		},
		Watch: WatchConfig{
			Debounce: 500 * time.Millisecond,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig loads configuration from environment variables over the defaults.
func LoadConfig() *Config {
	cfg := DefaultConfig()
	applyEnv(cfg)
	return cfg
}

// LoadConfigFile layers a YAML file between the defaults and the environment.
// An empty path behaves like LoadConfig.
func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, WrapError(err, "read config file")
		}
		if err := yaml.Unmarshal(raw, cfg); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("parse %s", path), err)
		}
	}
	applyEnv(cfg)
	return cfg, nil
}

func applyEnv(c *Config) {
	c.Server.GRPCAddr = getEnv("GRPC_ADDR", c.Server.GRPCAddr)
	c.Server.MetricsAddr = getEnv("METRICS_ADDR", c.Server.MetricsAddr)

	c.Database.Driver = getEnv("DB_DRIVER", c.Database.Driver)
	c.Database.DSN = getEnv("DB_URL", c.Database.DSN)
	c.Database.MaxConns = getEnvAsInt32("DB_MAX_CONNS", c.Database.MaxConns)
	c.Database.MinConns = getEnvAsInt32("DB_MIN_CONNS", c.Database.MinConns)
	c.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", c.Database.MaxConnLifetime)
	c.Database.MaxConnIdleTime = getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", c.Database.MaxConnIdleTime)
	c.Database.DialTimeout = getEnvAsDuration("DB_DIAL_TIMEOUT", c.Database.DialTimeout)
	c.Database.StatementTimeout = getEnvAsDuration("DB_STATEMENT_TIMEOUT", c.Database.StatementTimeout)

	c.LLM.Model = getEnv("OPENAI_MODEL", c.LLM.Model)
	c.LLM.APIKey = getEnv("OPENAI_API_KEY", c.LLM.APIKey)
	c.LLM.BaseURL = getEnv("OPENAI_BASE_URL", c.LLM.BaseURL)
	c.LLM.Temperature = getEnvAsFloat32("OPENAI_TEMPERATURE", c.LLM.Temperature)
	c.LLM.Timeout = getEnvAsDuration("OPENAI_TIMEOUT", c.LLM.Timeout)
	c.LLM.ExcerptChars = getEnvAsInt("LLM_EXCERPT_CHARS", c.LLM.ExcerptChars)

	c.Extraction.MinTextLength = getEnvAsInt("EXTRACT_MIN_TEXT_LENGTH", c.Extraction.MinTextLength)
	c.Extraction.MaxContacts = getEnvAsInt("EXTRACT_MAX_CONTACTS", c.Extraction.MaxContacts)
	c.Extraction.MaxProcessing = getEnvAsDuration("EXTRACT_MAX_PROCESSING_TIME", c.Extraction.MaxProcessing)
	c.Extraction.PatternTimeout = getEnvAsDuration("EXTRACT_PATTERN_TIMEOUT", c.Extraction.PatternTimeout)
	c.Extraction.PatternWorkers = getEnvAsInt("EXTRACT_PATTERN_WORKERS", c.Extraction.PatternWorkers)
	c.Extraction.PhoneStyle = getEnv("EXTRACT_PHONE_STYLE", c.Extraction.PhoneStyle)

	c.Cache.Backend = getEnv("CACHE_BACKEND", c.Cache.Backend)
	c.Cache.TTL = getEnvAsDuration("CACHE_TTL", c.Cache.TTL)
	c.Cache.RedisAddr = getEnv("REDIS_ADDR", c.Cache.RedisAddr)
	c.Cache.RedisDB = getEnvAsInt("REDIS_DB", c.Cache.RedisDB)

	c.Queue.Workers = getEnvAsInt("QUEUE_WORKERS", c.Queue.Workers)
	c.Queue.Size = getEnvAsInt("QUEUE_SIZE", c.Queue.Size)
	c.Queue.Timeout = getEnvAsDuration("QUEUE_TIMEOUT", c.Queue.Timeout)

	if dirs := getEnv("WATCH_DIRS", ""); dirs != "" {
		c.Watch.Dirs = splitList(dirs)
	}
	c.Watch.Debounce = getEnvAsDuration("WATCH_DEBOUNCE", c.Watch.Debounce)

	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.JSON = getEnvAsBool("LOG_JSON", c.Log.JSON)
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ';' }) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported DB_DRIVER %q", c.Database.Driver), ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	switch c.Cache.Backend {
	case "memory", "none":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return NewAppError("CONFIG_ERROR", "REDIS_ADDR is required for the redis cache", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", fmt.Sprintf("unsupported CACHE_BACKEND %q", c.Cache.Backend), ErrInvalidInput)
	}

	e := c.Extraction
	v := NewValidator().
		Field("extraction.low_confidence", e.LowConfidence, Range(0, 1)).
		Field("extraction.medium_confidence", e.MediumConfidence, Range(0, 1)).
		Field("extraction.high_confidence", e.HighConfidence, Range(0, 1)).
		Field("extraction.phone_style", e.PhoneStyle, OneOf("e164", "national"))
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	if !(e.LowConfidence <= e.MediumConfidence && e.MediumConfidence <= e.HighConfidence) {
		return NewAppError("CONFIG_ERROR", "confidence thresholds must satisfy low <= medium <= high", ErrInvalidInput)
	}
	if e.SourceWeight+e.ValidationWeight+e.CompletenessWt > 1 {
		return NewAppError("CONFIG_ERROR", "scoring weights must not sum above 1", ErrInvalidInput)
	}
	return nil
}

// LLMEnabled reports whether an API key is configured.
func (c *Config) LLMEnabled() bool {
	return strings.TrimSpace(c.LLM.APIKey) != ""
}
