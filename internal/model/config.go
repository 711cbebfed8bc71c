package model

import (
	"fmt"
	"time"
)

// Config is the complete labeleval configuration
type Config struct {
	Parameters   ParametersConfig   `yaml:"parameters" mapstructure:"parameters"`
	Corpus       CorpusConfig       `yaml:"corpus" mapstructure:"corpus"`
	Model        ModelBackendConfig `yaml:"model" mapstructure:"model"`
	Inference    InferenceConfig    `yaml:"inference" mapstructure:"inference"`
	Evaluation   EvaluationConfig   `yaml:"evaluation" mapstructure:"evaluation"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	RateLimiting RateLimitConfig    `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Log          LogConfig          `yaml:"log" mapstructure:"log"`
}

// ParametersConfig is the settings document: which corpus and which model
type ParametersConfig struct {
	Dataset string `yaml:"dataset" mapstructure:"dataset"` // Corpus identifier (hub name, file path or URL)
	Model   string `yaml:"model" mapstructure:"model"`     // Model identifier (directory, served model name or OpenAI model)
}

// CorpusConfig controls corpus acquisition and normalization
type CorpusConfig struct {
	Source       string `yaml:"source" mapstructure:"source"` // hub, file, url
	Split        string `yaml:"split" mapstructure:"split"`
	ConfigName   string `yaml:"config_name" mapstructure:"config_name"` // Hub dataset config
	HubURL       string `yaml:"hub_url" mapstructure:"hub_url"`
	MaxRows      int    `yaml:"max_rows" mapstructure:"max_rows"` // Stop reading after N raw rows (0 = whole split)
	Limit        int    `yaml:"limit" mapstructure:"limit"`       // Keep the first N normalized samples (0 = all)
	SourceColumn string `yaml:"source_column" mapstructure:"source_column"`
	TargetColumn string `yaml:"target_column" mapstructure:"target_column"`
	LabelPolicy  string `yaml:"label_policy" mapstructure:"label_policy"` // fail, drop
	StripMarkup  bool   `yaml:"strip_markup" mapstructure:"strip_markup"` // Reduce HTML review bodies to visible text
}

// ModelBackendConfig selects and configures the model backend
type ModelBackendConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // local, kserve, openai, "" (no model)
	Vocab   string `yaml:"vocab,omitempty" mapstructure:"vocab"`       // vocab.txt for kserve
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"` // kserve/openai endpoint
	APIKey  string `yaml:"-" mapstructure:"api_key"`                   // Prefer OPENAI_API_KEY
	Timeout int    `yaml:"timeout" mapstructure:"timeout"`             // Seconds
}

// InferenceConfig holds the batching constants
type InferenceConfig struct {
	MaxLength int    `yaml:"max_length" mapstructure:"max_length"`
	BatchSize int    `yaml:"batch_size" mapstructure:"batch_size"`
	Device    string `yaml:"device" mapstructure:"device"` // Informational, inference always runs on cpu
}

// EvaluationConfig configures the metric evaluator
type EvaluationConfig struct {
	Metrics         []string `yaml:"metrics" mapstructure:"metrics"`
	PredictionsPath string   `yaml:"predictions_path" mapstructure:"predictions_path"`
	NamespacedKeys  bool     `yaml:"namespaced_keys" mapstructure:"namespaced_keys"`
}

// ServerConfig configures the query server
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
	Mode string `yaml:"mode" mapstructure:"mode"` // gin mode: debug, release, test
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// HTTPConfig configures outbound HTTP for importers
type HTTPConfig struct {
	Timeout    time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent  string        `yaml:"user_agent" mapstructure:"user_agent"`
	HTTPProxy  string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string        `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// CacheConfig configures the importer response cache
type CacheConfig struct {
	Enabled        bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir            string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL      time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	MemoryMaxBytes int           `yaml:"memory_max_bytes" mapstructure:"memory_max_bytes"` // Larger payloads are only kept on disk
	DiskTTL        time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig configures per-host request pacing
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig configures importer fan-out
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LogConfig configures the structured logger
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` // console, json
}

// DefaultConfig returns the defaults used when no config file is present
func DefaultConfig() *Config {
	return &Config{
		Parameters: ParametersConfig{
			Dataset: "blinoff/kinopoisk",
			Model:   "",
		},
		Corpus: CorpusConfig{
			Source:       "hub",
			Split:        "validation",
			ConfigName:   "default",
			HubURL:       "https://datasets-server.huggingface.co",
			Limit:        100,
			SourceColumn: "content",
			TargetColumn: "grade3",
			LabelPolicy:  "fail",
		},
		Model: ModelBackendConfig{
			Backend: "local",
			Timeout: 30,
		},
		Inference: InferenceConfig{
			MaxLength: 120,
			BatchSize: 1,
			Device:    "cpu",
		},
		Evaluation: EvaluationConfig{
			Metrics:         []string{"accuracy"},
			PredictionsPath: "dist/predictions.csv",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8000,
			Mode: "release",
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "labeleval/0.1 (+https://github.com/ppiankov/labeleval)",
		},
		Cache: CacheConfig{
			Enabled:        true,
			Dir:            ".labeleval-cache",
			MemoryTTL:      15 * time.Minute,
			MemoryMaxBytes: 32 << 20,
			DiskTTL:        24 * time.Hour,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the constants every stage relies on
func (c *Config) Validate() error {
	if c.Inference.MaxLength <= 0 {
		return fmt.Errorf("inference.max_length must be > 0, got %d", c.Inference.MaxLength)
	}
	if c.Inference.BatchSize <= 0 {
		return fmt.Errorf("inference.batch_size must be > 0, got %d", c.Inference.BatchSize)
	}
	switch c.Corpus.LabelPolicy {
	case "fail", "drop":
	default:
		return fmt.Errorf("corpus.label_policy must be fail or drop, got %q", c.Corpus.LabelPolicy)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode)
	}
	return nil
}
