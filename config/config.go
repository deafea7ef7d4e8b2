package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the question-answering service.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Index     IndexConfig     `yaml:"index"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds the web UI configuration.
type ServerConfig struct {
	Addr      string `yaml:"addr"`
	PageTitle string `yaml:"page_title"`
}

// IndexConfig holds document ingestion configuration.
type IndexConfig struct {
	Includes          []string `yaml:"includes"`
	Excludes          []string `yaml:"excludes"`
	SentencesPerChunk int      `yaml:"sentences_per_chunk"`
	OverlapSentences  int      `yaml:"overlap_sentences"`
}

// RetrieveConfig holds retrieval configuration.
type RetrieveConfig struct {
	TopK              int     `yaml:"top_k"`
	MinScoreThreshold float64 `yaml:"min_score_threshold"` // Filter results below this score (0 = disabled)
	CacheSize         int     `yaml:"cache_size"`
	CacheTTLSecs      int     `yaml:"cache_ttl_secs"`
}

// SynthesisConfig selects and configures the LLM backend.
type SynthesisConfig struct {
	Backend     string  `yaml:"backend"` // "openai" or "anthropic"
	Temperature float64 `yaml:"temperature"`
	TimeoutSecs int     `yaml:"timeout_secs"`

	OpenAI    BackendConfig `yaml:"openai"`
	Anthropic BackendConfig `yaml:"anthropic"`
}

// BackendConfig holds per-backend settings.
type BackendConfig struct {
	Model     string `yaml:"model"`
	APIKeyEnv string `yaml:"api_key_env"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // "openai" or "mock"
	Model       string `yaml:"model"`
	APIKeyEnv   string `yaml:"api_key_env"`
	BaseURL     string `yaml:"base_url"`
	Dimension   int    `yaml:"dimension"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level       string `yaml:"level"`
	ChatLogFile string `yaml:"chat_log_file"`
	MaxSizeMB   int    `yaml:"chat_log_max_size_mb"`
	MaxBackups  int    `yaml:"chat_log_max_backups"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:      ":8080",
			PageTitle: "Document Q&A",
		},
		Index: IndexConfig{
			Includes:          []string{"**/*.txt", "**/*.md", "**/*.pdf"},
			Excludes:          []string{"**/node_modules/**", "**/.git/**"},
			SentencesPerChunk: 5,
			OverlapSentences:  1,
		},
		Retrieve: RetrieveConfig{
			TopK:         3,
			CacheSize:    100,
			CacheTTLSecs: 300,
		},
		Synthesis: SynthesisConfig{
			Backend:     "openai",
			Temperature: 0.3,
			TimeoutSecs: 60,
			OpenAI: BackendConfig{
				Model:     "gpt-4o-mini",
				APIKeyEnv: "OPENAI_API_KEY",
				MaxTokens: 3000,
			},
			Anthropic: BackendConfig{
				Model:     "claude-3-5-sonnet-20240620",
				APIKeyEnv: "ANTHROPIC_API_KEY",
				MaxTokens: 4096,
			},
		},
		Embedding: EmbeddingConfig{
			Provider:    "openai",
			Model:       "text-embedding-3-small",
			APIKeyEnv:   "OPENAI_API_KEY",
			Dimension:   1536,
			TimeoutSecs: 60,
		},
		Logging: LoggingConfig{
			Level:       "info",
			ChatLogFile: "chat_log.txt",
			MaxSizeMB:   10,
			MaxBackups:  3,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when the
// file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for docqa.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "docqa.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	path = filepath.Join(dir, ".docqa", "config.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) validate() error {
	switch c.Synthesis.Backend {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown synthesis backend: %q", c.Synthesis.Backend)
	}
	switch c.Embedding.Provider {
	case "openai", "mock":
	default:
		return fmt.Errorf("unknown embedding provider: %q", c.Embedding.Provider)
	}
	return nil
}

// IndexDBPath returns the path to the index database.
func IndexDBPath(dir string) string {
	return filepath.Join(dir, ".docqa", "index.db")
}

// EnsureDataDir ensures the .docqa directory exists.
func EnsureDataDir(dir string) error {
	return os.MkdirAll(filepath.Join(dir, ".docqa"), 0755)
}
