package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the notectx API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Backends  BackendsConfig  `yaml:"backends"`
	Search    SearchConfig    `yaml:"search"`
	Documents DocumentsConfig `yaml:"documents"`
	Auth      AuthConfig      `yaml:"auth"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// BackendsConfig holds the backend service connections.
type BackendsConfig struct {
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
}

// EmbeddingConfig holds embedding backend settings. Provider selects between
// the dedicated embedding service and an OpenAI-compatible API for query
// vectorization; document ingestion always goes through the service.
type EmbeddingConfig struct {
	Provider   string       `yaml:"provider"` // service, openai (default: service)
	URL        string       `yaml:"url"`
	APIKey     string       `yaml:"api_key"`
	TimeoutSec int          `yaml:"timeout_sec"`
	OpenAI     OpenAIConfig `yaml:"openai"`
}

// OpenAIConfig holds OpenAI-compatible provider settings.
type OpenAIConfig struct {
	APIKey     string `yaml:"api_key"`
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"`
}

// VectorStoreConfig holds vector store connection settings.
type VectorStoreConfig struct {
	URL        string `yaml:"url"`
	APIKey     string `yaml:"api_key"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds fusion and batching settings.
type SearchConfig struct {
	SemanticWeight float64 `yaml:"semantic_weight"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	MaxBatchSize   int     `yaml:"max_batch_size"`
}

// DocumentsConfig holds listing pagination settings.
type DocumentsConfig struct {
	DefaultPageSize int `yaml:"default_page_size"`
	MaxPageSize     int `yaml:"max_page_size"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Backends.Embedding.Provider == "" {
		c.Backends.Embedding.Provider = "service"
	}
	if c.Backends.Embedding.TimeoutSec <= 0 {
		c.Backends.Embedding.TimeoutSec = 30
	}
	if c.Backends.VectorStore.TimeoutSec <= 0 {
		c.Backends.VectorStore.TimeoutSec = 30
	}
	if c.Search.SemanticWeight == 0 && c.Search.KeywordWeight == 0 {
		c.Search.SemanticWeight = 0.7
		c.Search.KeywordWeight = 0.3
	}
	if c.Search.MaxBatchSize <= 0 {
		c.Search.MaxBatchSize = 100
	}
	if c.Documents.DefaultPageSize <= 0 {
		c.Documents.DefaultPageSize = 20
	}
	if c.Documents.MaxPageSize <= 0 {
		c.Documents.MaxPageSize = 100
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Backends.VectorStore.URL == "" {
		return fmt.Errorf("backends.vector_store.url is required")
	}
	switch c.Backends.Embedding.Provider {
	case "service":
		if c.Backends.Embedding.URL == "" {
			return fmt.Errorf("backends.embedding.url is required for the service provider")
		}
	case "openai":
		if c.Backends.Embedding.OpenAI.Model == "" {
			return fmt.Errorf("backends.embedding.openai.model is required for the openai provider")
		}
		// Ingestion still goes through the embedding service.
		if c.Backends.Embedding.URL == "" {
			return fmt.Errorf("backends.embedding.url is required")
		}
	default:
		return fmt.Errorf(
			"backends.embedding.provider must be \"service\" or \"openai\", got %q",
			c.Backends.Embedding.Provider,
		)
	}
	if c.Search.SemanticWeight < 0 || c.Search.KeywordWeight < 0 {
		return fmt.Errorf("search weights must be non-negative")
	}
	if c.Search.SemanticWeight+c.Search.KeywordWeight > 1 {
		return fmt.Errorf("search weights must sum to at most 1, got %.2f",
			c.Search.SemanticWeight+c.Search.KeywordWeight)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
