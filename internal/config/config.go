// Package config loads the Clearcut configuration from a TOML file.
// Defaults are applied for every unset field, so an empty or missing file
// yields a fully usable configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultDirName is the per-user configuration directory under $HOME.
const DefaultDirName = ".clearcut"

// Config is the root configuration structure.
type Config struct {
	// Storage configures the metadata database.
	Storage StorageConfig `toml:"storage"`

	// Completion configures the fast/chat completion provider.
	Completion CompletionConfig `toml:"completion"`

	// Embedding configures the embedding provider.
	Embedding EmbeddingConfig `toml:"embedding"`

	// Qdrant configures the vector index.
	Qdrant QdrantConfig `toml:"qdrant"`

	// RAG configures chunking and retrieval.
	RAG RAGConfig `toml:"rag"`

	// Pipeline configures the document analysis pipeline.
	Pipeline PipelineConfig `toml:"pipeline"`

	// Capabilities maps capability names to worker launch commands.
	// Unset entries fall back to `<this binary> worker <name>`.
	Capabilities map[string]CapabilityConfig `toml:"capabilities"`
}

// StorageConfig locates the SQLite metadata database.
type StorageConfig struct {
	// DataDir is the database directory (default: ~/.clearcut/data).
	DataDir string `toml:"data_dir"`
}

// CompletionConfig holds settings for the OpenAI-compatible completion
// provider (Cerebras by default).
type CompletionConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	// The key itself is never stored in the config file.
	APIKeyEnv string `toml:"api_key_env"`

	// Model is the completion model.
	Model string `toml:"model"`

	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs"`
}

// EmbeddingConfig holds settings for the embedding provider.
type EmbeddingConfig struct {
	// BaseURL is the API base URL.
	BaseURL string `toml:"base_url"`

	// APIKeyEnv names the environment variable holding the API key.
	APIKeyEnv string `toml:"api_key_env"`

	// Model is the embedding model.
	Model string `toml:"model"`

	// Dimensions is the embedding vector size.
	Dimensions int `toml:"dimensions"`

	// TimeoutSecs is the per-request timeout.
	TimeoutSecs int `toml:"timeout_secs"`

	// RequestsPerSecond rate-limits batch embedding calls (0 = off).
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// QdrantConfig contains connection details for the vector store.
type QdrantConfig struct {
	URL         string `toml:"url"`
	APIKeyEnv   string `toml:"api_key_env"`
	TimeoutSecs int    `toml:"timeout_secs"`
}

// RAGConfig configures chunking and retrieval.
type RAGConfig struct {
	// ChunkSize is the window size in characters.
	ChunkSize int `toml:"chunk_size"`

	// ChunkOverlap is how many characters adjacent windows share.
	ChunkOverlap int `toml:"chunk_overlap"`

	// TopK is the default retrieval depth for chat.
	TopK int `toml:"top_k"`
}

// PipelineConfig configures the document pipeline.
type PipelineConfig struct {
	// FastTimeoutSecs is the hard timeout on the fast analysis path.
	// A fast-path timeout fails the submission.
	FastTimeoutSecs int `toml:"fast_timeout_secs"`

	// Workers sizes the background job pool shared by the deep and
	// index paths.
	Workers int `toml:"workers"`
}

// CapabilityConfig is one registry entry: how to launch a worker.
type CapabilityConfig struct {
	Command string            `toml:"command"`
	Args    []string          `toml:"args"`
	Env     map[string]string `toml:"env"`
}

// Load reads the config from path. A missing file yields defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyDefaults(&cfg)
			return &cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	applyDefaults(&cfg)
	return &cfg, nil
}

// DefaultPath returns ~/.clearcut/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, DefaultDirName, "config.toml"), nil
}

// CompletionTimeout returns the completion timeout as a duration.
func (c *Config) CompletionTimeout() time.Duration {
	return time.Duration(c.Completion.TimeoutSecs) * time.Second
}

// EmbeddingTimeout returns the embedding timeout as a duration.
func (c *Config) EmbeddingTimeout() time.Duration {
	return time.Duration(c.Embedding.TimeoutSecs) * time.Second
}

// QdrantTimeout returns the vector store timeout as a duration.
func (c *Config) QdrantTimeout() time.Duration {
	return time.Duration(c.Qdrant.TimeoutSecs) * time.Second
}

// FastTimeout returns the fast-path timeout as a duration.
func (c *Config) FastTimeout() time.Duration {
	return time.Duration(c.Pipeline.FastTimeoutSecs) * time.Second
}

func applyDefaults(cfg *Config) {
	if cfg.Completion.BaseURL == "" {
		cfg.Completion.BaseURL = "https://api.cerebras.ai/v1"
	}
	if cfg.Completion.APIKeyEnv == "" {
		cfg.Completion.APIKeyEnv = "CEREBRAS_API_KEY"
	}
	if cfg.Completion.Model == "" {
		cfg.Completion.Model = "llama3.3-70b"
	}
	if cfg.Completion.TimeoutSecs == 0 {
		cfg.Completion.TimeoutSecs = 120
	}

	if cfg.Embedding.BaseURL == "" {
		cfg.Embedding.BaseURL = "http://localhost:8000/v1"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = "EMBEDDING_API_KEY"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "all-MiniLM-L6-v2"
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 60
	}

	if cfg.Qdrant.URL == "" {
		cfg.Qdrant.URL = "http://localhost:6333"
	}
	if cfg.Qdrant.APIKeyEnv == "" {
		cfg.Qdrant.APIKeyEnv = "QDRANT_API_KEY"
	}
	if cfg.Qdrant.TimeoutSecs == 0 {
		cfg.Qdrant.TimeoutSecs = 15
	}

	if cfg.RAG.ChunkSize == 0 {
		cfg.RAG.ChunkSize = 1000
	}
	if cfg.RAG.ChunkOverlap == 0 {
		cfg.RAG.ChunkOverlap = 200
	}
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = 5
	}

	if cfg.Pipeline.FastTimeoutSecs == 0 {
		cfg.Pipeline.FastTimeoutSecs = 30
	}
	if cfg.Pipeline.Workers == 0 {
		cfg.Pipeline.Workers = 4
	}
}
