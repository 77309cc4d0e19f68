package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the retrieval service.
type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Storage        StorageConfig        `yaml:"storage"`
	Search         SearchConfig         `yaml:"search"`
	TextEmbedding  TextEmbeddingConfig  `yaml:"text_embedding"`
	ImageEmbedding ImageEmbeddingConfig `yaml:"image_embedding"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Addr string `yaml:"addr"`
	Mode string `yaml:"mode"` // "release" or "debug"
	CORS bool   `yaml:"cors"`
}

// StorageConfig holds vector index storage configuration.
type StorageConfig struct {
	Path            string `yaml:"path"`
	TextCollection  string `yaml:"text_collection"`
	ImageCollection string `yaml:"image_collection"`
}

// SearchConfig holds result-count limits for the two search paths. Both are
// overridable via TEXT_N_RESULTS / IMAGE_N_RESULTS environment variables.
type SearchConfig struct {
	TextResults  int `yaml:"text_results"`
	ImageResults int `yaml:"image_results"`
}

// TextEmbeddingConfig holds text embedding provider configuration.
type TextEmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai", "ollama", "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // Environment variable for API key
	BaseURL   string `yaml:"base_url"`    // Override endpoint (required for ollama)
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// ImageEmbeddingConfig holds image embedding provider configuration.
type ImageEmbeddingConfig struct {
	Provider  string `yaml:"provider"` // "inference", "mock"
	Model     string `yaml:"model"`    // e.g., "dinov2_vitl14"
	BaseURL   string `yaml:"base_url"`
	Dimension int    `yaml:"dimension"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr: ":8000",
			Mode: "release",
			CORS: true,
		},
		Storage: StorageConfig{
			Path:            "index.db",
			TextCollection:  "text_collection",
			ImageCollection: "image_collection",
		},
		Search: SearchConfig{
			TextResults:  100,
			ImageResults: 100,
		},
		TextEmbedding: TextEmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		ImageEmbedding: ImageEmbeddingConfig{
			Provider:  "inference",
			Model:     "dinov2_vitl14",
			BaseURL:   "http://localhost:9090",
			Dimension: 1024,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults when
// the file does not exist. Environment overrides apply after the file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for
// bookretrieval.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "bookretrieval.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}

	cfg := DefaultConfig()
	cfg.applyEnv()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnv() {
	if v, ok := envInt("TEXT_N_RESULTS"); ok {
		c.Search.TextResults = v
	}
	if v, ok := envInt("IMAGE_N_RESULTS"); ok {
		c.Search.ImageResults = v
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// IndexPath resolves the index database path relative to dir unless the
// configured path is absolute.
func (c *Config) IndexPath(dir string) string {
	if filepath.IsAbs(c.Storage.Path) {
		return c.Storage.Path
	}
	return filepath.Join(dir, c.Storage.Path)
}
