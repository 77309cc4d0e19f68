package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Search.TextResults != 100 {
		t.Errorf("expected TextResults=100, got %d", cfg.Search.TextResults)
	}
	if cfg.Search.ImageResults != 100 {
		t.Errorf("expected ImageResults=100, got %d", cfg.Search.ImageResults)
	}
	if cfg.Storage.TextCollection != "text_collection" {
		t.Errorf("expected text_collection, got %s", cfg.Storage.TextCollection)
	}
	if cfg.TextEmbedding.Dimension != 1536 {
		t.Errorf("expected Dimension=1536, got %d", cfg.TextEmbedding.Dimension)
	}
	if cfg.Server.Addr != ":8000" {
		t.Errorf("expected Addr=:8000, got %s", cfg.Server.Addr)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bookretrieval.yaml")

	content := `
server:
  addr: ":9000"
search:
  text_results: 20
storage:
  image_collection: product_images
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":9000" {
		t.Errorf("expected Addr=:9000, got %s", cfg.Server.Addr)
	}
	if cfg.Search.TextResults != 20 {
		t.Errorf("expected TextResults=20, got %d", cfg.Search.TextResults)
	}
	if cfg.Storage.ImageCollection != "product_images" {
		t.Errorf("expected product_images, got %s", cfg.Storage.ImageCollection)
	}
	// Untouched keys keep their defaults.
	if cfg.Search.ImageResults != 100 {
		t.Errorf("expected ImageResults=100, got %d", cfg.Search.ImageResults)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TEXT_N_RESULTS", "42")
	t.Setenv("IMAGE_N_RESULTS", "17")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.TextResults != 42 {
		t.Errorf("expected TextResults=42, got %d", cfg.Search.TextResults)
	}
	if cfg.Search.ImageResults != 17 {
		t.Errorf("expected ImageResults=17, got %d", cfg.Search.ImageResults)
	}
}

func TestEnvOverrideInvalidIgnored(t *testing.T) {
	t.Setenv("TEXT_N_RESULTS", "not-a-number")

	cfg, err := LoadFromDir(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.TextResults != 100 {
		t.Errorf("expected default 100 for invalid override, got %d", cfg.Search.TextResults)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bookretrieval.yaml")

	content := "search:\n  image_results: 5\n"
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Search.ImageResults != 5 {
		t.Errorf("expected ImageResults=5, got %d", cfg.Search.ImageResults)
	}
}

func TestIndexPath(t *testing.T) {
	cfg := DefaultConfig()

	if got := cfg.IndexPath("/data"); got != filepath.Join("/data", "index.db") {
		t.Errorf("unexpected relative index path: %s", got)
	}

	cfg.Storage.Path = "/var/lib/bookretrieval/index.db"
	if got := cfg.IndexPath("/data"); got != "/var/lib/bookretrieval/index.db" {
		t.Errorf("expected absolute path preserved, got %s", got)
	}
}
