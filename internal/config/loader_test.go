package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	loader := &Loader{
		filePath: filepath.Join(t.TempDir(), "config.json"),
	}

	cfg, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.LLM.Provider != "openai" {
		t.Fatalf("expected openai, got %s", cfg.LLM.Provider)
	}
	if cfg.Bot.ChunkSize != 1700 {
		t.Fatalf("expected 1700, got %d", cfg.Bot.ChunkSize)
	}
	if cfg.Bot.MaxHistory != 12 {
		t.Fatalf("expected 12, got %d", cfg.Bot.MaxHistory)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	loader := &Loader{filePath: path}

	cfg := Defaults()
	cfg.LLM.Provider = "anthropic"
	cfg.LLM.APIKey = "test-key"
	cfg.Bot.MaxHistory = 4

	if err := loader.Save(cfg); err != nil {
		t.Fatal(err)
	}

	// Verify file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("config file was not created")
	}

	// Load back
	loaded, err := loader.Load()
	if err != nil {
		t.Fatal(err)
	}

	if loaded.LLM.Provider != "anthropic" {
		t.Fatalf("expected anthropic, got %s", loaded.LLM.Provider)
	}
	if loaded.LLM.APIKey != "test-key" {
		t.Fatalf("expected test-key, got %s", loaded.LLM.APIKey)
	}
	if loaded.Bot.MaxHistory != 4 {
		t.Fatalf("expected 4, got %d", loaded.Bot.MaxHistory)
	}
}

func TestLoaderDirOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(configDirEnv, dir)

	loader, err := NewLoader()
	if err != nil {
		t.Fatal(err)
	}
	if loader.FilePath() != filepath.Join(dir, configFile) {
		t.Fatalf("unexpected config path: %s", loader.FilePath())
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	cfg = Defaults()
	cfg.Bot.ChunkSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for zero chunk size")
	}

	cfg = Defaults()
	cfg.Bot.ChunkSize = -5
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative chunk size")
	}

	cfg = Defaults()
	cfg.Bot.MaxHistory = -1
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative max history")
	}

	// Zero history is allowed: it disables context, not the bot.
	cfg = Defaults()
	cfg.Bot.MaxHistory = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero max history should validate: %v", err)
	}

	cfg = Defaults()
	cfg.LLM.Provider = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing provider")
	}
}
