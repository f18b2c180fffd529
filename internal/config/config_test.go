package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gemini.Model != "gemini-2.5-flash" {
		t.Errorf("default model = %q", cfg.Gemini.Model)
	}
	if cfg.Database.SQLitePath != "data/fundpal.db" {
		t.Errorf("default db path = %q", cfg.Database.SQLitePath)
	}
	if cfg.Schedule.DigestCron == "" {
		t.Error("digest cron should default")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadReadsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
database:
  sqlite_path: /tmp/test.db
quotes:
  base_url: http://localhost:9999
gemini:
  model: gemini-experimental
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.SQLitePath != "/tmp/test.db" {
		t.Errorf("sqlite path = %q", cfg.Database.SQLitePath)
	}
	if cfg.Quotes.BaseURL != "http://localhost:9999" {
		t.Errorf("quotes base = %q", cfg.Quotes.BaseURL)
	}
	if cfg.Gemini.Model != "gemini-experimental" {
		t.Errorf("model = %q", cfg.Gemini.Model)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("gemini:\n  api_key: from-file\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GEMINI_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Gemini.APIKey != "from-env" {
		t.Errorf("api key = %q, env should win", cfg.Gemini.APIKey)
	}
}

func TestRedactedMasksSecrets(t *testing.T) {
	cfg := &Config{}
	cfg.Gemini.APIKey = "supersecretkey"
	cfg.Telegram.BotToken = "123:abcdef"

	r := cfg.Redacted()
	if strings.Contains(r.Gemini.APIKey, "secretkey") {
		t.Errorf("api key not masked: %q", r.Gemini.APIKey)
	}
	if strings.Contains(r.Telegram.BotToken, "abcdef") {
		t.Errorf("token not masked: %q", r.Telegram.BotToken)
	}
	if cfg.Gemini.APIKey != "supersecretkey" {
		t.Error("Redacted must not mutate the original")
	}
}
