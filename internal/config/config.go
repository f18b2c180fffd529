// Package config loads application configuration from a YAML file,
// with environment variables taking precedence for secrets.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
	} `yaml:"telegram"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Quotes struct {
		BaseURL  string `yaml:"base_url"`
		CacheTTL string `yaml:"cache_ttl"`
	} `yaml:"quotes"`
	Schedule struct {
		DigestCron string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Funds struct {
		CatalogPath string `yaml:"catalog_path"`
	} `yaml:"funds"`
	Log struct {
		Dir   string `yaml:"dir"`
		Level string `yaml:"level"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment
// variable overrides. A .env file in the working directory is loaded
// first so local development matches production env wiring.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
	if v := os.Getenv("QUOTES_BASE_URL"); v != "" {
		cfg.Quotes.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("DIGEST_CRON"); v != "" {
		cfg.Schedule.DigestCron = v
	}
	if v := os.Getenv("FUNDPAL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Defaults
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Quotes.BaseURL == "" {
		cfg.Quotes.BaseURL = "https://query1.finance.yahoo.com"
	}
	if cfg.Quotes.CacheTTL == "" {
		cfg.Quotes.CacheTTL = "5m"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 8 * * *"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fundpal.db"
	}
	if cfg.Funds.CatalogPath == "" {
		cfg.Funds.CatalogPath = "configs/funds.yaml"
	}
	if cfg.Log.Dir == "" {
		cfg.Log.Dir = "logs"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "INFO"
	}

	return cfg, nil
}

// Validate checks that all required fields are set. The Telegram token
// and Gemini key are optional so the core can run headless in tests.
func (c *Config) Validate() error {
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.Schedule.DigestCron == "" {
		return fmt.Errorf("schedule.digest_cron is required")
	}
	return nil
}

// Redacted returns a copy safe for logging.
func (c *Config) Redacted() Config {
	out := *c
	out.Telegram.BotToken = mask(c.Telegram.BotToken)
	out.Gemini.APIKey = mask(c.Gemini.APIKey)
	return out
}

func mask(secret string) string {
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
