package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreFile   = "file"
	StoreSQLite = "sqlite"
)

// Config holds the configuration for the application.
type Config struct {
	// Generation backend
	Provider    string        `yaml:"provider"`
	Model       string        `yaml:"model"`
	BaseURL     string        `yaml:"base_url"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	// Persistence
	DataDir      string `yaml:"data_dir"`
	Store        string `yaml:"store"`
	DatabasePath string `yaml:"database_path"`
	LogPath      string `yaml:"log_path"`

	// Telegram Config
	TelegramBotToken     string  `yaml:"telegram_bot_token"`
	TelegramWebhookURL   string  `yaml:"telegram_webhook_url"`
	TelegramAllowUserIDs []int64 `yaml:"telegram_allow_user_ids"`
	AdminTelegramID      int64   `yaml:"admin_telegram_id"`

	// Share links
	ShareSecret string `yaml:"share_secret"`
	PublicURL   string `yaml:"public_url"`
	Port        string `yaml:"port"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Provider:    "openai",
		Temperature: 0.7,
		Timeout:     90 * time.Second,
		DataDir:     "data",
		Store:       StoreFile,
		Port:        "8080",
	}
}

// LoadFile overlays the YAML file at path onto cfg. Keys missing from the
// file keep their current values.
func LoadFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// NewFromEnv creates a new Config object from defaults, the optional file
// named by STUDY_PLANNER_CONFIG and environment variables, in that order.
func NewFromEnv() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("STUDY_PLANNER_CONFIG"); path != "" {
		if err := LoadFile(cfg, path); err != nil {
			return nil, err
		}
	}

	setString(&cfg.Provider, "STUDY_PLANNER_PROVIDER")
	setString(&cfg.Model, "STUDY_PLANNER_MODEL")
	setString(&cfg.BaseURL, "STUDY_PLANNER_BASE_URL")
	setString(&cfg.DataDir, "STUDY_PLANNER_DATA_DIR")
	setString(&cfg.Store, "STUDY_PLANNER_STORE")
	setString(&cfg.DatabasePath, "DATABASE_PATH")
	setString(&cfg.LogPath, "STUDY_PLANNER_LOG")
	setString(&cfg.TelegramBotToken, "TELEGRAM_BOT_TOKEN")
	setString(&cfg.TelegramWebhookURL, "TELEGRAM_WEBHOOK_URL")
	setString(&cfg.ShareSecret, "SHARE_SECRET")
	setString(&cfg.PublicURL, "PUBLIC_URL")
	setString(&cfg.Port, "PORT")

	if v := os.Getenv("STUDY_PLANNER_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid STUDY_PLANNER_TEMPERATURE %q: %w", v, err)
		}
		cfg.Temperature = float32(t)
	}

	if v := os.Getenv("STUDY_PLANNER_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid STUDY_PLANNER_TIMEOUT %q: %w", v, err)
		}
		cfg.Timeout = d
	}

	if v := os.Getenv("TELEGRAM_ALLOW_USER_IDS"); v != "" {
		ids, err := parseIDs(v)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_ALLOW_USER_IDS: %w", err)
		}
		cfg.TelegramAllowUserIDs = ids
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID %q: %w", v, err)
		}
		cfg.AdminTelegramID = id
	}

	if cfg.Store != StoreFile && cfg.Store != StoreSQLite {
		return nil, fmt.Errorf("unknown store backend %q (want %s or %s)", cfg.Store, StoreFile, StoreSQLite)
	}
	if cfg.Provider == "" {
		return nil, fmt.Errorf("STUDY_PLANNER_PROVIDER environment variable not set")
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = filepath.Join(cfg.DataDir, "planner.db")
	}
	if cfg.LogPath == "" {
		cfg.LogPath = filepath.Join(cfg.DataDir, "planner.log")
	}

	return cfg, nil
}

// RequireTelegram reports the first bot setting that is missing.
func (c *Config) RequireTelegram() error {
	if c.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN environment variable not set")
	}
	if c.ShareSecret == "" {
		return fmt.Errorf("SHARE_SECRET environment variable not set")
	}
	return nil
}

// IsAllowed reports whether a Telegram user may talk to the bot. Only
// listed users are admitted; an empty list admits nobody.
func (c *Config) IsAllowed(userID int64) bool {
	for _, id := range c.TelegramAllowUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func parseIDs(v string) ([]int64, error) {
	var ids []int64
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a user id", field)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
