package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		t.Setenv("STUDY_PLANNER_CONFIG", "")
		t.Setenv("STUDY_PLANNER_DATA_DIR", "")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Provider != "openai" {
			t.Errorf("Expected provider 'openai', got '%s'", cfg.Provider)
		}
		if cfg.Temperature != 0.7 {
			t.Errorf("Expected temperature 0.7, got %v", cfg.Temperature)
		}
		if cfg.Store != StoreFile {
			t.Errorf("Expected file store, got '%s'", cfg.Store)
		}
		if cfg.DatabasePath != filepath.Join("data", "planner.db") {
			t.Errorf("Unexpected database path '%s'", cfg.DatabasePath)
		}
	})

	t.Run("EnvOverrides", func(t *testing.T) {
		t.Setenv("STUDY_PLANNER_PROVIDER", "groq")
		t.Setenv("STUDY_PLANNER_TEMPERATURE", "0.2")
		t.Setenv("STUDY_PLANNER_TIMEOUT", "15s")
		t.Setenv("STUDY_PLANNER_STORE", "sqlite")
		t.Setenv("TELEGRAM_ALLOW_USER_IDS", "12, 34")
		t.Setenv("ADMIN_TELEGRAM_ID", "12")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Provider != "groq" || cfg.Store != StoreSQLite {
			t.Errorf("Unexpected provider/store: %s/%s", cfg.Provider, cfg.Store)
		}
		if cfg.Timeout != 15*time.Second {
			t.Errorf("Expected 15s timeout, got %v", cfg.Timeout)
		}
		if len(cfg.TelegramAllowUserIDs) != 2 || !cfg.IsAllowed(34) || cfg.IsAllowed(56) {
			t.Errorf("Unexpected allow list %v", cfg.TelegramAllowUserIDs)
		}
		if cfg.AdminTelegramID != 12 {
			t.Errorf("Expected admin 12, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("FileOverlay", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "planner.yaml")
		content := "provider: gemini\nmodel: gemini-1.5-pro\ntimeout: 45s\ndata_dir: /var/lib/planner\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		t.Setenv("STUDY_PLANNER_CONFIG", path)
		t.Setenv("STUDY_PLANNER_PROVIDER", "")
		t.Setenv("STUDY_PLANNER_TIMEOUT", "")
		t.Setenv("STUDY_PLANNER_STORE", "")
		t.Setenv("STUDY_PLANNER_MODEL", "gpt-4o")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Provider != "gemini" {
			t.Errorf("Expected provider from file, got '%s'", cfg.Provider)
		}
		if cfg.Model != "gpt-4o" {
			t.Errorf("Expected env to win over file, got '%s'", cfg.Model)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("Expected 45s timeout, got %v", cfg.Timeout)
		}
		if cfg.LogPath != filepath.Join("/var/lib/planner", "planner.log") {
			t.Errorf("Unexpected log path '%s'", cfg.LogPath)
		}
	})

	t.Run("InvalidStore", func(t *testing.T) {
		t.Setenv("STUDY_PLANNER_CONFIG", "")
		t.Setenv("STUDY_PLANNER_STORE", "redis")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for unknown store, got nil")
		}
	})

	t.Run("InvalidTemperature", func(t *testing.T) {
		t.Setenv("STUDY_PLANNER_CONFIG", "")
		t.Setenv("STUDY_PLANNER_STORE", "")
		t.Setenv("STUDY_PLANNER_TEMPERATURE", "warm")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid temperature, got nil")
		}
	})
}

func TestRequireTelegram(t *testing.T) {
	cfg := Default()
	err := cfg.RequireTelegram()
	if err == nil || err.Error() != "TELEGRAM_BOT_TOKEN environment variable not set" {
		t.Fatalf("Expected missing token error, got %v", err)
	}

	cfg.TelegramBotToken = "token"
	if err := cfg.RequireTelegram(); err == nil {
		t.Fatal("Expected missing share secret error")
	}

	cfg.ShareSecret = "secret"
	if err := cfg.RequireTelegram(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
}

func TestIsAllowed(t *testing.T) {
	t.Run("EmptyListDeniesEveryone", func(t *testing.T) {
		cfg := Default()
		if cfg.IsAllowed(34) {
			t.Error("Expected an empty allow list to deny")
		}
	})

	t.Run("ListedUserOnly", func(t *testing.T) {
		cfg := &Config{TelegramAllowUserIDs: []int64{34, 78}}
		if !cfg.IsAllowed(78) || cfg.IsAllowed(56) {
			t.Errorf("Unexpected decisions for %v", cfg.TelegramAllowUserIDs)
		}
	})
}
