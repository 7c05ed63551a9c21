package config

import (
	"os"
	"testing"
)

func TestNewFromEnv(t *testing.T) {
	setEnv := func(key, value string) {
		t.Helper()
		t.Setenv(key, value)
	}

	t.Run("Success", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		setEnv("DATABASE_PATH", "/tmp/garden.db")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		setEnv("ADMIN_TELEGRAM_ID", "12")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.JWTSecret != "secret" {
			t.Errorf("Expected JWTSecret to be 'secret', got '%s'", cfg.JWTSecret)
		}
		if cfg.DatabasePath != "/tmp/garden.db" {
			t.Errorf("Expected DatabasePath to be '/tmp/garden.db', got '%s'", cfg.DatabasePath)
		}
		if len(cfg.TelegramAllowedUserIDs) != 2 || cfg.TelegramAllowedUserIDs[1] != 34 {
			t.Errorf("Expected allowed ids [12 34], got %v", cfg.TelegramAllowedUserIDs)
		}
		if cfg.AdminTelegramID != 12 {
			t.Errorf("Expected AdminTelegramID 12, got %d", cfg.AdminTelegramID)
		}
	})

	t.Run("Defaults", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		os.Unsetenv("DATABASE_PATH")
		os.Unsetenv("PORT")
		os.Unsetenv("GUIDE_ARCHIVE_PATH")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.DatabasePath != "data/garden.db" || cfg.Port != "8080" || cfg.GuideArchivePath != "data/guides" {
			t.Errorf("Unexpected defaults %+v", cfg)
		}
	})

	t.Run("MissingJWTSecret", func(t *testing.T) {
		setEnv("JWT_SECRET", "")

		_, err := NewFromEnv()
		if err == nil {
			t.Fatal("Expected an error for missing JWT_SECRET, got nil")
		}
		expectedError := "JWT_SECRET environment variable not set"
		if err.Error() != expectedError {
			t.Errorf("Expected error '%s', got '%s'", expectedError, err.Error())
		}
	})

	t.Run("InvalidAllowedIDs", func(t *testing.T) {
		setEnv("JWT_SECRET", "secret")
		setEnv("TELEGRAM_ALLOWED_USER_IDS", "12,abc")

		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for invalid TELEGRAM_ALLOWED_USER_IDS, got nil")
		}
	})
}
