// Package config provides application configuration with an explicit
// lifecycle: infrastructure settings come from the environment, shop
// preferences from a small JSON file kept outside the transactional store.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// AppVersion is stamped into backup manifests and the health endpoint.
const AppVersion = "1.0.0"

// Config holds infrastructure configuration loaded from the environment.
type Config struct {
	HTTPAddr     string
	DatabasePath string
	BackupDir    string
	SettingsPath string
	JWTSecret    string
	LogLevel     string
	Development  bool
}

// Load reads configuration from .env (if present) and the environment.
func Load() Config {
	_ = godotenv.Load()

	baseDir := getEnv("DATA_DIR", ".")

	return Config{
		HTTPAddr:     getEnv("HTTP_ADDR", ":8080"),
		DatabasePath: getEnv("DATABASE_PATH", filepath.Join(baseDir, "hussiny.db")),
		BackupDir:    getEnv("BACKUP_DIR", filepath.Join(baseDir, "backups")),
		SettingsPath: getEnv("SETTINGS_PATH", filepath.Join(baseDir, "settings.json")),
		JWTSecret:    getEnv("JWT_SECRET", "change-me-in-production"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		Development:  getEnv("APP_ENV", "development") == "development",
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt reads an integer environment variable with a fallback.
func GetEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

// Settings holds shop preferences persisted to the JSON settings file.
// Constructed explicitly and passed in; loaded at startup, saved only on
// explicit user action.
type Settings struct {
	ShopName        string  `json:"shop_name"`
	Currency        string  `json:"currency"`
	DefaultTaxRate  float64 `json:"default_tax_rate"`
	MaxBackups      int     `json:"max_backups"`
	AutoBackup      bool    `json:"auto_backup"`
	BackupFrequency string  `json:"backup_frequency"` // daily, weekly
	LastAutoBackup  string  `json:"last_auto_backup,omitempty"`
	CloudFolder     string  `json:"cloud_folder,omitempty"`
}

// DefaultSettings returns the initial shop preferences.
func DefaultSettings() Settings {
	return Settings{
		ShopName:        "الحسيني",
		Currency:        "EGP",
		DefaultTaxRate:  14,
		MaxBackups:      30,
		AutoBackup:      true,
		BackupFrequency: "daily",
	}
}

// LoadSettings reads settings from path, falling back to defaults when the
// file does not exist yet.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings: %w", err)
	}

	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// SaveSettings writes settings to path atomically (write + rename).
func SaveSettings(path string, s Settings) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace settings: %w", err)
	}
	return nil
}

// ShouldAutoBackup decides whether an automatic backup is due at now.
func ShouldAutoBackup(s Settings, now time.Time) bool {
	if !s.AutoBackup {
		return false
	}
	if s.LastAutoBackup == "" {
		return true
	}
	last, err := time.Parse(time.RFC3339, s.LastAutoBackup)
	if err != nil {
		return true
	}
	switch s.BackupFrequency {
	case "weekly":
		return now.Sub(last) >= 7*24*time.Hour
	default: // daily
		return now.Truncate(24 * time.Hour).After(last.Truncate(24 * time.Hour))
	}
}
