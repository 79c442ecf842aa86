package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// AppConfig holds process-level configuration. User preferences live in
// the settings store; everything here is fixed for the lifetime of the
// process.
type AppConfig struct {
	// SettingsPath is where user settings and the cached weather
	// snapshot are persisted.
	SettingsPath string

	// PrefsAddr is the listen address for the local preferences UI.
	PrefsAddr string

	// Upstream endpoint base URLs. Overridable for tests.
	IPAPIBaseURL    string
	GeocodeBaseURL  string
	ForecastBaseURL string

	// HTTPTimeout is the per-request deadline for outbound calls.
	HTTPTimeout time.Duration
}

const (
	defaultSettingsPath = "~/.config/dualtemp/settings.toml"
	defaultPrefsAddr    = "127.0.0.1:8790"

	defaultIPAPIBaseURL    = "http://ip-api.com/json/"
	defaultGeocodeBaseURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastBaseURL = "https://api.open-meteo.com/v1/forecast"
)

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{
		PrefsAddr:       getenvDefault("DUALTEMP_PREFS_ADDR", defaultPrefsAddr),
		IPAPIBaseURL:    getenvDefault("DUALTEMP_IPAPI_URL", defaultIPAPIBaseURL),
		GeocodeBaseURL:  getenvDefault("DUALTEMP_GEOCODE_URL", defaultGeocodeBaseURL),
		ForecastBaseURL: getenvDefault("DUALTEMP_FORECAST_URL", defaultForecastBaseURL),
	}

	timeoutStr := getenvDefault("DUALTEMP_HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DUALTEMP_HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	path, err := expandPath(getenvDefault("DUALTEMP_SETTINGS_PATH", defaultSettingsPath))
	if err != nil {
		return nil, fmt.Errorf("resolve settings path: %w", err)
	}
	cfg.SettingsPath = path

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
