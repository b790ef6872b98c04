package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Config represents the application configuration
type Config struct {
	Strava    StravaConfig    `json:"strava"`
	Cache     CacheConfig     `json:"cache"`
	Analytics AnalyticsConfig `json:"analytics"`
	Display   DisplayConfig   `json:"display"`
	LogLevel  string          `json:"log_level"`
}

// StravaConfig holds Strava API credentials
type StravaConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// CacheConfig controls when the local activity cache is trusted
// and how the incremental fetch cursor is computed.
type CacheConfig struct {
	// StaleMinutes is the window under which a cache read skips the network.
	StaleMinutes int `json:"stale_minutes"`
	// CursorBackoffSeconds is subtracted from the newest cached activity's
	// time when building the incremental "after" cursor, so activities near
	// the boundary are never silently missed.
	CursorBackoffSeconds int `json:"cursor_backoff_seconds"`
}

// AnalyticsConfig holds tunables for the derived-analytics engines
type AnalyticsConfig struct {
	// RiegelExponent is the exponent of the Riegel race-time model.
	RiegelExponent float64 `json:"riegel_exponent"`
	// ConfidenceHighKm / ConfidenceMediumKm are rolling 90-day volume
	// thresholds for labeling projection confidence.
	ConfidenceHighKm   float64 `json:"confidence_high_km"`
	ConfidenceMediumKm float64 `json:"confidence_medium_km"`
	// DistanceBands optionally overrides the tolerance bands for matching
	// activities to canonical race distances, keyed by class name
	// ("5k", "10k", "half", "marathon"), each [min, max] in meters.
	DistanceBands map[string][2]float64 `json:"distance_bands,omitempty"`
}

// DisplayConfig holds display preferences
type DisplayConfig struct {
	DistanceUnit string `json:"distance_unit"`
	PaceUnit     string `json:"pace_unit"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Cache: CacheConfig{
			StaleMinutes:         15,
			CursorBackoffSeconds: 3600,
		},
		Analytics: AnalyticsConfig{
			RiegelExponent:     1.06,
			ConfidenceHighKm:   300,
			ConfidenceMediumKm: 150,
		},
		Display: DisplayConfig{
			DistanceUnit: "km",
			PaceUnit:     "min/km",
		},
		LogLevel: "info",
	}
}

// StaleWindow returns the cache staleness window as a duration
func (c CacheConfig) StaleWindow() time.Duration {
	return time.Duration(c.StaleMinutes) * time.Minute
}

// CursorBackoff returns the incremental cursor back-off as a duration
func (c CacheConfig) CursorBackoff() time.Duration {
	return time.Duration(c.CursorBackoffSeconds) * time.Second
}

// Load reads the configuration from ~/.paceboard/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Apply defaults for missing values
	defaults := DefaultConfig()
	if cfg.Cache.StaleMinutes == 0 {
		cfg.Cache.StaleMinutes = defaults.Cache.StaleMinutes
	}
	if cfg.Cache.CursorBackoffSeconds == 0 {
		cfg.Cache.CursorBackoffSeconds = defaults.Cache.CursorBackoffSeconds
	}
	if cfg.Analytics.RiegelExponent == 0 {
		cfg.Analytics.RiegelExponent = defaults.Analytics.RiegelExponent
	}
	if cfg.Analytics.ConfidenceHighKm == 0 {
		cfg.Analytics.ConfidenceHighKm = defaults.Analytics.ConfidenceHighKm
	}
	if cfg.Analytics.ConfidenceMediumKm == 0 {
		cfg.Analytics.ConfidenceMediumKm = defaults.Analytics.ConfidenceMediumKm
	}
	if cfg.Display.DistanceUnit == "" {
		cfg.Display.DistanceUnit = defaults.Display.DistanceUnit
	}
	if cfg.Display.PaceUnit == "" {
		cfg.Display.PaceUnit = defaults.Display.PaceUnit
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaults.LogLevel
	}

	return &cfg, nil
}

// Save writes the configuration to ~/.paceboard/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// Validate checks if the config has required fields
func (c *Config) Validate() error {
	if c.Strava.ClientID == "" || c.Strava.ClientID == "YOUR_CLIENT_ID" {
		return errors.New("strava.client_id is required - get it from https://www.strava.com/settings/api")
	}
	if c.Strava.ClientSecret == "" || c.Strava.ClientSecret == "YOUR_CLIENT_SECRET" {
		return errors.New("strava.client_secret is required - get it from https://www.strava.com/settings/api")
	}

	if c.Cache.StaleMinutes < 0 {
		return fmt.Errorf("cache.stale_minutes must not be negative, got %d", c.Cache.StaleMinutes)
	}
	if c.Cache.CursorBackoffSeconds < 0 {
		return fmt.Errorf("cache.cursor_backoff_seconds must not be negative, got %d", c.Cache.CursorBackoffSeconds)
	}

	if c.Analytics.RiegelExponent < 1.0 || c.Analytics.RiegelExponent > 1.2 {
		return fmt.Errorf("analytics.riegel_exponent must be between 1.0 and 1.2, got %v", c.Analytics.RiegelExponent)
	}
	if c.Analytics.ConfidenceMediumKm >= c.Analytics.ConfidenceHighKm {
		return fmt.Errorf("analytics.confidence_medium_km (%v) must be less than confidence_high_km (%v)",
			c.Analytics.ConfidenceMediumKm, c.Analytics.ConfidenceHighKm)
	}
	for class, band := range c.Analytics.DistanceBands {
		if band[0] >= band[1] {
			return fmt.Errorf("analytics.distance_bands[%s]: min %v must be less than max %v", class, band[0], band[1])
		}
	}

	// Validate display units
	if c.Display.DistanceUnit != "" && c.Display.DistanceUnit != "km" && c.Display.DistanceUnit != "mi" {
		return fmt.Errorf("display.distance_unit must be \"km\" or \"mi\", got %q", c.Display.DistanceUnit)
	}
	if c.Display.PaceUnit != "" && c.Display.PaceUnit != "min/km" && c.Display.PaceUnit != "min/mi" {
		return fmt.Errorf("display.pace_unit must be \"min/km\" or \"min/mi\", got %q", c.Display.PaceUnit)
	}

	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".paceboard", "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".paceboard"), nil
}
