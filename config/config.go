// Package config loads application settings from defaults, an optional
// config file, a .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingAPIKey is returned when no weather API key is configured
var ErrMissingAPIKey = errors.New("weather API key is not set (api.key, WEATHER_API_KEY or API_KEY)")

// Config holds all configuration for the application
type Config struct {
	API         APIConfig
	Storage     StorageConfig
	Search      SearchConfig
	Forecast    ForecastConfig
	Labels      LabelsConfig
	Geolocation GeolocationConfig
	Landing     LandingConfig
	Log         LogConfig
}

// APIConfig holds the weather API connection settings
type APIConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	Key       string
	Timeout   time.Duration
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

// RateLimitConfig bounds outgoing request rates
type RateLimitConfig struct {
	Enabled     bool
	SearchRPS   float64 `mapstructure:"search_rps"`
	ForecastRPS float64 `mapstructure:"forecast_rps"`
	Burst       int
}

// StorageConfig selects where the current location is persisted
type StorageConfig struct {
	Driver string // sqlite, file
	Path   string
}

type SearchConfig struct {
	Debounce time.Duration
}

type ForecastConfig struct {
	Days int // including today
}

// LabelsConfig controls date labels
type LabelsConfig struct {
	Timezone string // device, location
}

// GeolocationConfig selects the device position provider
type GeolocationConfig struct {
	Provider string // ip, static, none
	URL      string
	Lat      float64
	Lon      float64
	Allow    bool // static provider consent
}

type LandingConfig struct {
	Duration time.Duration
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	File   string // empty means stderr
}

// Load reads configuration. path may name a config file explicitly; when
// empty, config.{yaml,json} is looked up in the working directory and
// $HOME/.weather-app. A .env file in the working directory is loaded first.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.weather-app")
	}

	// Read from environment variables, e.g. WEATHER_FORECAST_DAYS
	v.SetEnvPrefix("WEATHER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unprefixed names are accepted as well
	_ = v.BindEnv("api.key", "WEATHER_API_KEY", "API_KEY")
	_ = v.BindEnv("api.base_url", "WEATHER_API_BASE_URL", "BASE_URL")

	if err := v.ReadInConfig(); err != nil {
		// It's okay if config file doesn't exist, we have defaults
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", "https://api.weatherapi.com/v1")
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout", 10*time.Second)
	// weatherapi.com free tier
	v.SetDefault("api.rate_limit.enabled", true)
	v.SetDefault("api.rate_limit.search_rps", 2.0)
	v.SetDefault("api.rate_limit.forecast_rps", 1.0)
	v.SetDefault("api.rate_limit.burst", 3)

	v.SetDefault("storage.driver", "sqlite")
	v.SetDefault("storage.path", defaultStoragePath())

	v.SetDefault("search.debounce", 300*time.Millisecond)
	v.SetDefault("forecast.days", 5)
	v.SetDefault("labels.timezone", "device")

	v.SetDefault("geolocation.provider", "ip")
	v.SetDefault("geolocation.url", "http://ip-api.com/json/")
	v.SetDefault("geolocation.lat", 0.0)
	v.SetDefault("geolocation.lon", 0.0)
	v.SetDefault("geolocation.allow", false)

	v.SetDefault("landing.duration", 1500*time.Millisecond)

	v.SetDefault("log.level", "warn")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.file", "")
}

func defaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "weather.db"
	}
	return filepath.Join(dir, "weather-app", "weather.db")
}

// Validate checks settings that have no usable fallback
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.Key) == "" {
		return ErrMissingAPIKey
	}
	if c.Forecast.Days < 1 || c.Forecast.Days > 14 {
		return fmt.Errorf("forecast.days must be between 1 and 14, got %d", c.Forecast.Days)
	}
	if c.Search.Debounce < 0 {
		return fmt.Errorf("search.debounce must not be negative, got %s", c.Search.Debounce)
	}
	switch strings.ToLower(c.Geolocation.Provider) {
	case "ip", "static", "none":
	default:
		return fmt.Errorf("unknown geolocation.provider %q (want ip, static or none)", c.Geolocation.Provider)
	}
	return nil
}

// NewLogger creates a new slog.Logger based on the configuration.
// The returned closer releases the log file, if any.
func (c *Config) NewLogger() (*slog.Logger, io.Closer, error) {
	// Parse log level
	var level slog.Level
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelWarn
	}

	var out io.Writer = os.Stderr
	var closer io.Closer = nopCloser{}
	if c.Log.File != "" {
		f, err := os.OpenFile(c.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out, closer = f, f
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	// Choose handler based on format
	var handler slog.Handler
	switch strings.ToLower(c.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(out, opts)
	default: // "text" or anything else
		handler = slog.NewTextHandler(out, opts)
	}

	return slog.New(handler), closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
