package config

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// isolate runs the test in an empty directory with none of the
// application's environment variables set
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	for _, name := range []string{"API_KEY", "BASE_URL", "WEATHER_API_KEY", "WEATHER_API_BASE_URL", "WEATHER_FORECAST_DAYS"} {
		t.Setenv(name, "")
		os.Unsetenv(name)
	}
	return dir
}

func TestLoad_MissingAPIKey(t *testing.T) {
	isolate(t)

	if _, err := Load(""); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("Load() error = %v, want ErrMissingAPIKey", err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("API_KEY", "abc123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Key != "abc123" {
		t.Errorf("API.Key = %q", cfg.API.Key)
	}
	if cfg.API.BaseURL != "https://api.weatherapi.com/v1" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %s", cfg.API.Timeout)
	}
	if cfg.Forecast.Days != 5 {
		t.Errorf("Forecast.Days = %d, want 5", cfg.Forecast.Days)
	}
	if cfg.Search.Debounce != 300*time.Millisecond {
		t.Errorf("Search.Debounce = %s", cfg.Search.Debounce)
	}
	if cfg.Labels.Timezone != "device" {
		t.Errorf("Labels.Timezone = %q", cfg.Labels.Timezone)
	}
	if cfg.Storage.Driver != "sqlite" || cfg.Storage.Path == "" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if !cfg.API.RateLimit.Enabled || cfg.API.RateLimit.Burst != 3 {
		t.Errorf("API.RateLimit = %+v", cfg.API.RateLimit)
	}
	if cfg.Landing.Duration != 1500*time.Millisecond {
		t.Errorf("Landing.Duration = %s", cfg.Landing.Duration)
	}
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := isolate(t)

	path := filepath.Join(dir, "settings.yaml")
	content := `
api:
  key: from-file
  base_url: http://localhost:9999/v1
  timeout: 2s
  rate_limit:
    enabled: false
storage:
  driver: file
  path: /tmp/location.json
search:
  debounce: 150ms
forecast:
  days: 7
labels:
  timezone: location
geolocation:
  provider: static
  lat: 47.5
  lon: 19.04
  allow: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("WEATHER_FORECAST_DAYS", "3")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Key != "from-file" || cfg.API.BaseURL != "http://localhost:9999/v1" {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.API.Timeout != 2*time.Second || cfg.API.RateLimit.Enabled {
		t.Errorf("API = %+v", cfg.API)
	}
	if cfg.Storage.Driver != "file" || cfg.Storage.Path != "/tmp/location.json" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Search.Debounce != 150*time.Millisecond {
		t.Errorf("Search.Debounce = %s", cfg.Search.Debounce)
	}
	if cfg.Forecast.Days != 3 {
		t.Errorf("Forecast.Days = %d, want the env value 3", cfg.Forecast.Days)
	}
	if cfg.Labels.Timezone != "location" {
		t.Errorf("Labels.Timezone = %q", cfg.Labels.Timezone)
	}
	if cfg.Geolocation.Provider != "static" || cfg.Geolocation.Lat != 47.5 || !cfg.Geolocation.Allow {
		t.Errorf("Geolocation = %+v", cfg.Geolocation)
	}
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	t.Cleanup(func() {
		os.Unsetenv("API_KEY")
		os.Unsetenv("BASE_URL")
	})

	env := "API_KEY=dotenv-key\nBASE_URL=http://example.test/v1\n"
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte(env), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.Key != "dotenv-key" {
		t.Errorf("API.Key = %q, want dotenv-key", cfg.API.Key)
	}
	if cfg.API.BaseURL != "http://example.test/v1" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	dir := isolate(t)
	t.Setenv("API_KEY", "abc123")

	if _, err := Load(filepath.Join(dir, "nope.yaml")); err == nil {
		t.Error("expected an error for a missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			API:         APIConfig{Key: "k"},
			Forecast:    ForecastConfig{Days: 5},
			Geolocation: GeolocationConfig{Provider: "ip"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid", func(*Config) {}, false},
		{"blank key", func(c *Config) { c.API.Key = "  " }, true},
		{"zero days", func(c *Config) { c.Forecast.Days = 0 }, true},
		{"too many days", func(c *Config) { c.Forecast.Days = 15 }, true},
		{"negative debounce", func(c *Config) { c.Search.Debounce = -time.Second }, true},
		{"unknown provider", func(c *Config) { c.Geolocation.Provider = "gps" }, true},
		{"provider case", func(c *Config) { c.Geolocation.Provider = "None" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	cfg := &Config{Log: LogConfig{Level: "info", Format: "json", File: path}}

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		t.Fatalf("NewLogger() error = %v", err)
	}

	logger.Debug("hidden")
	logger.Info("shown", "component", "test")
	if err := closer.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if strings.Contains(out, "hidden") {
		t.Error("debug record written at info level")
	}
	if !strings.Contains(out, `"msg":"shown"`) {
		t.Errorf("expected a JSON record, got %q", out)
	}

	if !logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("logger should be enabled at info")
	}
}
