package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"weather-app/config"
	"weather-app/datasource"
	"weather-app/datelabel"
	"weather-app/geolocation"
	"weather-app/models"
	"weather-app/navigation"
	"weather-app/notify"
	"weather-app/screens"
	"weather-app/storage"
	"weather-app/terminal"
	"weather-app/timezone"
)

func main() {
	// Parse command line arguments
	configFile := flag.String("config", "", "Path to configuration file (default: ./config.yaml if present)")
	logLevel := flag.String("log-level", "", "Override log level (debug, info, warn, error)")
	noColor := flag.Bool("no-color", false, "Disable highlighted notifications")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}

	logger, logCloser, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer logCloser.Close()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger, !*noColor); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped", "error", err)
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger, color bool) error {
	out := terminal.SyncWriter(os.Stdout)
	input := terminal.NewInput(os.Stdin)

	// Weather API
	client := datasource.NewClient(datasource.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		Timeout: cfg.API.Timeout,
	}, logger)
	defer client.Close()

	var source datasource.WeatherSource = datasource.NewWeatherAPIProvider(client)
	if cfg.API.RateLimit.Enabled {
		rl := cfg.API.RateLimit
		source = datasource.NewRateLimitedSource(source, rl.SearchRPS, rl.ForecastRPS, rl.Burst)
		logger.Debug("applied rate limiting", "source", source.Name())
	}

	// Persistence
	if cfg.Storage.Path != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
			return fmt.Errorf("failed to create storage directory: %w", err)
		}
	}
	store, err := storage.Open(storage.Config{
		Driver: cfg.Storage.Driver,
		Path:   cfg.Storage.Path,
		Logger: logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer store.Close()

	// Date labels
	zoneMode, err := screens.ParseLabelZone(cfg.Labels.Timezone)
	if err != nil {
		return err
	}
	var tz timezone.Service
	if zoneMode == screens.ZoneLocation {
		tz, err = timezone.NewService()
		if err != nil {
			// Labels fall back to the forecast's tz_id or the device zone
			logger.Warn("timezone lookup unavailable", "error", err)
		}
	}
	labels := screens.NewDayLabels(datelabel.New(), zoneMode, tz, logger)

	locator, closeLocator := newLocator(cfg, input, out, logger)
	defer closeLocator()

	nav := navigation.New()
	nav.Subscribe(func(from, to navigation.Route) {
		logger.Debug("navigated", "from", from, "to", to)
	})

	mainScreen := screens.NewMain(screens.MainDeps{
		Source:   source,
		Store:    store,
		Locator:  locator,
		Notifier: notify.NewWriter(out, color),
		Nav:      nav,
		Labels:   labels,
		Logger:   logger,
	}, screens.MainConfig{
		Days:     cfg.Forecast.Days,
		Debounce: cfg.Search.Debounce,
	})
	defer mainScreen.Close()

	app := terminal.New(terminal.Options{
		Input:   input,
		Out:     out,
		Nav:     nav,
		Main:    mainScreen,
		Landing: screens.NewLanding(out, nav, cfg.Landing.Duration),
		Logger:  logger,
	})
	return app.Run(ctx)
}

// newLocator builds the configured device position provider
func newLocator(cfg *config.Config, input *terminal.Input, out io.Writer, logger *slog.Logger) (geolocation.Locator, func()) {
	switch strings.ToLower(cfg.Geolocation.Provider) {
	case "static":
		return geolocation.StaticLocator{
			Position: models.Coordinates{Lat: cfg.Geolocation.Lat, Lon: cfg.Geolocation.Lon},
			Allow:    cfg.Geolocation.Allow,
		}, func() {}
	case "none":
		return geolocation.Disabled{}, func() {}
	default:
		ip := geolocation.NewIPLocator(cfg.Geolocation.URL, cfg.API.Timeout, input.Prompter(out), logger)
		return ip, func() { ip.Close() }
	}
}
