package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"weather-app/config"
	"weather-app/datasource"
	"weather-app/datelabel"
	"weather-app/models"
	"weather-app/screens"
	"weather-app/terminal"
	"weather-app/timezone"
)

func main() {
	var (
		query      = flag.String("q", "", "Location to forecast: a name, \"lat,lon\" or anything the API accepts")
		days       = flag.Int("days", 0, "Number of days including today (default: forecast.days from config)")
		configFile = flag.String("config", "", "Path to configuration file")
		search     = flag.Bool("search", false, "List matching locations instead of printing a forecast")
	)
	flag.Parse()

	if *query == "" {
		fmt.Fprintln(os.Stderr, "error: -q is required, e.g.  forecast -q London")
		os.Exit(1)
	}

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *days > 0 {
		cfg.Forecast.Days = *days
	}

	logger, closer, err := cfg.NewLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	defer closer.Close()

	client := datasource.NewClient(datasource.ClientConfig{
		BaseURL: cfg.API.BaseURL,
		APIKey:  cfg.API.Key,
		Timeout: cfg.API.Timeout,
	}, logger)
	defer client.Close()
	provider := datasource.NewWeatherAPIProvider(client)

	// Context with timeout gives us a hard deadline independent of the HTTP client timeout.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.API.Timeout+5*time.Second)
	defer cancel()

	if *search {
		locations, err := provider.SearchLocations(ctx, *query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		if len(locations) == 0 {
			fmt.Println("No matching locations.")
			return
		}
		for i, loc := range locations {
			fmt.Printf("%d. %s (%s)\n", i+1, loc.DisplayName(), loc.Query())
		}
		return
	}

	forecast, err := provider.FetchForecast(ctx, *query, cfg.Forecast.Days)
	if err != nil {
		if datasource.IsAuthFailure(err) {
			fmt.Fprintln(os.Stderr, "error: the API key was rejected; check WEATHER_API_KEY")
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}

	zoneMode, err := screens.ParseLabelZone(cfg.Labels.Timezone)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	var tz timezone.Service
	if zoneMode == screens.ZoneLocation {
		if tz, err = timezone.NewService(); err != nil {
			logger.Warn("timezone lookup unavailable", "error", err)
		}
	}
	labels := screens.NewDayLabels(datelabel.New(), zoneMode, tz, logger)

	fmt.Println()
	terminal.RenderForecast(os.Stdout, forecast, func(day models.ForecastDay) string {
		return labels.DayLabelAt(day, &forecast.Location)
	})
	fmt.Println()
}
