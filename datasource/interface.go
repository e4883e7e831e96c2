package datasource

import (
	"context"

	"weather-app/models"
)

// LocationSearcher defines the interface for services that can geocode free text into candidate locations
type LocationSearcher interface {
	// SearchLocations returns the locations matching a partial query
	SearchLocations(ctx context.Context, query string) ([]models.Location, error)

	// Name returns the source's name
	Name() string
}

// ForecastSource is an interface for services that can fetch weather forecasts
type ForecastSource interface {
	// FetchForecast fetches forecast for a location query ("lat,lon" or a name) for the specified number of days
	FetchForecast(ctx context.Context, location string, days int) (*models.ForecastResponse, error)

	// Name returns the source's name
	Name() string
}

// WeatherSource combines both interfaces; it is what the main screen consumes
type WeatherSource interface {
	LocationSearcher
	ForecastSource
}
