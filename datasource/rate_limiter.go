package datasource

import (
	"context"
	"fmt"

	"weather-app/models"

	"golang.org/x/time/rate"
)

// RateLimitedSource wraps a WeatherSource with separate limiters for search and forecast calls
type RateLimitedSource struct {
	source          WeatherSource
	searchLimiter   *rate.Limiter
	forecastLimiter *rate.Limiter
	name            string
}

// NewRateLimitedSource creates a source that implements both interfaces with rate limiting.
// searchRPS and forecastRPS are the maximum requests per second (can be fractional),
// burst is the maximum burst size allowed for each limiter.
func NewRateLimitedSource(source WeatherSource, searchRPS, forecastRPS float64, burst int) *RateLimitedSource {
	return &RateLimitedSource{
		source:          source,
		searchLimiter:   rate.NewLimiter(rate.Limit(searchRPS), burst),
		forecastLimiter: rate.NewLimiter(rate.Limit(forecastRPS), burst),
		name:            fmt.Sprintf("%s [Rate Limited]", source.Name()),
	}
}

// SearchLocations waits for the search limiter, then forwards to the underlying source
func (r *RateLimitedSource) SearchLocations(ctx context.Context, query string) ([]models.Location, error) {
	// Wait for rate limiter permission or context cancellation
	if err := r.searchLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.SearchLocations(ctx, query)
}

// FetchForecast waits for the forecast limiter, then forwards to the underlying source
func (r *RateLimitedSource) FetchForecast(ctx context.Context, location string, days int) (*models.ForecastResponse, error) {
	if err := r.forecastLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait canceled: %w", err)
	}
	return r.source.FetchForecast(ctx, location, days)
}

// Name returns the provider name
func (r *RateLimitedSource) Name() string {
	return r.name
}

var _ WeatherSource = (*RateLimitedSource)(nil)
