package datasource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"weather-app/models"
)

// WeatherAPIProvider implements both LocationSearcher and ForecastSource for weatherapi.com
type WeatherAPIProvider struct {
	client *Client
}

// NewWeatherAPIProvider creates a new WeatherAPI provider on top of a configured client
func NewWeatherAPIProvider(client *Client) *WeatherAPIProvider {
	return &WeatherAPIProvider{client: client}
}

// Name returns the provider name
func (p *WeatherAPIProvider) Name() string {
	return "WeatherAPI"
}

// SearchLocations queries the search/autocomplete endpoint
func (p *WeatherAPIProvider) SearchLocations(ctx context.Context, query string) ([]models.Location, error) {
	params := url.Values{}
	params.Set("q", query)

	var response models.SearchResponse
	if err := p.client.Get(ctx, "search.json", params, &response); err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}

	if response == nil {
		return []models.Location{}, nil
	}
	return response, nil
}

// FetchForecast fetches forecast for a location for the specified number of days
func (p *WeatherAPIProvider) FetchForecast(ctx context.Context, location string, days int) (*models.ForecastResponse, error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("days", strconv.Itoa(days))

	var response models.ForecastResponse
	if err := p.client.Get(ctx, "forecast.json", params, &response); err != nil {
		return nil, fmt.Errorf("forecast for %q: %w", location, err)
	}

	return &response, nil
}

// Verify that the provider implements the required interfaces
var _ WeatherSource = (*WeatherAPIProvider)(nil)
