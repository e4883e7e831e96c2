package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Location represents a place as returned by the weather API search endpoint
type Location struct {
	ID      int64   `json:"id"`
	Name    string  `json:"name"`
	Region  string  `json:"region"`
	Country string  `json:"country"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
	URL     string  `json:"url"`
}

// Query returns the "lat,lon" form the forecast endpoint accepts
func (l Location) Query() string {
	return strconv.FormatFloat(l.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(l.Lon, 'f', -1, 64)
}

// DisplayName formats the location the way search results are listed
func (l Location) DisplayName() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{l.Name, l.Region, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.2f, %.2f", l.Lat, l.Lon)
	}
	return strings.Join(parts, ", ")
}

// Coordinates is a single device position reading
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location converts a position reading into a location with only lat/lon set
func (c Coordinates) Location() Location {
	return Location{Lat: c.Lat, Lon: c.Lon}
}

// SearchResponse is the list of candidate locations for a partial query
type SearchResponse []Location

// DefaultLocation is used on the first run, before anything has been saved
var DefaultLocation = Location{
	ID:      2618724,
	Name:    "New York",
	Region:  "New York",
	Country: "United States of America",
	Lat:     40.71,
	Lon:     -74.01,
	URL:     "new-york-new-york-united-states-of-america",
}
