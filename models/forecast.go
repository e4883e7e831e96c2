package models

import (
	"strings"
)

// Condition is the weather condition attached to current or daily data
type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"` // protocol-relative path, e.g. //cdn.weatherapi.com/weather/64x64/day/113.png
	Code int    `json:"code"`
}

// IconURL returns an absolute URL for the large variant of the condition icon
func (c Condition) IconURL() string {
	if c.Icon == "" {
		return ""
	}
	icon := strings.Replace(c.Icon, "64x64", "128x128", 1)
	if strings.HasPrefix(icon, "//") {
		return "https:" + icon
	}
	return icon
}

// ForecastLocation is the location echo included in a forecast response
type ForecastLocation struct {
	Name           string  `json:"name"`
	Region         string  `json:"region"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	TzID           string  `json:"tz_id"`
	LocaltimeEpoch int64   `json:"localtime_epoch"`
	Localtime      string  `json:"localtime"`
}

// Current holds the current conditions at the forecast location
type Current struct {
	LastUpdatedEpoch int64     `json:"last_updated_epoch"`
	TempC            float64   `json:"temp_c"`
	FeelsLikeC       float64   `json:"feelslike_c"`
	IsDay            int       `json:"is_day"`
	Condition        Condition `json:"condition"`
	WindKph          float64   `json:"wind_kph"`
	WindDegree       int       `json:"wind_degree"`
	PressureMb       float64   `json:"pressure_mb"`
	PressureIn       float64   `json:"pressure_in"`
	Humidity         int       `json:"humidity"`
	VisKm            float64   `json:"vis_km"`
}

// Day is the aggregate for a single forecast day
type Day struct {
	MaxTempC          float64   `json:"maxtemp_c"`
	MinTempC          float64   `json:"mintemp_c"`
	AvgTempC          float64   `json:"avgtemp_c"`
	MaxWindKph        float64   `json:"maxwind_kph"`
	TotalPrecipMm     float64   `json:"totalprecip_mm"`
	AvgVisKm          float64   `json:"avgvis_km"`
	AvgHumidity       float64   `json:"avghumidity"`
	DailyChanceOfRain int       `json:"daily_chance_of_rain"`
	Condition         Condition `json:"condition"`
}

// Astro holds sun and moon times as local "hh:mm AM" strings
type Astro struct {
	Sunrise   string `json:"sunrise"`
	Sunset    string `json:"sunset"`
	Moonrise  string `json:"moonrise"`
	Moonset   string `json:"moonset"`
	MoonPhase string `json:"moon_phase"`
}

// ForecastDay is one day's aggregated weather record within a forecast
type ForecastDay struct {
	Date      string `json:"date"`
	DateEpoch int64  `json:"date_epoch"`
	Day       Day    `json:"day"`
	Astro     Astro  `json:"astro"`
}

// ForecastResponse is the forecast endpoint payload
type ForecastResponse struct {
	Location ForecastLocation `json:"location"`
	Current  Current          `json:"current"`
	Forecast struct {
		ForecastDay []ForecastDay `json:"forecastday"`
	} `json:"forecast"`
}

// Today returns the first forecast day, which the API always reports as today
func (f *ForecastResponse) Today() (ForecastDay, bool) {
	if f == nil || len(f.Forecast.ForecastDay) == 0 {
		return ForecastDay{}, false
	}
	return f.Forecast.ForecastDay[0], true
}

// Upcoming returns the days after today, i.e. the ones shown in the day picker
func (f *ForecastResponse) Upcoming() []ForecastDay {
	if f == nil || len(f.Forecast.ForecastDay) < 2 {
		return nil
	}
	return f.Forecast.ForecastDay[1:]
}
