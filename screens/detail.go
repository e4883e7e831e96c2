package screens

import (
	"fmt"

	"weather-app/models"
)

// DetailTitle is the header of the Detail screen, e.g. "Tomorrow Forecast"
func DetailTitle(labels DayLabeler, day models.ForecastDay) string {
	return labels.DayLabel(day) + " Forecast"
}

// DetailView is everything the Detail screen shows for one day.
// All of it comes from the navigation payload; nothing is fetched.
type DetailView struct {
	Title     string
	Date      string
	AvgTemp   string
	Condition string
	IconURL   string
	MaxWind   string
	Humidity  string // "Humidity / Visibility" block
	SunTimes  string // "Sunrise / Sunset" block
}

// NewDetailView formats day for display
func NewDetailView(day models.ForecastDay, labels DayLabeler) DetailView {
	return DetailView{
		Title:     DetailTitle(labels, day),
		Date:      day.Date,
		AvgTemp:   fmt.Sprintf("%g°C", day.Day.AvgTempC),
		Condition: day.Day.Condition.Text,
		IconURL:   day.Day.Condition.IconURL(),
		MaxWind:   fmt.Sprintf("Max Wind Speed - %gkm/h", day.Day.MaxWindKph),
		Humidity:  fmt.Sprintf("Humidity / Visibility\n%g%% / %gkm", day.Day.AvgHumidity, day.Day.AvgVisKm),
		SunTimes:  fmt.Sprintf("Sunrise / Sunset\n%s / %s", day.Astro.Sunrise, day.Astro.Sunset),
	}
}
