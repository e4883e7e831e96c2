package terminal

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"text/tabwriter"

	"weather-app/models"
	"weather-app/screens"
)

const rule = "────────────────────────────────────────"

// LabelFunc labels a forecast day, e.g. "Tomorrow"
type LabelFunc func(day models.ForecastDay) string

// RenderMain writes the Main screen for state
func RenderMain(w io.Writer, state screens.MainState, label LabelFunc) {
	if state.Query != "" {
		fmt.Fprintf(w, "Search: %q", state.Query)
		if state.SearchPhase == screens.PhaseLoading {
			fmt.Fprint(w, " (searching...)")
		}
		fmt.Fprintln(w)
		for i, loc := range state.Results {
			fmt.Fprintf(w, "  %d. %s\n", i+1, loc.DisplayName())
		}
		if state.SearchPhase.Done() && len(state.Results) == 0 {
			if state.SearchPhase == screens.PhaseFailed {
				fmt.Fprintln(w, "  search failed")
			} else {
				fmt.Fprintln(w, "  no matches")
			}
		}
		fmt.Fprintln(w, rule)
	}

	if state.Forecast == nil {
		if state.Loading() {
			fmt.Fprintln(w, "Loading forecast...")
		} else {
			fmt.Fprintln(w, "No forecast yet")
		}
		return
	}

	RenderForecast(w, state.Forecast, label)
	if state.Loading() {
		fmt.Fprintln(w, "(updating...)")
	}
	if state.PermissionPhase.Done() && !state.HasPermission {
		fmt.Fprintln(w, "(device location unavailable)")
	}
}

// RenderForecast writes the location header, the day strip and today's summary
func RenderForecast(w io.Writer, f *models.ForecastResponse, label LabelFunc) {
	fmt.Fprintf(w, "%s\n", locationTitle(f.Location))
	fmt.Fprintf(w, "%g°C  %s\n", f.Current.TempC, f.Current.Condition.Text)
	fmt.Fprintln(w, rule)

	if days := f.Upcoming(); len(days) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		for i, day := range days {
			fmt.Fprintf(tw, "  [%d]\t%s\t%g°C\t%s\n", i+1, label(day), day.Day.AvgTempC, day.Day.Condition.Text)
		}
		tw.Flush()
		fmt.Fprintln(w, rule)
	}

	fmt.Fprintf(w, "Wind Speed - %gkm/h\n", f.Current.WindKph)
	fmt.Fprintf(w, "Humidity / Pressure\n%d%% / %ginHg\n", f.Current.Humidity, f.Current.PressureIn)
	if today, ok := f.Today(); ok {
		fmt.Fprintf(w, "Sunrise / Sunset\n%s / %s\n", today.Astro.Sunrise, today.Astro.Sunset)
	}
}

func locationTitle(l models.ForecastLocation) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{l.Name, l.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return fmt.Sprintf("%.2f, %.2f", l.Lat, l.Lon)
	}
	return strings.Join(parts, ", ")
}

// RenderDetail writes the Detail screen
func RenderDetail(w io.Writer, v screens.DetailView) {
	fmt.Fprintln(w, v.Title)
	fmt.Fprintln(w, rule)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Date:\t%s\n", v.Date)
	fmt.Fprintf(tw, "Average:\t%s\n", v.AvgTemp)
	fmt.Fprintf(tw, "Condition:\t%s\n", v.Condition)
	fmt.Fprintf(tw, "Icon:\t%s\n", v.IconURL)
	tw.Flush()

	fmt.Fprintln(w, v.MaxWind)
	fmt.Fprintln(w, v.Humidity)
	fmt.Fprintln(w, v.SunTimes)
}

// syncWriter serializes writes from the UI loop and async toasts
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// SyncWriter wraps w so concurrent writers do not interleave within a Write
func SyncWriter(w io.Writer) io.Writer {
	if sw, ok := w.(*syncWriter); ok {
		return sw
	}
	return &syncWriter{w: w}
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// frame renders into a buffer so a whole screen reaches the terminal in one write
func frame(w io.Writer, draw func(io.Writer)) {
	var buf bytes.Buffer
	draw(&buf)
	w.Write(buf.Bytes())
}
