package terminal

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"weather-app/datelabel"
	"weather-app/geolocation"
	"weather-app/models"
	"weather-app/navigation"
	"weather-app/notify"
	"weather-app/screens"
	"weather-app/storage"
)

var now = time.Date(2026, 10, 15, 9, 0, 0, 0, time.UTC)

type stubSource struct {
	results map[string][]models.Location
}

func (s *stubSource) Name() string { return "stub" }

func (s *stubSource) SearchLocations(_ context.Context, q string) ([]models.Location, error) {
	return s.results[q], nil
}

func (s *stubSource) FetchForecast(_ context.Context, q string, days int) (*models.ForecastResponse, error) {
	resp := &models.ForecastResponse{}
	resp.Location.Name = "Place " + q
	resp.Location.Country = "Testland"
	resp.Current.TempC = 21.5
	resp.Current.Condition.Text = "Sunny"
	resp.Current.WindKph = 11
	resp.Current.Humidity = 64
	resp.Current.PressureIn = 30.1
	for i := 0; i < days; i++ {
		d := time.Date(2026, 10, 15+i, 0, 0, 0, 0, time.UTC)
		resp.Forecast.ForecastDay = append(resp.Forecast.ForecastDay, models.ForecastDay{
			Date:      d.Format("2006-01-02"),
			DateEpoch: d.Unix(),
			Day:       models.Day{AvgTempC: float64(10 + i), MaxWindKph: 20, AvgHumidity: 70, AvgVisKm: 10},
			Astro:     models.Astro{Sunrise: "07:01 AM", Sunset: "06:12 PM"},
		})
	}
	return resp, nil
}

// safeBuffer is a bytes.Buffer safe for the concurrent writes the app makes
type safeBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *safeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *safeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type session struct {
	in   *io.PipeWriter
	out  *safeBuffer
	done chan error
	main *screens.Main
}

func startSession(t *testing.T, source *stubSource) *session {
	t.Helper()

	pr, pw := io.Pipe()
	out := &safeBuffer{}
	w := SyncWriter(out)

	nav := navigation.New()
	labeler := datelabel.New(datelabel.WithClock(func() time.Time { return now }), datelabel.WithZone(time.UTC))
	main := screens.NewMain(screens.MainDeps{
		Source:   source,
		Store:    storage.NewFileStore(filepath.Join(t.TempDir(), "location.json")),
		Locator:  geolocation.Disabled{},
		Notifier: notify.NewWriter(w, false),
		Nav:      nav,
		Labels:   screens.NewDayLabels(labeler, screens.ZoneDevice, nil, nil),
	}, screens.MainConfig{Days: 3})
	t.Cleanup(main.Close)

	app := New(Options{
		Input:   NewInput(pr),
		Out:     w,
		Nav:     nav,
		Main:    main,
		Landing: screens.NewLanding(w, nav, time.Millisecond),
	})

	s := &session{in: pw, out: out, done: make(chan error, 1), main: main}
	go func() { s.done <- app.Run(context.Background()) }()
	t.Cleanup(func() { pw.Close() })
	return s
}

func (s *session) send(t *testing.T, line string) {
	t.Helper()
	if _, err := io.WriteString(s.in, line+"\n"); err != nil {
		t.Fatalf("write %q: %v", line, err)
	}
}

func (s *session) waitOutput(t *testing.T, want string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(s.out.String(), want) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %q in output:\n%s", want, s.out.String())
}

func TestApp_Session(t *testing.T) {
	london := models.Location{ID: 2801268, Name: "London", Region: "City of London, Greater London", Country: "United Kingdom", Lat: 51.52, Lon: -0.11}
	s := startSession(t, &stubSource{results: map[string][]models.Location{"Lon": {london}}})

	// Bootstraps with the default location
	s.waitOutput(t, "Place 40.71,-74.01, Testland")
	s.waitOutput(t, "Tomorrow")
	s.waitOutput(t, "Humidity / Pressure\n64% / 30.1inHg")

	s.send(t, "day 1")
	s.waitOutput(t, "Tomorrow Forecast")
	s.waitOutput(t, "Max Wind Speed - 20km/h")

	s.send(t, "search Lon")
	s.waitOutput(t, "Type 'back' to return to the forecast.")

	s.send(t, "back")
	s.send(t, "search Lon")
	s.waitOutput(t, "1. London, City of London, Greater London, United Kingdom")

	s.send(t, "pick 1")
	s.waitOutput(t, "Place 51.52,-0.11, Testland")

	s.send(t, "day 0")
	s.waitOutput(t, "no such forecast day")

	s.send(t, "frobnicate")
	s.waitOutput(t, `Unknown command "frobnicate"`)

	s.send(t, "quit")
	select {
	case err := <-s.done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after quit")
	}
}

func TestApp_DeviceLocationDenied(t *testing.T) {
	s := startSession(t, &stubSource{})
	s.waitOutput(t, "Place 40.71,-74.01")

	s.send(t, "here")
	s.waitOutput(t, "[!] "+notify.MsgLocationPermission)

	s.in.Close()
	select {
	case err := <-s.done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return at end of input")
	}
}

func TestInput_Prompter(t *testing.T) {
	tests := []struct {
		input   string
		want    bool
		wantErr bool
	}{
		{"y\n", true, false},
		{" YES \n", true, false},
		{"n\n", false, false},
		{"\n", false, false},
		{"", false, true},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		prompt := NewInput(strings.NewReader(tt.input)).Prompter(&out)

		got, err := prompt(context.Background(), "Allow?")
		if (err != nil) != tt.wantErr {
			t.Errorf("input %q: error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("input %q: got %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Allow? [y/N] " {
			t.Errorf("prompt = %q", out.String())
		}
	}
}

func TestInput_PromptTakesNextLine(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := NewInput(pr)
	out := &safeBuffer{}

	// The UI loop keeps reading lines while the question is open
	lines := make(chan string, 2)
	go func() {
		for line := range in.Lines() {
			lines <- line
		}
	}()

	type answer struct {
		ok  bool
		err error
	}
	answers := make(chan answer, 1)
	go func() {
		ok, err := in.Prompter(out)(context.Background(), "Allow?")
		answers <- answer{ok, err}
	}()

	deadline := time.Now().Add(2 * time.Second)
	for !strings.Contains(out.String(), "Allow? [y/N] ") {
		if time.Now().After(deadline) {
			t.Fatal("question was never asked")
		}
		time.Sleep(5 * time.Millisecond)
	}

	io.WriteString(pw, "yes\nsearch Lon\n")
	select {
	case a := <-answers:
		if a.err != nil || !a.ok {
			t.Errorf("prompt = %v, %v, want true", a.ok, a.err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("prompt never got its answer")
	}

	select {
	case line := <-lines:
		if line != "search Lon" {
			t.Errorf("UI loop got %q, want the line after the answer", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("UI loop never got the next line")
	}
}

func TestInput_PromptCancelled(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	in := NewInput(pr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := in.Prompter(io.Discard)(ctx, "Allow?"); err != context.Canceled {
		t.Fatalf("prompt error = %v, want context.Canceled", err)
	}

	// With no question open the line goes to the UI loop
	go io.WriteString(pw, "help\n")
	select {
	case line := <-in.Lines():
		if line != "help" {
			t.Errorf("got %q, want help", line)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("line was not delivered")
	}
}

func TestRenderMain(t *testing.T) {
	label := func(models.ForecastDay) string { return "Someday" }
	tests := []struct {
		name    string
		state   screens.MainState
		want    []string
		notWant []string
	}{
		{
			name:  "no matches",
			state: screens.MainState{Query: "zzz", SearchPhase: screens.PhaseLoaded, ForecastPhase: screens.PhaseLoading},
			want:  []string{`Search: "zzz"`, "  no matches", "Loading forecast..."},
		},
		{
			name:    "search failed",
			state:   screens.MainState{Query: "Lon", SearchPhase: screens.PhaseFailed},
			want:    []string{"  search failed", "No forecast yet"},
			notWant: []string{"no matches"},
		},
		{
			name:    "search in flight",
			state:   screens.MainState{Query: "Lon", SearchPhase: screens.PhaseLoading},
			want:    []string{`Search: "Lon" (searching...)`},
			notWant: []string{"no matches", "search failed"},
		},
		{
			name: "permission denied",
			state: screens.MainState{
				Forecast:        &models.ForecastResponse{Location: models.ForecastLocation{Name: "Paris", Country: "France"}},
				PermissionPhase: screens.PhaseLoaded,
			},
			want: []string{"Paris, France", "(device location unavailable)"},
		},
		{
			name: "permission question open",
			state: screens.MainState{
				Forecast:        &models.ForecastResponse{Location: models.ForecastLocation{Name: "Paris", Country: "France"}},
				ForecastPhase:   screens.PhaseLoading,
				PermissionPhase: screens.PhaseLoading,
			},
			want:    []string{"Paris, France", "(updating...)"},
			notWant: []string{"device location unavailable"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			RenderMain(&buf, tt.state, label)
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, bad := range tt.notWant {
				if strings.Contains(out, bad) {
					t.Errorf("output should not contain %q:\n%s", bad, out)
				}
			}
		})
	}
}

func TestRenderDetail(t *testing.T) {
	var buf bytes.Buffer
	RenderDetail(&buf, screens.DetailView{
		Title:    "Sat Forecast",
		Date:     "2026-10-17",
		AvgTemp:  "12°C",
		MaxWind:  "Max Wind Speed - 20km/h",
		Humidity: "Humidity / Visibility\n70% / 10km",
		SunTimes: "Sunrise / Sunset\n07:05 AM / 06:12 PM",
	})

	out := buf.String()
	for _, want := range []string{"Sat Forecast\n", "Average:    12°C", "Max Wind Speed - 20km/h", "07:05 AM / 06:12 PM"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
