package datasource

import (
	"context"
	"sync"
	"testing"
	"time"

	"weather-app/models"
)

// mockWeatherSource simulates latency and counts calls
type mockWeatherSource struct {
	mutex     sync.Mutex
	searches  int
	forecasts int
	latency   time.Duration
}

func (m *mockWeatherSource) SearchLocations(ctx context.Context, query string) ([]models.Location, error) {
	m.mutex.Lock()
	m.searches++
	m.mutex.Unlock()

	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []models.Location{{Name: query}}, nil
}

func (m *mockWeatherSource) FetchForecast(ctx context.Context, location string, days int) (*models.ForecastResponse, error) {
	m.mutex.Lock()
	m.forecasts++
	m.mutex.Unlock()

	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return &models.ForecastResponse{}, nil
}

func (m *mockWeatherSource) Name() string {
	return "MockSource"
}

func (m *mockWeatherSource) counts() (int, int) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	return m.searches, m.forecasts
}

func TestRateLimitedSourceName(t *testing.T) {
	r := NewRateLimitedSource(&mockWeatherSource{}, 1, 1, 1)
	if got := r.Name(); got != "MockSource [Rate Limited]" {
		t.Errorf("Name() = %q", got)
	}
}

func TestRateLimitedSourceThrottles(t *testing.T) {
	mock := &mockWeatherSource{}
	// 20 rps with a burst of 2: the 3rd and 4th calls wait ~50ms each
	r := NewRateLimitedSource(mock, 20, 20, 2)

	start := time.Now()
	for i := 0; i < 4; i++ {
		if _, err := r.FetchForecast(context.Background(), "1,2", 5); err != nil {
			t.Fatalf("request %d failed: %v", i, err)
		}
	}
	elapsed := time.Since(start)

	if elapsed < 80*time.Millisecond {
		t.Errorf("expected rate limiting to spread requests, took only %v", elapsed)
	}
	if _, forecasts := mock.counts(); forecasts != 4 {
		t.Errorf("expected 4 forwarded forecasts, got %d", forecasts)
	}
}

func TestRateLimitedSourceSeparateLimiters(t *testing.T) {
	mock := &mockWeatherSource{}
	// A drained forecast limiter must not hold back searches
	r := NewRateLimitedSource(mock, 1000, 0.001, 1)

	if _, err := r.FetchForecast(context.Background(), "1,2", 5); err != nil {
		t.Fatalf("first forecast failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := r.SearchLocations(context.Background(), "par"); err != nil {
			t.Fatalf("search %d failed: %v", i, err)
		}
	}

	searches, forecasts := mock.counts()
	if searches != 3 || forecasts != 1 {
		t.Errorf("unexpected call counts: searches=%d forecasts=%d", searches, forecasts)
	}
}

func TestRateLimitedSourceContextCancelled(t *testing.T) {
	mock := &mockWeatherSource{}
	r := NewRateLimitedSource(mock, 0.001, 0.001, 1)

	// Use the only token
	if _, err := r.SearchLocations(context.Background(), "a"); err != nil {
		t.Fatalf("first search failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.SearchLocations(ctx, "b")
	if err == nil {
		t.Fatal("expected rate limit wait to fail")
	}
	if searches, _ := mock.counts(); searches != 1 {
		t.Errorf("throttled call must not reach the source, got %d calls", searches)
	}
}
