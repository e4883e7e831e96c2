// Package screens holds the state and behavior behind the Landing, Main and Detail screens.
package screens

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"weather-app/datasource"
	"weather-app/geolocation"
	"weather-app/models"
	"weather-app/navigation"
	"weather-app/notify"
	"weather-app/storage"
)

const (
	DefaultForecastDays = 5
	DefaultDebounce     = 300 * time.Millisecond
)

var (
	ErrNoSuchDay    = errors.New("no such forecast day")
	ErrNoSuchResult = errors.New("no such search result")
)

// MainState is a snapshot of everything the Main screen renders
type MainState struct {
	Query         string
	Results       []models.Location
	SearchPhase   Phase
	Location      *models.Location         // current location, nil until bootstrapped
	Forecast      *models.ForecastResponse // last successful forecast
	ForecastFor   *models.Location         // location Forecast was fetched for
	ForecastPhase Phase
	HasPermission bool

	// PermissionPhase is loading while the user is being asked for
	// location permission
	PermissionPhase Phase
}

// Loading reports whether a forecast request is outstanding
func (s MainState) Loading() bool {
	return s.ForecastPhase == PhaseLoading
}

// MainConfig tunes the Main screen
type MainConfig struct {
	Days     int           // forecast days to request, including today
	Debounce time.Duration // delay before a search request is sent; 0 sends immediately
}

// MainDeps are the collaborators of the Main screen
type MainDeps struct {
	Source   datasource.WeatherSource
	Store    storage.LocationStore
	Locator  geolocation.Locator
	Notifier notify.Notifier
	Nav      *navigation.Navigator
	Labels   *DayLabels
	Logger   *slog.Logger
}

// Main owns the Main screen state: search, current location, forecast and
// the device location action.
//
// Every request is tagged with a generation number. Starting a new request
// of the same kind bumps the generation and cancels the previous request's
// context, and a response is applied only if its generation is still current.
type Main struct {
	source   datasource.WeatherSource
	store    storage.LocationStore
	locator  geolocation.Locator
	notifier notify.Notifier
	nav      *navigation.Navigator
	labels   *DayLabels
	logger   *slog.Logger
	cfg      MainConfig

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu             sync.Mutex
	state          MainState
	mounted        bool
	closed         bool
	forecastGen    uint64
	forecastCancel context.CancelFunc
	searchGen      uint64
	searchCancel   context.CancelFunc
	debounce       *time.Timer
	listeners      []func()
}

// NewMain creates the Main screen controller
func NewMain(deps MainDeps, cfg MainConfig) *Main {
	if cfg.Days <= 0 {
		cfg.Days = DefaultForecastDays
	}
	if cfg.Debounce < 0 {
		cfg.Debounce = 0
	}
	if deps.Locator == nil {
		deps.Locator = geolocation.Disabled{}
	}
	if deps.Notifier == nil {
		deps.Notifier = &notify.Recorder{}
	}
	if deps.Labels == nil {
		deps.Labels = NewDayLabels(nil, ZoneDevice, nil, deps.Logger)
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}

	ctx, stop := context.WithCancel(context.Background())
	return &Main{
		source:   deps.Source,
		store:    deps.Store,
		locator:  deps.Locator,
		notifier: deps.Notifier,
		nav:      deps.Nav,
		labels:   deps.Labels,
		logger:   deps.Logger.With("component", "main-screen"),
		cfg:      cfg,
		ctx:      ctx,
		stop:     stop,
	}
}

// Subscribe registers fn to be called after every state change.
// fn runs on the goroutine that made the change and must not block.
func (m *Main) Subscribe(fn func()) {
	m.mu.Lock()
	m.listeners = append(m.listeners, fn)
	m.mu.Unlock()
}

func (m *Main) changed() {
	m.mu.Lock()
	listeners := make([]func(), len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, fn := range listeners {
		fn()
	}
}

// Snapshot returns a copy of the current state
func (m *Main) Snapshot() MainState {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.state
	if m.state.Results != nil {
		s.Results = make([]models.Location, len(m.state.Results))
		copy(s.Results, m.state.Results)
	}
	if m.state.Location != nil {
		loc := *m.state.Location
		s.Location = &loc
	}
	if m.state.ForecastFor != nil {
		loc := *m.state.ForecastFor
		s.ForecastFor = &loc
	}
	return s
}

// Mount runs the one-time bootstrap: restore the saved location (or fall
// back to the default city) and fetch its forecast. Location permission is
// requested in the background so the forecast never waits on the user.
func (m *Main) Mount(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return errors.New("main screen is closed")
	}
	if m.mounted {
		m.mu.Unlock()
		return nil
	}
	m.mounted = true
	hasLocation := m.state.Location != nil
	m.mu.Unlock()

	if !hasLocation {
		m.restoreLocation(ctx)
	}

	m.mu.Lock()
	if m.closed || m.state.PermissionPhase == PhaseLoading {
		m.mu.Unlock()
		return nil
	}
	m.state.PermissionPhase = PhaseLoading
	m.wg.Add(1)
	m.mu.Unlock()
	m.changed()

	go func() {
		defer m.wg.Done()
		m.askPermission(m.ctx)
	}()
	return nil
}

func (m *Main) restoreLocation(ctx context.Context) {
	loc, found, err := m.store.LoadLocation(ctx)
	if err != nil {
		m.logger.Warn("failed to load saved location", "error", err)
	}
	if err != nil || !found {
		loc = models.DefaultLocation
		m.persist(ctx, loc)
	}

	m.mu.Lock()
	// A selection made while storage was being read wins
	if m.state.Location == nil && !m.closed {
		m.setLocationLocked(loc)
	}
	m.mu.Unlock()
	m.changed()
}

// requestPermission asks for location permission unless a request is
// already waiting on the user
func (m *Main) requestPermission(ctx context.Context) bool {
	m.mu.Lock()
	if m.state.PermissionPhase == PhaseLoading {
		m.mu.Unlock()
		return false
	}
	m.state.PermissionPhase = PhaseLoading
	m.mu.Unlock()
	m.changed()

	return m.askPermission(ctx)
}

func (m *Main) askPermission(ctx context.Context) bool {
	phase := PhaseLoaded
	granted, err := m.locator.RequestPermission(ctx)
	if err != nil {
		if ctx.Err() == nil {
			m.logger.Warn("location permission request failed", "error", err)
		}
		granted = false
		phase = PhaseFailed
	}

	m.mu.Lock()
	m.state.HasPermission = granted
	m.state.PermissionPhase = phase
	m.mu.Unlock()
	m.changed()
	return granted
}

// SetQuery updates the search text. Non-empty text schedules a search
// after the debounce window; empty text cancels pending work and clears
// the results.
func (m *Main) SetQuery(text string) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.state.Query = text
	gen := m.cancelSearchLocked()

	query := strings.TrimSpace(text)
	if query == "" {
		m.state.Results = nil
		m.state.SearchPhase = PhaseIdle
		m.mu.Unlock()
		m.changed()
		return
	}

	m.state.SearchPhase = PhaseLoading
	if m.cfg.Debounce == 0 {
		m.startSearchLocked(gen, query)
	} else {
		m.debounce = time.AfterFunc(m.cfg.Debounce, func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if gen != m.searchGen || m.closed {
				return
			}
			m.debounce = nil
			m.startSearchLocked(gen, query)
		})
	}
	m.mu.Unlock()
	m.changed()
}

// ClearSearch empties the search text and results
func (m *Main) ClearSearch() {
	m.SetQuery("")
}

// cancelSearchLocked supersedes any pending or in-flight search and
// returns the new generation
func (m *Main) cancelSearchLocked() uint64 {
	m.searchGen++
	if m.debounce != nil {
		m.debounce.Stop()
		m.debounce = nil
	}
	if m.searchCancel != nil {
		m.searchCancel()
		m.searchCancel = nil
	}
	return m.searchGen
}

func (m *Main) startSearchLocked(gen uint64, query string) {
	ctx, cancel := context.WithCancel(m.ctx)
	m.searchCancel = cancel

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer cancel()

		results, err := m.source.SearchLocations(ctx, query)

		m.mu.Lock()
		if gen != m.searchGen {
			m.mu.Unlock()
			m.logger.Debug("discarding superseded search response", "query", query)
			return
		}
		m.searchCancel = nil
		if err != nil {
			m.logger.Warn("location search failed", "query", query, "error", err)
			m.state.Results = nil
			m.state.SearchPhase = PhaseFailed
		} else {
			m.state.Results = results
			m.state.SearchPhase = PhaseLoaded
		}
		m.mu.Unlock()
		m.changed()
	}()
}

// SelectResult makes the i-th search result the current location
func (m *Main) SelectResult(ctx context.Context, i int) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.state.Results) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %d", ErrNoSuchResult, i+1)
	}
	loc := m.state.Results[i]
	m.mu.Unlock()

	m.SelectLocation(ctx, loc)
	return nil
}

// SelectLocation makes loc the current location, clears the results,
// persists the choice and fetches its forecast
func (m *Main) SelectLocation(ctx context.Context, loc models.Location) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.cancelSearchLocked()
	m.state.Results = nil
	m.state.SearchPhase = PhaseIdle
	m.setLocationLocked(loc)
	m.mu.Unlock()
	m.changed()

	m.persist(ctx, loc)
}

// UseDeviceLocation replaces the current location with the device position.
// Without permission the user is told so and permission is requested again,
// unless the earlier request is still waiting for an answer.
func (m *Main) UseDeviceLocation(ctx context.Context) error {
	m.mu.Lock()
	hasPermission := m.state.HasPermission
	pending := m.state.PermissionPhase == PhaseLoading
	m.mu.Unlock()

	if !hasPermission {
		m.notifier.Notify(notify.Error(notify.MsgLocationPermission))
		if !pending {
			m.requestPermission(ctx)
		}
		return geolocation.ErrPermissionDenied
	}

	pos, err := m.locator.CurrentPosition(ctx)
	if err != nil {
		m.logger.Warn("failed to read device position", "error", err)
		m.notifier.Notify(notify.Error(notify.MsgLocationPermission))
		return fmt.Errorf("device position: %w", err)
	}

	m.SelectLocation(ctx, pos.Location())
	return nil
}

// setLocationLocked switches the current location and starts a forecast
// request for it, superseding any request still in flight
func (m *Main) setLocationLocked(loc models.Location) {
	m.state.Location = &loc

	m.forecastGen++
	gen := m.forecastGen
	if m.forecastCancel != nil {
		m.forecastCancel()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.forecastCancel = cancel
	m.state.ForecastPhase = PhaseLoading

	m.wg.Add(1)
	go m.fetchForecast(ctx, cancel, gen, loc)
}

func (m *Main) fetchForecast(ctx context.Context, cancel context.CancelFunc, gen uint64, loc models.Location) {
	defer m.wg.Done()
	defer cancel()

	start := time.Now()
	resp, err := m.source.FetchForecast(ctx, loc.Query(), m.cfg.Days)

	m.mu.Lock()
	if gen != m.forecastGen {
		m.mu.Unlock()
		m.logger.Debug("discarding superseded forecast response", "location", loc.Query())
		return
	}
	m.forecastCancel = nil

	if err != nil {
		m.state.ForecastPhase = PhaseFailed
		m.mu.Unlock()

		m.logger.Error("forecast request failed", "location", loc.Query(), "error", err)
		m.notifier.Notify(notify.Error(notify.MsgForecastFailed))
		m.changed()
		return
	}

	m.state.Forecast = resp
	m.state.ForecastFor = &loc
	m.state.ForecastPhase = PhaseLoaded
	m.mu.Unlock()

	m.logger.Info("forecast updated",
		"location", loc.Query(),
		"days", len(resp.Forecast.ForecastDay),
		"duration", time.Since(start),
	)
	m.changed()
}

// persist saves loc; failures are logged and otherwise ignored
func (m *Main) persist(ctx context.Context, loc models.Location) {
	if err := m.store.SaveLocation(ctx, loc); err != nil {
		m.logger.Warn("failed to save location", "location", loc.Query(), "error", err)
	}
}

// OpenDay opens the Detail screen for the i-th forecast day. Day 0 is
// today and is summarized on Main itself, so only 1..n-1 are accepted.
func (m *Main) OpenDay(i int) error {
	m.mu.Lock()
	var days []models.ForecastDay
	if m.state.Forecast != nil {
		days = m.state.Forecast.Upcoming()
	}
	m.mu.Unlock()

	if i < 1 || i > len(days) {
		return fmt.Errorf("%w: %d", ErrNoSuchDay, i)
	}
	return m.nav.OpenDetail(navigation.DetailParams{Forecast: days[i-1]})
}

// DayLabel labels day using the configured zone mode and the displayed forecast's location
func (m *Main) DayLabel(day models.ForecastDay) string {
	m.mu.Lock()
	var where *models.ForecastLocation
	if m.state.Forecast != nil {
		fl := m.state.Forecast.Location
		where = &fl
	}
	m.mu.Unlock()

	return m.labels.DayLabelAt(day, where)
}

// Close cancels in-flight requests and waits for them to return
func (m *Main) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	m.cancelSearchLocked()
	m.forecastGen++
	if m.forecastCancel != nil {
		m.forecastCancel()
		m.forecastCancel = nil
	}
	m.mu.Unlock()

	m.stop()
	m.wg.Wait()
}
