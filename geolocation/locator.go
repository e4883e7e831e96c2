// Package geolocation supplies the device position used by the "use my location" action.
package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"weather-app/models"

	"resty.dev/v3"
)

// DefaultIPLookupURL is the IP geolocation endpoint used when none is configured
const DefaultIPLookupURL = "http://ip-api.com/json/"

// ErrPermissionDenied is returned when a position is requested without consent
var ErrPermissionDenied = errors.New("location permission denied")

// Locator provides consent handling and position readings
type Locator interface {
	RequestPermission(ctx context.Context) (bool, error)
	CurrentPosition(ctx context.Context) (models.Coordinates, error)
}

// Prompter asks the user a yes/no question
type Prompter func(ctx context.Context, question string) (bool, error)

// PermissionQuestion is the prompt shown before the first position lookup
const PermissionQuestion = "Allow this app to use your approximate location?"

// IPLocator approximates the device position from its public IP address
type IPLocator struct {
	rc     *resty.Client
	url    string
	prompt Prompter
	logger *slog.Logger

	mu      sync.Mutex
	granted bool
}

var _ Locator = (*IPLocator)(nil)

// NewIPLocator creates a locator querying lookupURL. prompt is asked for consent.
func NewIPLocator(lookupURL string, timeout time.Duration, prompt Prompter, logger *slog.Logger) *IPLocator {
	if lookupURL == "" {
		lookupURL = DefaultIPLookupURL
	}
	if logger == nil {
		logger = slog.Default()
	}
	rc := resty.New().SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &IPLocator{
		rc:     rc,
		url:    lookupURL,
		prompt: prompt,
		logger: logger.With("component", "geolocation"),
	}
}

// RequestPermission asks for consent. Once granted it is not asked again.
func (l *IPLocator) RequestPermission(ctx context.Context) (bool, error) {
	l.mu.Lock()
	granted := l.granted
	l.mu.Unlock()
	if granted {
		return true, nil
	}
	if l.prompt == nil {
		return false, nil
	}

	ok, err := l.prompt(ctx, PermissionQuestion)
	if err != nil {
		return false, fmt.Errorf("permission prompt: %w", err)
	}

	l.mu.Lock()
	l.granted = ok
	l.mu.Unlock()
	return ok, nil
}

type ipLookupResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// CurrentPosition looks up the position for the current public IP
func (l *IPLocator) CurrentPosition(ctx context.Context) (models.Coordinates, error) {
	l.mu.Lock()
	granted := l.granted
	l.mu.Unlock()
	if !granted {
		return models.Coordinates{}, ErrPermissionDenied
	}

	var body ipLookupResponse
	resp, err := l.rc.R().
		SetContext(ctx).
		SetQueryParam("fields", "status,message,lat,lon").
		Get(l.url)
	if err != nil {
		return models.Coordinates{}, fmt.Errorf("ip lookup: %w", err)
	}
	if resp.IsError() {
		return models.Coordinates{}, fmt.Errorf("ip lookup: unexpected status %d", resp.StatusCode())
	}
	if err := json.Unmarshal(resp.Bytes(), &body); err != nil {
		return models.Coordinates{}, fmt.Errorf("ip lookup: failed to parse response: %w", err)
	}
	if !strings.EqualFold(body.Status, "success") {
		return models.Coordinates{}, fmt.Errorf("ip lookup failed: %s", body.Message)
	}

	l.logger.Debug("resolved device position", "lat", body.Lat, "lon", body.Lon)
	return models.Coordinates{Lat: body.Lat, Lon: body.Lon}, nil
}

// Close releases the HTTP client
func (l *IPLocator) Close() error {
	return l.rc.Close()
}

// StaticLocator reports a fixed position
type StaticLocator struct {
	Position models.Coordinates
	Allow    bool
}

var _ Locator = StaticLocator{}

func (s StaticLocator) RequestPermission(context.Context) (bool, error) {
	return s.Allow, nil
}

func (s StaticLocator) CurrentPosition(context.Context) (models.Coordinates, error) {
	if !s.Allow {
		return models.Coordinates{}, ErrPermissionDenied
	}
	return s.Position, nil
}

// Disabled never grants permission
type Disabled struct{}

var _ Locator = Disabled{}

func (Disabled) RequestPermission(context.Context) (bool, error) { return false, nil }

func (Disabled) CurrentPosition(context.Context) (models.Coordinates, error) {
	return models.Coordinates{}, ErrPermissionDenied
}
