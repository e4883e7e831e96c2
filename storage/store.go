package storage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"weather-app/models"
)

// LocationKey is the single key the current location is stored under
const LocationKey = "current_location"

// LocationStore persists the last selected location.
//
// LoadLocation distinguishes the three outcomes a caller may care about:
// a saved value (found == true), nothing saved yet (found == false, err == nil)
// and a storage failure (err != nil). What to do with a failure is the caller's call.
type LocationStore interface {
	SaveLocation(ctx context.Context, loc models.Location) error
	LoadLocation(ctx context.Context) (loc models.Location, found bool, err error)
	Close() error
}

// Config selects and configures a store backend
type Config struct {
	Driver string // sqlite or file
	Path   string
	Logger *slog.Logger
}

// Open creates the store described by cfg
func Open(cfg Config) (LocationStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "sqlite":
		store, err := NewSQLite(cfg.Path, cfg.Logger)
		if err != nil {
			return nil, err
		}
		return store, nil
	case "file", "json":
		return NewFileStore(cfg.Path), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
