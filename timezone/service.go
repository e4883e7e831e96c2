package timezone

import (
	"fmt"
	"sync"
	"time"

	"github.com/ringsaturn/tzf"
)

// Service provides timezone lookup by coordinates
type Service interface {
	GetTimezone(latitude, longitude float64) (string, error)
	Location(latitude, longitude float64) (*time.Location, error)
}

// service implements timezone lookup using tzf
type service struct {
	finder tzf.F
	mu     sync.RWMutex
	zones  map[string]*time.Location
}

var (
	instance *service
	initErr  error
	once     sync.Once
)

// NewService creates or returns the singleton timezone service.
// tzf.Finder loads its polygon data into memory, so there is only ever one.
func NewService() (Service, error) {
	once.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		instance = &service{
			finder: finder,
			zones:  make(map[string]*time.Location),
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// GetTimezone returns the IANA timezone name for the given coordinates
func (s *service) GetTimezone(latitude, longitude float64) (string, error) {
	// tzf takes longitude first
	name := s.finder.GetTimezoneName(longitude, latitude)
	if name == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", latitude, longitude)
	}
	return name, nil
}

// Location resolves the coordinates to a loaded *time.Location
func (s *service) Location(latitude, longitude float64) (*time.Location, error) {
	name, err := s.GetTimezone(latitude, longitude)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	zone, ok := s.zones[name]
	s.mu.RUnlock()
	if ok {
		return zone, nil
	}

	zone, err = time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %s: %w", name, err)
	}

	s.mu.Lock()
	s.zones[name] = zone
	s.mu.Unlock()
	return zone, nil
}
