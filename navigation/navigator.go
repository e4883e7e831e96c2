// Package navigation owns the Landing → Main ⇄ Detail route stack.
package navigation

import (
	"errors"
	"fmt"
	"sync"

	"weather-app/models"
)

// Route names a screen
type Route int

const (
	Landing Route = iota
	Main
	Detail
)

func (r Route) String() string {
	switch r {
	case Landing:
		return "Landing"
	case Main:
		return "Main"
	case Detail:
		return "Detail"
	default:
		return fmt.Sprintf("Route(%d)", int(r))
	}
}

var (
	ErrInvalidTransition = errors.New("invalid navigation transition")
	ErrMissingPayload    = errors.New("detail route requires a forecast day")
)

// DetailParams is the payload the Detail route is opened with
type DetailParams struct {
	Forecast models.ForecastDay
}

// Listener is notified after every successful transition
type Listener func(from, to Route)

// Navigator is a small route stack. Only the transitions of the app's
// screen graph are accepted.
type Navigator struct {
	mu        sync.RWMutex
	stack     []Route
	params    *DetailParams
	listeners []Listener
}

// New creates a navigator positioned at Landing
func New() *Navigator {
	return &Navigator{stack: []Route{Landing}}
}

// Current returns the route on top of the stack
func (n *Navigator) Current() Route {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.stack[len(n.stack)-1]
}

// Params returns the Detail payload while Detail is shown
func (n *Navigator) Params() (DetailParams, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.params == nil {
		return DetailParams{}, false
	}
	return *n.params, true
}

// Subscribe registers fn for route changes
func (n *Navigator) Subscribe(fn Listener) {
	n.mu.Lock()
	n.listeners = append(n.listeners, fn)
	n.mu.Unlock()
}

// EnterMain replaces Landing with Main. There is no way back to Landing.
func (n *Navigator) EnterMain() error {
	return n.transition(Landing, func() Route {
		n.stack = []Route{Main}
		return Main
	})
}

// OpenDetail pushes Detail on top of Main
func (n *Navigator) OpenDetail(p DetailParams) error {
	if p.Forecast.DateEpoch == 0 {
		return ErrMissingPayload
	}
	return n.transition(Main, func() Route {
		n.stack = append(n.stack, Detail)
		n.params = &p
		return Detail
	})
}

// Back pops Detail and returns to Main
func (n *Navigator) Back() error {
	return n.transition(Detail, func() Route {
		n.stack = n.stack[:len(n.stack)-1]
		n.params = nil
		return Main
	})
}

func (n *Navigator) transition(from Route, apply func() Route) error {
	n.mu.Lock()
	current := n.stack[len(n.stack)-1]
	if current != from {
		n.mu.Unlock()
		return fmt.Errorf("%w: from %s", ErrInvalidTransition, current)
	}
	to := apply()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.Unlock()

	for _, fn := range listeners {
		fn(from, to)
	}
	return nil
}
