package screens

import (
	"context"
	"fmt"
	"io"
	"time"

	"weather-app/navigation"
)

// DefaultLandingDuration is how long the intro plays before Main is shown
const DefaultLandingDuration = 1500 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Landing plays the intro animation and then moves on to Main
type Landing struct {
	out      io.Writer
	nav      *navigation.Navigator
	duration time.Duration
	interval time.Duration
}

// NewLanding creates the intro screen
func NewLanding(out io.Writer, nav *navigation.Navigator, duration time.Duration) *Landing {
	if duration <= 0 {
		duration = DefaultLandingDuration
	}
	return &Landing{
		out:      out,
		nav:      nav,
		duration: duration,
		interval: 80 * time.Millisecond,
	}
}

// Run animates until the duration elapses, then enters Main.
// It returns ctx.Err() if ctx ends first.
func (l *Landing) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	done := time.NewTimer(l.duration)
	defer done.Stop()

	frame := 0
	l.draw(frame)
	for {
		select {
		case <-ctx.Done():
			fmt.Fprint(l.out, "\r\x1b[K")
			return ctx.Err()
		case <-ticker.C:
			frame++
			l.draw(frame)
		case <-done.C:
			fmt.Fprint(l.out, "\r\x1b[K")
			return l.nav.EnterMain()
		}
	}
}

func (l *Landing) draw(frame int) {
	fmt.Fprintf(l.out, "\r%s Weather", spinnerFrames[frame%len(spinnerFrames)])
}
