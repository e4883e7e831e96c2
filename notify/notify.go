// Package notify delivers short user-visible messages (toasts).
package notify

import (
	"fmt"
	"io"
	"sync"
)

// User-visible messages
const (
	MsgForecastFailed     = "Failed to load new forecast"
	MsgLocationPermission = "Please grant permission to use your location"
)

// Level is the severity of a toast
type Level int

const (
	LevelInfo Level = iota
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Toast is a single transient message
type Toast struct {
	Level Level
	Text  string
}

// Error is a shorthand for an error-level toast
func Error(text string) Toast {
	return Toast{Level: LevelError, Text: text}
}

// Notifier shows toasts to the user
type Notifier interface {
	Notify(t Toast)
}

// Writer prints each toast as one highlighted line
type Writer struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

var _ Notifier = (*Writer)(nil)

// NewWriter creates a terminal notifier. With color enabled the line is
// wrapped in ANSI reverse video.
func NewWriter(out io.Writer, color bool) *Writer {
	return &Writer{out: out, color: color}
}

// Notify writes the toast
func (w *Writer) Notify(t Toast) {
	w.mu.Lock()
	defer w.mu.Unlock()

	prefix := "!"
	if t.Level == LevelInfo {
		prefix = "i"
	}
	if w.color {
		fmt.Fprintf(w.out, "\x1b[7m %s %s \x1b[0m\n", prefix, t.Text)
		return
	}
	fmt.Fprintf(w.out, "[%s] %s\n", prefix, t.Text)
}

// Recorder keeps every toast in memory
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

var _ Notifier = (*Recorder)(nil)

// Notify records the toast
func (r *Recorder) Notify(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of the recorded toasts
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}

// Count returns how many toasts with the given text were recorded
func (r *Recorder) Count(text string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, t := range r.toasts {
		if t.Text == text {
			n++
		}
	}
	return n
}
