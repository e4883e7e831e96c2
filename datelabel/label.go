// Package datelabel turns forecast day timestamps into the short labels shown in the day strip and detail title.
package datelabel

import "time"

const (
	Today    = "Today"
	Tomorrow = "Tomorrow"
)

// Labeler labels epoch timestamps relative to the current calendar day
type Labeler struct {
	now  func() time.Time
	zone *time.Location
}

// Option configures a Labeler
type Option func(*Labeler)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(l *Labeler) { l.now = now }
}

// WithZone sets the zone day boundaries are evaluated in (default: time.Local)
func WithZone(zone *time.Location) Option {
	return func(l *Labeler) {
		if zone != nil {
			l.zone = zone
		}
	}
}

// New creates a labeler evaluating day boundaries in the device's local zone
func New(opts ...Option) *Labeler {
	l := &Labeler{now: time.Now, zone: time.Local}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Label returns "Today", "Tomorrow" or the weekday abbreviation for epoch seconds
func (l *Labeler) Label(epoch int64) string {
	return l.LabelIn(epoch, l.zone)
}

// LabelIn is Label evaluated in an explicit zone; a nil zone falls back to the labeler's own
func (l *Labeler) LabelIn(epoch int64, zone *time.Location) string {
	if zone == nil {
		zone = l.zone
	}

	now := l.now().In(zone)
	date := time.Unix(epoch, 0).In(zone)

	// AddDate walks the calendar, so 23h and 25h DST days still land on the next date
	tomorrow := now.AddDate(0, 0, 1)

	switch {
	case sameDay(date, now):
		return Today
	case sameDay(date, tomorrow):
		return Tomorrow
	default:
		return date.Weekday().String()[:3]
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
