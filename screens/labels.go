package screens

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"weather-app/datelabel"
	"weather-app/models"
	"weather-app/timezone"
)

// LabelZone selects which clock day boundaries follow
type LabelZone string

const (
	ZoneDevice   LabelZone = "device"
	ZoneLocation LabelZone = "location"
)

// ParseLabelZone validates a configured zone mode
func ParseLabelZone(s string) (LabelZone, error) {
	switch z := LabelZone(strings.ToLower(strings.TrimSpace(s))); z {
	case "", ZoneDevice:
		return ZoneDevice, nil
	case ZoneLocation:
		return ZoneLocation, nil
	default:
		return "", fmt.Errorf("unknown label timezone %q (want device or location)", s)
	}
}

// DayLabeler produces the short label for a forecast day
type DayLabeler interface {
	DayLabel(day models.ForecastDay) string
}

// DayLabels labels forecast days in either the device zone or the forecast location's zone
type DayLabels struct {
	labeler *datelabel.Labeler
	mode    LabelZone
	tz      timezone.Service // coordinate fallback, only needed in location mode
	logger  *slog.Logger

	mu    sync.Mutex
	zones map[string]*time.Location
}

var _ DayLabeler = (*DayLabels)(nil)

// NewDayLabels creates a day labeler. tz may be nil.
func NewDayLabels(labeler *datelabel.Labeler, mode LabelZone, tz timezone.Service, logger *slog.Logger) *DayLabels {
	if labeler == nil {
		labeler = datelabel.New()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DayLabels{
		labeler: labeler,
		mode:    mode,
		tz:      tz,
		logger:  logger,
		zones:   make(map[string]*time.Location),
	}
}

// DayLabel labels day in the device zone
func (d *DayLabels) DayLabel(day models.ForecastDay) string {
	return d.labeler.Label(day.DateEpoch)
}

// DayLabelAt labels day for a forecast belonging to where. In device mode, or
// when no zone can be resolved, the device zone is used.
func (d *DayLabels) DayLabelAt(day models.ForecastDay, where *models.ForecastLocation) string {
	if d.mode != ZoneLocation || where == nil {
		return d.labeler.Label(day.DateEpoch)
	}
	return d.labeler.LabelIn(day.DateEpoch, d.zoneFor(where))
}

func (d *DayLabels) zoneFor(where *models.ForecastLocation) *time.Location {
	d.mu.Lock()
	defer d.mu.Unlock()

	key := where.TzID
	if key == "" {
		key = fmt.Sprintf("%.4f,%.4f", where.Lat, where.Lon)
	}
	if zone, ok := d.zones[key]; ok {
		return zone
	}

	var zone *time.Location
	if where.TzID != "" {
		loaded, err := time.LoadLocation(where.TzID)
		if err == nil {
			zone = loaded
		} else {
			d.logger.Warn("unknown tz_id in forecast", "tz_id", where.TzID, "error", err)
		}
	}
	if zone == nil && d.tz != nil {
		resolved, err := d.tz.Location(where.Lat, where.Lon)
		if err == nil {
			zone = resolved
		} else {
			d.logger.Warn("timezone lookup failed", "lat", where.Lat, "lon", where.Lon, "error", err)
		}
	}

	// nil makes the labeler fall back to the device zone
	if zone != nil {
		d.zones[key] = zone
	}
	return zone
}
