package models

import "time"

// ZoomLevel is a named timeline resolution for the Gantt view.
type ZoomLevel string

const (
	ZoomHour ZoomLevel = "hour"
	ZoomDay  ZoomLevel = "day"
	ZoomWeek ZoomLevel = "week"
)

// ValidZoom reports whether z names a known zoom level.
func ValidZoom(z ZoomLevel) bool {
	switch z {
	case ZoomHour, ZoomDay, ZoomWeek:
		return true
	}
	return false
}

// TimelineProjection maps an absolute time window onto a pixel
// coordinate space for one zoom level.
type TimelineProjection struct {
	Zoom            ZoomLevel   `json:"zoom"`
	WindowStart     time.Time   `json:"window_start"`
	WindowEnd       time.Time   `json:"window_end"`
	PixelsPerMinute float64     `json:"pixels_per_minute"`
	Ticks           []time.Time `json:"ticks"`
}
