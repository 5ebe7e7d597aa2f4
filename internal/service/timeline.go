package service

import (
	"time"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
	appErrors "github.com/oriel-mfg/factory-ops-api/pkg/errors"
)

// screenWidthPixels is the design width one zoom window maps onto.
// Every zoom's pixels-per-minute constant is derived from it, so a
// full window always spans the same horizontal extent.
const screenWidthPixels = 1440.0

type zoomSpec struct {
	window time.Duration
	tick   time.Duration
}

var zoomSpecs = map[models.ZoomLevel]zoomSpec{
	models.ZoomHour: {window: 24 * time.Hour, tick: time.Hour},
	models.ZoomDay:  {window: 7 * 24 * time.Hour, tick: 24 * time.Hour},
	models.ZoomWeek: {window: 28 * 24 * time.Hour, tick: 7 * 24 * time.Hour},
}

// ProjectTimeline maps a window start and zoom level onto the pixel
// coordinate space of the Gantt view. Pure; independent of any
// rendering technology.
func ProjectTimeline(start time.Time, zoom models.ZoomLevel) (models.TimelineProjection, error) {
	spec, ok := zoomSpecs[zoom]
	if !ok {
		return models.TimelineProjection{}, appErrors.Clone(appErrors.ErrValidation, "unknown zoom level")
	}

	windowMinutes := spec.window.Minutes()
	ticks := make([]time.Time, 0, int(spec.window/spec.tick))
	for t := start; t.Before(start.Add(spec.window)); t = t.Add(spec.tick) {
		ticks = append(ticks, t)
	}

	return models.TimelineProjection{
		Zoom:            zoom,
		WindowStart:     start,
		WindowEnd:       start.Add(spec.window),
		PixelsPerMinute: screenWidthPixels / windowMinutes,
		Ticks:           ticks,
	}, nil
}

// Offset returns the horizontal pixel offset of t within the
// projection. Offset(WindowStart) is 0; Offset(WindowEnd) equals the
// screen width.
func Offset(p models.TimelineProjection, t time.Time) float64 {
	return t.Sub(p.WindowStart).Minutes() * p.PixelsPerMinute
}
