package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oriel-mfg/factory-ops-api/internal/models"
)

func TestProjectTimelineHour(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	projection, err := ProjectTimeline(start, models.ZoomHour)
	require.NoError(t, err)

	assert.Equal(t, start.Add(24*time.Hour), projection.WindowEnd)
	assert.Len(t, projection.Ticks, 24)
	assert.Equal(t, start, projection.Ticks[0])
	assert.Equal(t, start.Add(23*time.Hour), projection.Ticks[23])

	assert.Equal(t, 0.0, Offset(projection, start))
	assert.InDelta(t, 24*60*projection.PixelsPerMinute, Offset(projection, projection.WindowEnd), 1e-9)
}

func TestProjectTimelineWindows(t *testing.T) {
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		zoom   models.ZoomLevel
		window time.Duration
		ticks  int
	}{
		{models.ZoomHour, 24 * time.Hour, 24},
		{models.ZoomDay, 7 * 24 * time.Hour, 7},
		{models.ZoomWeek, 28 * 24 * time.Hour, 4},
	}

	for _, tc := range cases {
		projection, err := ProjectTimeline(start, tc.zoom)
		require.NoError(t, err, string(tc.zoom))

		assert.Equal(t, start.Add(tc.window), projection.WindowEnd, string(tc.zoom))
		assert.Len(t, projection.Ticks, tc.ticks, string(tc.zoom))

		// One full window always spans the same screen width.
		assert.InDelta(t, screenWidthPixels, Offset(projection, projection.WindowEnd), 1e-9, string(tc.zoom))
	}
}

func TestOffsetIsLinear(t *testing.T) {
	start := time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC)
	projection, err := ProjectTimeline(start, models.ZoomDay)
	require.NoError(t, err)

	halfway := start.Add(3*24*time.Hour + 12*time.Hour)
	assert.InDelta(t, screenWidthPixels/2, Offset(projection, halfway), 1e-9)
}

func TestProjectTimelineUnknownZoom(t *testing.T) {
	_, err := ProjectTimeline(time.Now(), models.ZoomLevel("month"))
	require.Error(t, err)
}
