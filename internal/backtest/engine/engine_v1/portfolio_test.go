package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPortfolioTrackerRecordsDrawdown(t *testing.T) {
	tracker := NewPortfolioTracker(100)

	day := func(d int) time.Time {
		return time.Date(2023, 1, d, 0, 0, 0, 0, time.UTC)
	}

	tracker.Record(day(1), 100)
	tracker.Record(day(2), 120)
	tracker.Record(day(3), 90)

	points := tracker.EquityCurve()
	require.Len(t, points, 3)

	assert.Zero(t, points[0].Drawdown)
	assert.Zero(t, points[1].Drawdown)
	assert.InDelta(t, 25.0, points[2].Drawdown, 1e-9)

	assert.InDelta(t, 0.25, tracker.MaxDrawdown(), 1e-9)
	assert.InDelta(t, 90.0, tracker.FinalValue(), 1e-9)
}

func TestPortfolioTrackerDrawdownNeverNegative(t *testing.T) {
	tracker := NewPortfolioTracker(100)

	tracker.Record(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 150)

	points := tracker.EquityCurve()
	require.Len(t, points, 1)
	assert.Zero(t, points[0].Drawdown, "new peak is not a drawdown")
	assert.Zero(t, tracker.MaxDrawdown())
}

func TestPortfolioTrackerPeakStartsAtInitialCapital(t *testing.T) {
	tracker := NewPortfolioTracker(100)

	// First value below initial capital is already a drawdown.
	tracker.Record(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 80)

	assert.InDelta(t, 0.2, tracker.MaxDrawdown(), 1e-9)
}

func TestPortfolioTrackerEmpty(t *testing.T) {
	tracker := NewPortfolioTracker(5000)

	assert.Empty(t, tracker.EquityCurve())
	assert.Zero(t, tracker.MaxDrawdown())
	assert.InDelta(t, 5000.0, tracker.FinalValue(), 1e-9)
}

func TestPortfolioTrackerRoundsStoredValues(t *testing.T) {
	tracker := NewPortfolioTracker(100)

	tracker.Record(time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), 123.456789)

	assert.InDelta(t, 123.46, tracker.EquityCurve()[0].Value, 1e-9)
}
