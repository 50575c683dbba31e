package engine

import (
	"time"

	"github.com/rxtech-lab/sentiment-backtest/internal/types"
)

// PortfolioTracker records the per-bar equity curve and the running maximum
// drawdown. Values are snapshotted once per bar after the broker settled all
// fills for that bar.
type PortfolioTracker struct {
	initialCapital float64
	peak           float64
	maxDrawdown    float64
	points         []types.EquityPoint
}

func NewPortfolioTracker(initialCapital float64) *PortfolioTracker {
	return &PortfolioTracker{
		initialCapital: initialCapital,
		peak:           initialCapital,
	}
}

// Record appends one equity snapshot. Drawdown on the point is stored in
// percent; the running maximum drawdown is kept as a fraction for the metrics
// step.
func (p *PortfolioTracker) Record(date time.Time, value float64) {
	if value > p.peak {
		p.peak = value
	}

	drawdown := 0.0
	if p.peak > 0 {
		drawdown = (p.peak - value) / p.peak
	}
	if drawdown < 0 {
		drawdown = 0
	}
	if drawdown > p.maxDrawdown {
		p.maxDrawdown = drawdown
	}

	p.points = append(p.points, types.EquityPoint{
		Date:     date,
		Value:    round2(value),
		Drawdown: round4(drawdown * 100),
	})
}

func (p *PortfolioTracker) EquityCurve() []types.EquityPoint {
	return p.points
}

// MaxDrawdown returns the largest peak-to-trough decline as a fraction.
func (p *PortfolioTracker) MaxDrawdown() float64 {
	return p.maxDrawdown
}

// FinalValue returns the last recorded portfolio value, or the initial
// capital when no bar was recorded.
func (p *PortfolioTracker) FinalValue() float64 {
	if len(p.points) == 0 {
		return p.initialCapital
	}
	return p.points[len(p.points)-1].Value
}
