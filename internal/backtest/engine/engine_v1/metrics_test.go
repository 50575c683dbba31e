package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rxtech-lab/sentiment-backtest/internal/types"
)

func equityCurve(values ...float64) []types.EquityPoint {
	points := make([]types.EquityPoint, len(values))
	for i, value := range values {
		points[i] = types.EquityPoint{
			Date:  time.Date(2023, 1, 1+i, 0, 0, 0, 0, time.UTC),
			Value: value,
		}
	}
	return points
}

func winningTrade(pnl, pnlPct float64) types.Trade {
	return types.Trade{
		EntryDate:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		ExitDate:   time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
		PnL:        pnl,
		PnLPercent: pnlPct,
	}
}

func TestMetricsTotalReturn(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     112_345.678,
		Start:          time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.InDelta(t, 12.3457, m.TotalReturn, 1e-9, "rounded to 4 decimal places")
}

func TestMetricsCAGROneYear(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     110_000,
		Start:          time.Date(2022, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.InDelta(t, 10.0, m.CAGR, 0.1)
}

func TestMetricsZeroWindowHasNoCAGR(t *testing.T) {
	day := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     110_000,
		Start:          day,
		End:            day,
	})

	assert.Zero(t, m.CAGR)
}

func TestMetricsMonotonicCurve(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100,
		FinalValue:     104,
		EquityCurve:    equityCurve(100, 101, 102, 103, 104),
		MaxDrawdown:    0,
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.Zero(t, m.MDD)
	assert.Zero(t, m.SortinoRatio, "no negative daily returns")
	assert.Zero(t, m.CalmarRatio, "undefined without drawdown")
	assert.Positive(t, m.SharpeRatio)
}

func TestMetricsMDDFromTracker(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100,
		FinalValue:     90,
		MaxDrawdown:    0.25,
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 1, 5, 0, 0, 0, 0, time.UTC),
	})

	assert.InDelta(t, 25.0, m.MDD, 1e-9)
}

func TestMetricsFlatCurveHasNoRatios(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100,
		FinalValue:     100,
		EquityCurve:    equityCurve(100, 100, 100),
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 1, 3, 0, 0, 0, 0, time.UTC),
	})

	assert.Zero(t, m.SharpeRatio, "zero volatility yields zero, not NaN")
	assert.Zero(t, m.SortinoRatio)
}

func TestMetricsTradeStats(t *testing.T) {
	trades := []types.Trade{
		winningTrade(200, 4.0),
		winningTrade(100, 2.0),
		winningTrade(-100, -3.0),
	}

	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_200,
		Trades:         trades,
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, 3, m.TotalTrades)
	assert.Equal(t, 2, m.WinningTrades)
	assert.Equal(t, 1, m.LosingTrades)
	assert.InDelta(t, 0.6667, m.WinRate, 1e-4, "win rate is a fraction of total trades")
	assert.InDelta(t, 3.0, m.AvgWin, 1e-9)
	assert.InDelta(t, -3.0, m.AvgLoss, 1e-9)
	assert.InDelta(t, 3.0, m.ProfitFactor, 1e-9)
}

func TestMetricsProfitFactorSentinel(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_300,
		Trades:         []types.Trade{winningTrade(300, 5.0)},
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, types.ProfitFactorSentinel, m.ProfitFactor)
}

func TestMetricsBreakEvenTradeCountsAsLoss(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_000,
		Trades:         []types.Trade{winningTrade(0, 0)},
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Equal(t, 1, m.LosingTrades)
	assert.Zero(t, m.ProfitFactor)
}

func TestMetricsNoTrades(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_000,
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.Zero(t, m.TotalTrades)
	assert.Zero(t, m.WinRate)
	assert.Zero(t, m.ProfitFactor)
	assert.Zero(t, m.HoldingTime.Avg)
}

func TestMetricsBuyAndHoldBenchmark(t *testing.T) {
	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_000,
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
		FirstClose:     100,
		LastClose:      110,
	})

	assert.InDelta(t, 10_000.0, m.BuyAndHoldPnL, 1e-9)
}

func TestMetricsHoldingTime(t *testing.T) {
	short := winningTrade(10, 1)
	short.ExitDate = short.EntryDate.Add(24 * time.Hour)

	long := winningTrade(10, 1)
	long.ExitDate = long.EntryDate.Add(96 * time.Hour)

	m := CalculateMetrics(MetricsInput{
		InitialCapital: 100_000,
		FinalValue:     100_020,
		Trades:         []types.Trade{short, long},
		Start:          time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		End:            time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC),
	})

	assert.InDelta(t, 24.0, m.HoldingTime.Min, 1e-9)
	assert.InDelta(t, 96.0, m.HoldingTime.Max, 1e-9)
	assert.InDelta(t, 60.0, m.HoldingTime.Avg, 1e-9)
}
