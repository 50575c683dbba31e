package engine

import (
	"math"
	"time"

	"github.com/rxtech-lab/sentiment-backtest/internal/types"
)

const (
	// riskFreeRate is the annual risk-free rate used for the Sharpe ratio.
	riskFreeRate = 0.02
	// tradingDaysPerYear annualizes daily return statistics.
	tradingDaysPerYear = 252.0
	// daysPerYear converts the calendar window to years for CAGR.
	daysPerYear = 365.25
)

// MetricsInput carries everything the metrics calculation needs. The
// calculation is a pure function of this input.
type MetricsInput struct {
	InitialCapital float64
	FinalValue     float64
	EquityCurve    []types.EquityPoint
	Trades         []types.Trade
	// MaxDrawdown is the tracker's running maximum as a fraction.
	MaxDrawdown float64
	Start       time.Time
	End         time.Time
	// FirstClose and LastClose bound the buy-and-hold benchmark over the
	// reporting window.
	FirstClose float64
	LastClose  float64
}

// CalculateMetrics computes the standardized performance snapshot for a
// completed run. Ratios that would divide by zero come back as 0, except the
// profit factor which reports a bounded sentinel when there are wins and no
// losses.
func CalculateMetrics(in MetricsInput) types.BacktestMetrics {
	m := types.BacktestMetrics{}

	if in.InitialCapital > 0 {
		m.TotalReturn = round4((in.FinalValue - in.InitialCapital) / in.InitialCapital * 100)
	}
	m.CAGR = round4(cagr(in.InitialCapital, in.FinalValue, in.Start, in.End))
	m.MDD = round4(in.MaxDrawdown * 100)

	returns := dailyReturns(in.EquityCurve)
	m.SharpeRatio = round4(sharpeRatio(returns))
	m.SortinoRatio = round4(sortinoRatio(returns))
	if m.MDD > 0 {
		m.CalmarRatio = round4(m.CAGR / m.MDD)
	}

	fillTradeStats(&m, in.Trades)
	fillHoldingTime(&m, in.Trades)

	if in.FirstClose > 0 {
		m.BuyAndHoldPnL = round2((in.LastClose/in.FirstClose - 1) * in.InitialCapital)
	}

	return m
}

func cagr(initial, final float64, start, end time.Time) float64 {
	days := end.Sub(start).Hours() / 24
	if days <= 0 || initial <= 0 || final <= 0 {
		return 0
	}
	years := days / daysPerYear
	return (math.Pow(final/initial, 1/years) - 1) * 100
}

func dailyReturns(curve []types.EquityPoint) []float64 {
	if len(curve) < 2 {
		return nil
	}
	returns := make([]float64, 0, len(curve)-1)
	for i := 1; i < len(curve); i++ {
		prev := curve[i-1].Value
		if prev == 0 {
			returns = append(returns, 0)
			continue
		}
		returns = append(returns, curve[i].Value/prev-1)
	}
	return returns
}

func sharpeRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	std := stddev(returns)
	if std == 0 {
		return 0
	}
	excess := mean(returns) - riskFreeRate/tradingDaysPerYear
	return excess / std * math.Sqrt(tradingDaysPerYear)
}

func sortinoRatio(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	var downside []float64
	for _, r := range returns {
		if r < 0 {
			downside = append(downside, r)
		}
	}
	if len(downside) == 0 {
		return 0
	}
	downsideStd := stddev(downside)
	if downsideStd == 0 {
		return 0
	}
	return mean(returns) * tradingDaysPerYear / (downsideStd * math.Sqrt(tradingDaysPerYear))
}

func fillTradeStats(m *types.BacktestMetrics, trades []types.Trade) {
	m.TotalTrades = len(trades)
	if len(trades) == 0 {
		return
	}

	var grossProfit, grossLoss float64
	var winPct, lossPct float64
	for _, t := range trades {
		if t.PnL > 0 {
			m.WinningTrades++
			grossProfit += t.PnL
			winPct += t.PnLPercent
		} else {
			m.LosingTrades++
			grossLoss += -t.PnL
			lossPct += t.PnLPercent
		}
	}

	m.WinRate = round4(float64(m.WinningTrades) / float64(m.TotalTrades))
	if m.WinningTrades > 0 {
		m.AvgWin = round4(winPct / float64(m.WinningTrades))
	}
	if m.LosingTrades > 0 {
		m.AvgLoss = round4(lossPct / float64(m.LosingTrades))
	}

	switch {
	case grossLoss > 0:
		m.ProfitFactor = round4(grossProfit / grossLoss)
	case grossProfit > 0:
		m.ProfitFactor = types.ProfitFactorSentinel
	}
}

func fillHoldingTime(m *types.BacktestMetrics, trades []types.Trade) {
	if len(trades) == 0 {
		return
	}

	min := math.Inf(1)
	max := 0.0
	total := 0.0
	for i := range trades {
		h := trades[i].HoldingHours()
		if h < min {
			min = h
		}
		if h > max {
			max = h
		}
		total += h
	}

	m.HoldingTime = types.TradeHoldingTime{
		Min: round2(min),
		Max: round2(max),
		Avg: round2(total / float64(len(trades))),
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
