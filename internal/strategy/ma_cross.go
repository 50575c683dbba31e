package strategy

import (
	"math"

	"github.com/rxtech-lab/sentiment-backtest/internal/indicator"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// maCross buys on a golden cross and sells on a death cross, with no
// further gating. It is the technical-only variant of the engine's single
// state machine.
type maCross struct {
	name string
	cfg  Config

	bars  []types.Bar
	fast  []float64
	slow  []float64
	cross []int
}

func newMACross(name string, cfg Config) *maCross {
	return &maCross{
		name: name,
		cfg:  cfg,
	}
}

func (s *maCross) Name() string {
	return s.name
}

func (s *maCross) WarmupPeriod() int {
	// One extra bar so the crossover has a preceding value to compare.
	return s.cfg.SlowPeriod + 1
}

func (s *maCross) Prime(bars []types.Bar) error {
	fast, slow, cross, err := primeCrossover(bars, s.cfg)
	if err != nil {
		return err
	}

	s.bars = bars
	s.fast = fast
	s.slow = slow
	s.cross = cross

	return nil
}

// Observe is a no-op; the crossover series is precomputed in Prime.
func (s *maCross) Observe(int) {}

func (s *maCross) Next(i int, snap Snapshot) (Decision, error) {
	if s.bars == nil {
		return Hold(), errors.New(errors.ErrCodeStrategyRuntimeError, "strategy not primed")
	}

	if i < 0 || i >= len(s.bars) {
		return Hold(), errors.Newf(errors.ErrCodeStrategyRuntimeError, "bar index %d out of range", i)
	}

	if snap.OrderPending {
		return Hold(), nil
	}

	switch {
	case s.cross[i] > 0 && !snap.Position.Open:
		return Decision{
			Action: ActionBuy,
			Reason: types.Reason{Reason: types.OrderReasonGoldenCross, Message: "fast MA crossed above slow MA"},
		}, nil
	case s.cross[i] < 0 && snap.Position.Open:
		return Decision{
			Action: ActionSell,
			Reason: types.Reason{Reason: types.OrderReasonDeathCross, Message: "fast MA crossed below slow MA"},
		}, nil
	default:
		return Hold(), nil
	}
}

// primeCrossover computes the fast/slow average and crossover series shared
// by both strategy variants.
func primeCrossover(bars []types.Bar, cfg Config) (fast, slow []float64, cross []int, err error) {
	closes := types.Closes(bars)

	ma := indicator.SMA
	if cfg.UseEMA {
		ma = indicator.EMA
	}

	fast, err = ma(closes, cfg.FastPeriod)
	if err != nil {
		return nil, nil, nil, err
	}

	slow, err = ma(closes, cfg.SlowPeriod)
	if err != nil {
		return nil, nil, nil, err
	}

	cross, err = indicator.Crossover(fast, slow)
	if err != nil {
		return nil, nil, nil, err
	}

	return fast, slow, cross, nil
}

// normalizedSpread returns |fast-slow|/close at bar i, or 0 when either
// average is undefined there.
func normalizedSpread(fast, slow []float64, close float64, i int) float64 {
	if close <= 0 || i >= len(fast) || i >= len(slow) {
		return 0
	}

	if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) {
		return 0
	}

	return math.Abs(fast[i]-slow[i]) / close
}
