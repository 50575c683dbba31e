package strategy

import (
	"fmt"

	"github.com/rxtech-lab/sentiment-backtest/internal/sentiment"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// sentimentMA blends the crossover signal with a daily sentiment series.
//
// Entry: golden cross AND (trailing average sentiment > buy_threshold x
// ai_weight, OR the normalized MA spread exceeds strong_signal_threshold
// when ignore_ai_on_strong_signal is enabled).
//
// Exit, in priority order after the broker's stop/take-profit checks:
// today's raw sentiment below panic_threshold, then a death cross.
type sentimentMA struct {
	name string
	cfg  Config

	bars  []types.Bar
	fast  []float64
	slow  []float64
	cross []int

	series *sentiment.DailySeries
	// buffer is the fixed-size rolling window of the last
	// sentiment_lookback daily scores, today included.
	buffer []float64
	// lastObserved guards the buffer against double pushes when both
	// Observe and Next run on the same bar.
	lastObserved int
}

func newSentimentMA(name string, cfg Config) *sentimentMA {
	return &sentimentMA{
		name:         name,
		cfg:          cfg,
		buffer:       make([]float64, 0, cfg.SentimentLookback),
		lastObserved: -1,
	}
}

func (s *sentimentMA) Name() string {
	return s.name
}

func (s *sentimentMA) WarmupPeriod() int {
	return s.cfg.SlowPeriod + 1
}

// SetSentimentSeries implements SentimentConsumer. A nil series means no
// data was available; the strategy then sees neutral 0.0 everywhere.
func (s *sentimentMA) SetSentimentSeries(series *sentiment.DailySeries) {
	s.series = series
}

func (s *sentimentMA) Prime(bars []types.Bar) error {
	fast, slow, cross, err := primeCrossover(bars, s.cfg)
	if err != nil {
		return err
	}

	s.bars = bars
	s.fast = fast
	s.slow = slow
	s.cross = cross
	s.buffer = s.buffer[:0]
	s.lastObserved = -1

	return nil
}

// Observe pushes bar i's daily sentiment score into the rolling window.
// Every bar's score must land in the window exactly once, even when a risk
// exit keeps Next from running on that bar.
func (s *sentimentMA) Observe(i int) {
	if s.bars == nil || i < 0 || i >= len(s.bars) || i == s.lastObserved {
		return
	}

	s.lastObserved = i
	s.pushScore(s.currentScore(s.bars[i]))
}

func (s *sentimentMA) Next(i int, snap Snapshot) (Decision, error) {
	if s.bars == nil {
		return Hold(), errors.New(errors.ErrCodeStrategyRuntimeError, "strategy not primed")
	}

	if i < 0 || i >= len(s.bars) {
		return Hold(), errors.Newf(errors.ErrCodeStrategyRuntimeError, "bar index %d out of range", i)
	}

	bar := s.bars[i]

	// Today's score enters the rolling buffer before any decision, so the
	// trailing average always includes the current day.
	s.Observe(i)
	score := s.currentScore(bar)

	if snap.OrderPending {
		return Hold(), nil
	}

	if snap.Position.Open {
		if score < s.cfg.PanicThreshold {
			return Decision{
				Action: ActionSell,
				Reason: types.Reason{
					Reason:  types.OrderReasonPanicSentiment,
					Message: fmt.Sprintf("sentiment %.2f below panic threshold %.2f", score, s.cfg.PanicThreshold),
				},
			}, nil
		}

		if s.cross[i] < 0 {
			return Decision{
				Action: ActionSell,
				Reason: types.Reason{Reason: types.OrderReasonDeathCross, Message: "fast MA crossed below slow MA"},
			}, nil
		}

		return Hold(), nil
	}

	if s.cross[i] > 0 {
		if s.isSentimentBullish() || s.isStrongTechnicalSignal(i, bar.Close) {
			return Decision{
				Action: ActionBuy,
				Reason: types.Reason{
					Reason:  types.OrderReasonGoldenCross,
					Message: fmt.Sprintf("golden cross, avg sentiment %.2f", s.avgSentiment()),
				},
			}, nil
		}
	}

	return Hold(), nil
}

func (s *sentimentMA) currentScore(bar types.Bar) float64 {
	if s.series == nil {
		return 0.0
	}

	return s.series.ScoreOn(bar.Date())
}

func (s *sentimentMA) pushScore(score float64) {
	if len(s.buffer) == s.cfg.SentimentLookback {
		copy(s.buffer, s.buffer[1:])
		s.buffer = s.buffer[:len(s.buffer)-1]
	}

	s.buffer = append(s.buffer, score)
}

func (s *sentimentMA) avgSentiment() float64 {
	if len(s.buffer) == 0 {
		return 0.0
	}

	var sum float64
	for _, score := range s.buffer {
		sum += score
	}

	return sum / float64(len(s.buffer))
}

// isSentimentBullish applies the AI weight to the buy threshold: a higher
// weight demands stronger sentiment before an entry passes.
func (s *sentimentMA) isSentimentBullish() bool {
	return s.avgSentiment() > s.cfg.BuyThreshold*s.cfg.AIWeight
}

func (s *sentimentMA) isStrongTechnicalSignal(i int, close float64) bool {
	if !s.cfg.IgnoreAIOnStrongSignal {
		return false
	}

	return normalizedSpread(s.fast, s.slow, close, i) > s.cfg.StrongSignalThreshold
}
