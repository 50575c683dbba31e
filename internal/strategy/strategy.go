// Package strategy contains the per-bar decision logic of the backtest
// engine. A strategy is primed once with the full warmed-up bar history,
// then asked for one action per bar. State lives in the broker (flat or
// long); the strategy only decides transitions.
package strategy

import (
	"sort"

	"github.com/rxtech-lab/sentiment-backtest/internal/sentiment"
	"github.com/rxtech-lab/sentiment-backtest/internal/types"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

type Action string

const (
	ActionBuy  Action = "BUY"
	ActionSell Action = "SELL"
	ActionHold Action = "HOLD"
)

// Decision is the outcome of one bar evaluation.
type Decision struct {
	Action Action
	Reason types.Reason
}

// Hold is the no-op decision.
func Hold() Decision {
	return Decision{Action: ActionHold}
}

// Snapshot is the broker state visible to the strategy at bar evaluation
// time.
type Snapshot struct {
	// Position is the current holding; Position.Open is false when flat.
	Position types.Position
	// OrderPending is true while a submitted order has not resolved yet.
	// The strategy must not emit new actions in that case.
	OrderPending bool
}

// Strategy evaluates one bar at a time over a primed history.
type Strategy interface {
	// Name returns the strategy's display name.
	Name() string
	// WarmupPeriod returns the number of bars needed before signals are
	// meaningful (the slow MA period plus one bar for the crossover).
	WarmupPeriod() int
	// Prime precomputes the indicator series over the full bar history.
	// Must be called once before Next.
	Prime(bars []types.Bar) error
	// Observe folds bar i's ambient data into strategy state without
	// producing a decision. The engine calls it once per bar, including
	// bars where a risk exit preempts Next. Idempotent per index.
	Observe(i int)
	// Next evaluates bar i of the primed history and returns an action.
	Next(i int, snap Snapshot) (Decision, error)
}

// SentimentConsumer is implemented by strategies that need the daily
// sentiment series alongside the price feed.
type SentimentConsumer interface {
	SetSentimentSeries(series *sentiment.DailySeries)
}

type Type string

const (
	TypeSMACrossover          Type = "sma_crossover"
	TypeEMACrossover          Type = "ema_crossover"
	TypeSentimentSMA          Type = "sentiment_sma"
	TypeSentimentAggressive   Type = "sentiment_sma_aggressive"
	TypeSentimentConservative Type = "sentiment_sma_conservative"
)

// technicalParams are the keys the pure crossover variants recognize.
var technicalParams = map[string]bool{
	"fast_period":   true,
	"slow_period":   true,
	"use_ema":       true,
	"position_size": true,
	"stop_loss":     true,
	"take_profit":   true,
}

// sentimentParams extends technicalParams with the sentiment gate keys.
var sentimentParams = map[string]bool{
	"fast_period":                true,
	"slow_period":                true,
	"use_ema":                    true,
	"sentiment_lookback":         true,
	"buy_threshold":              true,
	"panic_threshold":            true,
	"ai_weight":                  true,
	"ignore_ai_on_strong_signal": true,
	"strong_signal_threshold":    true,
	"position_size":              true,
	"stop_loss":                  true,
	"take_profit":                true,
}

// RequiresSentiment reports whether the strategy type needs a sentiment feed.
func RequiresSentiment(t Type) bool {
	switch t {
	case TypeSentimentSMA, TypeSentimentAggressive, TypeSentimentConservative:
		return true
	default:
		return false
	}
}

// IsKnownType reports whether the strategy type is registered.
func IsKnownType(t Type) bool {
	switch t {
	case TypeSMACrossover, TypeEMACrossover, TypeSentimentSMA, TypeSentimentAggressive, TypeSentimentConservative:
		return true
	default:
		return false
	}
}

// BaseConfig returns the preset parameter values for a strategy type.
func BaseConfig(t Type) (Config, error) {
	switch t {
	case TypeSMACrossover:
		return DefaultConfig(), nil
	case TypeEMACrossover:
		cfg := DefaultConfig()
		cfg.FastPeriod = 12
		cfg.SlowPeriod = 26
		cfg.UseEMA = true

		return cfg, nil
	case TypeSentimentSMA:
		return DefaultConfig(), nil
	case TypeSentimentAggressive:
		return AggressiveConfig(), nil
	case TypeSentimentConservative:
		return ConservativeConfig(), nil
	default:
		return Config{}, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy type: %s", t)
	}
}

// recognizedParams returns the key set the strategy type accepts.
func recognizedParams(t Type) map[string]bool {
	if RequiresSentiment(t) {
		return sentimentParams
	}

	return technicalParams
}

// ApplyParams overlays a flat key->value parameter map onto a base config.
// Unrecognized keys are collected and returned, never treated as errors;
// recognized keys with an unusable value type are dropped the same way.
func ApplyParams(t Type, base Config, params map[string]any) (Config, []string) {
	recognized := recognizedParams(t)
	cfg := base

	var dropped []string

	for key, value := range params {
		if !recognized[key] {
			dropped = append(dropped, key)
			continue
		}

		if !applyParam(&cfg, key, value) {
			dropped = append(dropped, key)
		}
	}

	sort.Strings(dropped)

	return cfg, dropped
}

func applyParam(cfg *Config, key string, value any) bool {
	switch key {
	case "fast_period":
		return setInt(&cfg.FastPeriod, value)
	case "slow_period":
		return setInt(&cfg.SlowPeriod, value)
	case "use_ema":
		return setBool(&cfg.UseEMA, value)
	case "sentiment_lookback":
		return setInt(&cfg.SentimentLookback, value)
	case "buy_threshold":
		return setFloat(&cfg.BuyThreshold, value)
	case "panic_threshold":
		return setFloat(&cfg.PanicThreshold, value)
	case "ai_weight":
		return setFloat(&cfg.AIWeight, value)
	case "ignore_ai_on_strong_signal":
		return setBool(&cfg.IgnoreAIOnStrongSignal, value)
	case "strong_signal_threshold":
		return setFloat(&cfg.StrongSignalThreshold, value)
	case "position_size":
		return setFloat(&cfg.PositionSize, value)
	case "stop_loss":
		return setFloat(&cfg.StopLoss, value)
	case "take_profit":
		return setFloat(&cfg.TakeProfit, value)
	default:
		return false
	}
}

// setInt accepts int or float values since JSON decoding yields float64.
func setInt(dst *int, value any) bool {
	switch v := value.(type) {
	case int:
		*dst = v
	case int64:
		*dst = int(v)
	case float64:
		*dst = int(v)
	default:
		return false
	}

	return true
}

func setFloat(dst *float64, value any) bool {
	switch v := value.(type) {
	case float64:
		*dst = v
	case int:
		*dst = float64(v)
	case int64:
		*dst = float64(v)
	default:
		return false
	}

	return true
}

func setBool(dst *bool, value any) bool {
	v, ok := value.(bool)
	if !ok {
		return false
	}

	*dst = v

	return true
}

// New constructs a validated strategy instance for the given type. An
// invalid config fails here, before any data is touched, with no partial
// state.
func New(t Type, cfg Config) (Strategy, error) {
	if !IsKnownType(t) {
		return nil, errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy type: %s", t)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if RequiresSentiment(t) {
		return newSentimentMA(string(t), cfg), nil
	}

	return newMACross(string(t), cfg), nil
}
