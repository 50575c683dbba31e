package strategy

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"

	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// Config is the full parameter set shared by every strategy variant. The
// presets below are data-only: one state machine, multiple configurations.
type Config struct {
	FastPeriod int  `yaml:"fast_period" json:"fast_period" validate:"gt=0" jsonschema:"title=Fast Period,description=Period for the fast moving average,minimum=1"`
	SlowPeriod int  `yaml:"slow_period" json:"slow_period" validate:"gt=0" jsonschema:"title=Slow Period,description=Period for the slow moving average,minimum=1"`
	UseEMA     bool `yaml:"use_ema" json:"use_ema" jsonschema:"title=Use EMA,description=Use exponential instead of simple moving averages"`

	SentimentLookback int     `yaml:"sentiment_lookback" json:"sentiment_lookback" validate:"gt=0" jsonschema:"title=Sentiment Lookback,description=Trailing days averaged for the sentiment entry gate,minimum=1"`
	BuyThreshold      float64 `yaml:"buy_threshold" json:"buy_threshold" jsonschema:"title=Buy Threshold,description=Minimum average sentiment to allow an entry"`
	PanicThreshold    float64 `yaml:"panic_threshold" json:"panic_threshold" jsonschema:"title=Panic Threshold,description=Raw daily sentiment below which an open position is force-closed"`

	AIWeight               float64 `yaml:"ai_weight" json:"ai_weight" validate:"gte=0,lte=1" jsonschema:"title=AI Weight,description=Weight applied to the sentiment buy threshold,minimum=0,maximum=1"`
	IgnoreAIOnStrongSignal bool    `yaml:"ignore_ai_on_strong_signal" json:"ignore_ai_on_strong_signal" jsonschema:"title=Ignore AI On Strong Signal,description=Bypass the sentiment gate when the MA spread is large"`
	StrongSignalThreshold  float64 `yaml:"strong_signal_threshold" json:"strong_signal_threshold" validate:"gte=0" jsonschema:"title=Strong Signal Threshold,description=Normalized MA spread that counts as a strong technical signal,minimum=0"`

	// PositionSize is the fraction of available cash committed per entry.
	PositionSize float64 `yaml:"position_size" json:"position_size" validate:"gt=0,lte=1" jsonschema:"title=Position Size,description=Fraction of available cash committed to a single entry,minimum=0,maximum=1"`
	// StopLoss and TakeProfit are whole percentages: 5 means 5%. Zero disables.
	StopLoss   float64 `yaml:"stop_loss" json:"stop_loss" validate:"gte=0" jsonschema:"title=Stop Loss,description=Stop loss in percent (5 means 5%); 0 disables,minimum=0"`
	TakeProfit float64 `yaml:"take_profit" json:"take_profit" validate:"gte=0" jsonschema:"title=Take Profit,description=Take profit in percent (10 means 10%); 0 disables,minimum=0"`
}

// Validate checks struct tags plus the cross-field invariants. A config that
// fails here never produces a strategy instance.
func (c Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidStrategyConfig, "invalid strategy config", err)
	}

	if c.FastPeriod >= c.SlowPeriod {
		return errors.Newf(errors.ErrCodeInvalidStrategyConfig,
			"fast_period (%d) must be less than slow_period (%d)", c.FastPeriod, c.SlowPeriod)
	}

	if c.BuyThreshold <= c.PanicThreshold {
		return errors.Newf(errors.ErrCodeInvalidStrategyConfig,
			"buy_threshold (%.2f) must be greater than panic_threshold (%.2f)", c.BuyThreshold, c.PanicThreshold)
	}

	return nil
}

// DefaultConfig is the balanced preset.
func DefaultConfig() Config {
	return Config{
		FastPeriod:             10,
		SlowPeriod:             30,
		UseEMA:                 false,
		SentimentLookback:      3,
		BuyThreshold:           0.2,
		PanicThreshold:         -0.5,
		AIWeight:               0.5,
		IgnoreAIOnStrongSignal: false,
		StrongSignalThreshold:  0.02,
		PositionSize:           1.0,
		StopLoss:               0,
		TakeProfit:             0,
	}
}

// AggressiveConfig reacts faster and trusts technicals over sentiment:
// short EMA periods, a low buy threshold, early panic exits, a tight stop
// and a wide profit target on a full position.
func AggressiveConfig() Config {
	return Config{
		FastPeriod:             5,
		SlowPeriod:             20,
		UseEMA:                 true,
		SentimentLookback:      2,
		BuyThreshold:           0.1,
		PanicThreshold:         -0.3,
		AIWeight:               0.3,
		IgnoreAIOnStrongSignal: true,
		StrongSignalThreshold:  0.015,
		PositionSize:           1.0,
		StopLoss:               3,
		TakeProfit:             15,
	}
}

// ConservativeConfig is slower and more selective: long SMA periods, a high
// buy threshold, late panic exits, heavy sentiment weighting and a half
// position.
func ConservativeConfig() Config {
	return Config{
		FastPeriod:             20,
		SlowPeriod:             50,
		UseEMA:                 false,
		SentimentLookback:      5,
		BuyThreshold:           0.4,
		PanicThreshold:         -0.6,
		AIWeight:               0.7,
		IgnoreAIOnStrongSignal: false,
		StrongSignalThreshold:  0.03,
		PositionSize:           0.5,
		StopLoss:               7,
		TakeProfit:             8,
	}
}

// GenerateSchema generates a JSON schema for the strategy Config
func (c *Config) GenerateSchema() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		RequiredFromJSONSchemaTags: true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  false,
	}

	schema := reflector.Reflect(c)

	// Set schema metadata
	schema.Title = "strategy-config"
	schema.Description = "Configuration schema for backtest strategies"
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return schema
}

// GenerateSchemaJSON generates a JSON schema string for the strategy Config
func (c *Config) GenerateSchemaJSON() (string, error) {
	schema := c.GenerateSchema()

	schemaBytes, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "", err
	}

	return string(schemaBytes), nil
}
