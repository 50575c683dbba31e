package engine

import (
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	"github.com/rxtech-lab/sentiment-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/sentiment-backtest/internal/strategy"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

const (
	DefaultInitialCapital = 100_000.0
)

// RunConfig describes one backtest request: which strategy to run, over
// which symbols and window, and with what capital and commission model.
type RunConfig struct {
	StrategyType strategy.Type `yaml:"strategy_type" validate:"required"`
	Symbols      []string      `yaml:"symbols" validate:"required,min=1,dive,required"`
	StartDate    time.Time     `yaml:"start_date" validate:"required"`
	EndDate      time.Time     `yaml:"end_date" validate:"required"`

	InitialCapital float64 `yaml:"initial_capital" validate:"gt=0"`
	// Commission is the fraction of notional charged on every fill.
	Commission float64 `yaml:"commission" validate:"gte=0,lt=1"`
	// CommissionType selects the fee model; empty means percentage.
	CommissionType commission_fee.Broker `yaml:"commission_type"`

	// Params overrides individual strategy parameters on top of the preset
	// for the strategy type. Unknown keys are dropped with a warning.
	Params map[string]any `yaml:"params"`
}

// ParseRunConfig parses a YAML run configuration, applies defaults and
// validates the result.
func ParseRunConfig(data []byte) (RunConfig, error) {
	cfg := RunConfig{
		InitialCapital: DefaultInitialCapital,
		Commission:     commission_fee.DefaultCommissionRate,
		CommissionType: commission_fee.BrokerPercentage,
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return RunConfig{}, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse run config", err)
	}
	if err := cfg.Validate(); err != nil {
		return RunConfig{}, err
	}
	return cfg, nil
}

// Validate checks the run config before any data is fetched. Every failure
// here is a configuration error, never a data error.
func (c *RunConfig) Validate() error {
	if !strategy.IsKnownType(c.StrategyType) {
		return errors.Newf(errors.ErrCodeUnknownStrategy, "unknown strategy type %q", c.StrategyType)
	}
	if len(c.Symbols) == 0 {
		return errors.New(errors.ErrCodeNoSymbols, "at least one symbol is required")
	}
	if !c.StartDate.Before(c.EndDate) {
		return errors.Newf(errors.ErrCodeInvalidDateRange, "start date %s must be before end date %s",
			c.StartDate.Format(time.DateOnly), c.EndDate.Format(time.DateOnly))
	}

	switch c.CommissionType {
	case "", commission_fee.BrokerPercentage, commission_fee.BrokerZero:
	default:
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "unknown commission type %q", c.CommissionType)
	}

	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid run config", err)
	}

	return nil
}

// CommissionModel resolves the configured fee model, defaulting to the
// percentage model when none is set.
func (c *RunConfig) CommissionModel() commission_fee.Broker {
	if c.CommissionType == "" {
		return commission_fee.BrokerPercentage
	}
	return c.CommissionType
}
