package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rxtech-lab/sentiment-backtest/internal/backtest/engine/engine_v1/commission_fee"
	"github.com/rxtech-lab/sentiment-backtest/internal/strategy"
	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

func TestParseRunConfig(t *testing.T) {
	cfg, err := ParseRunConfig([]byte(`
strategy_type: sentiment_sma
symbols:
  - AAPL
  - MSFT
start_date: 2023-01-01
end_date: 2023-06-30
initial_capital: 50000
commission: 0.002
params:
  fast_period: 5
  buy_threshold: 0.3
`))
	require.NoError(t, err)

	assert.Equal(t, strategy.TypeSentimentSMA, cfg.StrategyType)
	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols)
	assert.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), cfg.StartDate.UTC())
	assert.InDelta(t, 50_000.0, cfg.InitialCapital, 1e-9)
	assert.InDelta(t, 0.002, cfg.Commission, 1e-9)
	assert.Equal(t, 5, cfg.Params["fast_period"])
}

func TestParseRunConfigDefaults(t *testing.T) {
	cfg, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: [AAPL]
start_date: 2023-01-01
end_date: 2023-06-30
`))
	require.NoError(t, err)

	assert.InDelta(t, DefaultInitialCapital, cfg.InitialCapital, 1e-9)
	assert.InDelta(t, 0.001, cfg.Commission, 1e-9)
	assert.Equal(t, commission_fee.BrokerPercentage, cfg.CommissionModel())
}

func TestParseRunConfigCommissionType(t *testing.T) {
	cfg, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: [AAPL]
start_date: 2023-01-01
end_date: 2023-06-30
commission_type: zero_commission
`))
	require.NoError(t, err)
	assert.Equal(t, commission_fee.BrokerZero, cfg.CommissionModel())
}

func TestParseRunConfigUnknownCommissionType(t *testing.T) {
	_, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: [AAPL]
start_date: 2023-01-01
end_date: 2023-06-30
commission_type: robinhood
`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}

func TestParseRunConfigUnknownStrategy(t *testing.T) {
	_, err := ParseRunConfig([]byte(`
strategy_type: momentum
symbols: [AAPL]
start_date: 2023-01-01
end_date: 2023-06-30
`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnknownStrategy))
}

func TestParseRunConfigNoSymbols(t *testing.T) {
	_, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: []
start_date: 2023-01-01
end_date: 2023-06-30
`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeNoSymbols))
}

func TestParseRunConfigInvertedDates(t *testing.T) {
	_, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: [AAPL]
start_date: 2023-06-30
end_date: 2023-01-01
`))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidDateRange))
}

func TestParseRunConfigBadCommission(t *testing.T) {
	_, err := ParseRunConfig([]byte(`
strategy_type: sma_crossover
symbols: [AAPL]
start_date: 2023-01-01
end_date: 2023-06-30
commission: 1.5
`))
	require.Error(t, err)
	assert.True(t, errors.IsConfigurationError(err))
}

func TestParseRunConfigMalformedYAML(t *testing.T) {
	_, err := ParseRunConfig([]byte("strategy_type: [unclosed"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeInvalidConfiguration))
}
