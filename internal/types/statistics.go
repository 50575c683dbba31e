package types

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunStatus is the terminal state of a backtest run.
type RunStatus string

const (
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// ProfitFactorSentinel is reported instead of +Inf when a run has gross
// profit but zero gross loss, so serialized output stays bounded.
const ProfitFactorSentinel = 999.99

// EquityPoint is one per-bar snapshot of total portfolio value. The sequence
// is append-only and strictly time-ordered.
type EquityPoint struct {
	Date time.Time `yaml:"date" json:"date" csv:"date"`
	// Value is the total portfolio value (cash + position at close).
	Value float64 `yaml:"value" json:"value" csv:"value"`
	// Drawdown is the decline from the running peak in percent, >= 0.
	Drawdown float64 `yaml:"drawdown" json:"drawdown" csv:"drawdown"`
}

type TradeHoldingTime struct {
	// Minimum holding time of a trade in hours
	Min float64 `yaml:"min" json:"min"`
	// Maximum holding time of a trade in hours
	Max float64 `yaml:"max" json:"max"`
	// Average holding time of a trade in hours
	Avg float64 `yaml:"avg" json:"avg"`
}

// BacktestMetrics is the derived, read-only performance snapshot computed
// once at run end. Percentage-like values are rounded to 4 decimal places,
// currency values to 2.
type BacktestMetrics struct {
	TotalReturn  float64 `yaml:"total_return" json:"total_return"`
	CAGR         float64 `yaml:"cagr" json:"cagr"`
	MDD          float64 `yaml:"mdd" json:"mdd"`
	SharpeRatio  float64 `yaml:"sharpe_ratio" json:"sharpe_ratio"`
	SortinoRatio float64 `yaml:"sortino_ratio" json:"sortino_ratio"`
	CalmarRatio  float64 `yaml:"calmar_ratio" json:"calmar_ratio"`

	TotalTrades   int     `yaml:"total_trades" json:"total_trades"`
	WinningTrades int     `yaml:"winning_trades" json:"winning_trades"`
	LosingTrades  int     `yaml:"losing_trades" json:"losing_trades"`
	// WinRate is the fraction of closed trades with positive PnL.
	WinRate      float64 `yaml:"win_rate" json:"win_rate"`
	AvgWin       float64 `yaml:"avg_win" json:"avg_win"`
	AvgLoss      float64 `yaml:"avg_loss" json:"avg_loss"`
	ProfitFactor float64 `yaml:"profit_factor" json:"profit_factor"`

	// BuyAndHoldPnL is the benchmark profit of buying the full initial
	// capital at the first reporting close and holding to the last.
	BuyAndHoldPnL float64 `yaml:"buy_and_hold_pnl" json:"buy_and_hold_pnl"`
	// HoldingTime summarizes how long round-trips stayed open.
	HoldingTime TradeHoldingTime `yaml:"holding_time" json:"holding_time"`
}

// BacktestResult is the sole contract surface between the engine core and
// its callers. A failed run carries only the status and error message.
type BacktestResult struct {
	// ID is the unique identifier for this backtest run.
	ID string `yaml:"id" json:"id"`
	// Timestamp is when this backtest run was executed.
	Timestamp time.Time `yaml:"timestamp" json:"timestamp"`
	Status    RunStatus `yaml:"status" json:"status"`
	Symbol    string    `yaml:"symbol" json:"symbol"`
	Strategy  string    `yaml:"strategy" json:"strategy"`

	FinalValue  float64         `yaml:"final_value" json:"final_value"`
	Metrics     BacktestMetrics `yaml:"metrics" json:"metrics"`
	EquityCurve []EquityPoint   `yaml:"equity_curve" json:"equity_curve"`
	Trades      []Trade         `yaml:"trades" json:"trades"`

	ExecutionTimeSeconds float64 `yaml:"execution_time_seconds" json:"execution_time_seconds"`
	Error                string  `yaml:"error,omitempty" json:"error,omitempty"`
}

// WriteBacktestResult writes a result to a YAML file.
func WriteBacktestResult(path string, result BacktestResult) error {
	// Marshal the struct to YAML
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to marshal backtest result to YAML: %w", err)
	}

	// Write the YAML data to the file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write backtest result to file: %w", err)
	}

	return nil
}
