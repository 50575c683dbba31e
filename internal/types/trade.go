package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position represents the single open holding for a symbol. At most one
// position is open per symbol at a time; no pyramiding and no shorts.
type Position struct {
	Symbol     string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	EntryPrice float64   `csv:"entry_price" json:"entry_price" yaml:"entry_price"`
	EntryDate  time.Time `csv:"entry_date" json:"entry_date" yaml:"entry_date"`
	Quantity   int64     `csv:"quantity" json:"quantity" yaml:"quantity"`
	Open       bool      `csv:"open" json:"open" yaml:"open"`
}

// UnrealizedPnLPercent returns (price - entry) / entry for the open position.
// Returns 0 when the position is closed or the entry price is invalid.
func (p *Position) UnrealizedPnLPercent(price float64) float64 {
	if !p.Open || p.EntryPrice <= 0 {
		return 0
	}

	entry := decimal.NewFromFloat(p.EntryPrice)
	current := decimal.NewFromFloat(price)
	result, _ := current.Sub(entry).Div(entry).Float64()

	return result
}

// Trade is one closed round-trip. Appended to the trade history only when a
// position is fully closed; immutable thereafter.
type Trade struct {
	EntryDate  time.Time `csv:"entry_date" json:"entry_date" yaml:"entry_date"`
	ExitDate   time.Time `csv:"exit_date" json:"exit_date" yaml:"exit_date"`
	Symbol     string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	EntryPrice float64   `csv:"entry_price" json:"entry_price" yaml:"entry_price"`
	ExitPrice  float64   `csv:"exit_price" json:"exit_price" yaml:"exit_price"`
	Quantity   int64     `csv:"quantity" json:"quantity" yaml:"quantity"`
	// PnL is the realized profit after the exit commission.
	PnL float64 `csv:"pnl" json:"pnl" yaml:"pnl"`
	// PnLPercent is (exit - entry) / entry x 100, gross of fees.
	PnLPercent float64 `csv:"pnl_percent" json:"pnl_percent" yaml:"pnl_percent"`
	// ExitReason records which exit path closed the position.
	ExitReason string `csv:"exit_reason" json:"exit_reason" yaml:"exit_reason"`
}

// HoldingHours returns the trade's holding time in hours.
func (t *Trade) HoldingHours() float64 {
	return t.ExitDate.Sub(t.EntryDate).Hours()
}
