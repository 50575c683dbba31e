package types

import "time"

// Bar is one daily OHLCV candle for a single symbol. Bars are immutable once
// constructed and are consumed as a chronological, duplicate-free sequence.
type Bar struct {
	Symbol string    `csv:"symbol" json:"symbol" yaml:"symbol"`
	Time   time.Time `csv:"time" json:"time" yaml:"time"`
	Open   float64   `csv:"open" json:"open" yaml:"open"`
	High   float64   `csv:"high" json:"high" yaml:"high"`
	Low    float64   `csv:"low" json:"low" yaml:"low"`
	Close  float64   `csv:"close" json:"close" yaml:"close"`
	Volume float64   `csv:"volume" json:"volume" yaml:"volume"`
}

// Date returns the bar's calendar day truncated to UTC midnight.
func (b Bar) Date() time.Time {
	return time.Date(b.Time.Year(), b.Time.Month(), b.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// HasCompleteColumns reports whether every OHLCV field carries a usable value.
// Volume can legitimately be zero on illiquid days; prices cannot.
func (b Bar) HasCompleteColumns() bool {
	return b.Open > 0 && b.High > 0 && b.Low > 0 && b.Close > 0 && b.Volume >= 0
}

// CleanBars sorts bars chronologically and drops duplicate dates, keeping the
// first occurrence. Bars with incomplete columns are dropped as well.
func CleanBars(bars []Bar) []Bar {
	cleaned := make([]Bar, 0, len(bars))
	seen := make(map[time.Time]bool, len(bars))

	for _, bar := range bars {
		if !bar.HasCompleteColumns() {
			continue
		}

		day := bar.Date()
		if seen[day] {
			continue
		}

		seen[day] = true

		cleaned = append(cleaned, bar)
	}

	// Insertion sort keeps already-ordered feeds cheap.
	for i := 1; i < len(cleaned); i++ {
		for j := i; j > 0 && cleaned[j].Time.Before(cleaned[j-1].Time); j-- {
			cleaned[j], cleaned[j-1] = cleaned[j-1], cleaned[j]
		}
	}

	return cleaned
}

// Closes extracts the close price series from a bar sequence.
func Closes(bars []Bar) []float64 {
	closes := make([]float64, len(bars))
	for i, bar := range bars {
		closes[i] = bar.Close
	}

	return closes
}
