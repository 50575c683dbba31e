// Package indicator provides the pure signal calculations used by the
// strategies: simple and exponential moving averages over a close series,
// and the crossover detector between a fast and a slow average.
package indicator

import (
	"math"

	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// SMA calculates the simple moving average over values with the given period.
// The result is aligned with the input: indices below period-1 are NaN.
func SMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	result := make([]float64, len(values))

	var windowSum float64

	for i, value := range values {
		windowSum += value
		if i >= period {
			windowSum -= values[i-period]
		}

		if i < period-1 {
			result[i] = math.NaN()
			continue
		}

		result[i] = windowSum / float64(period)
	}

	return result, nil
}

// EMA calculates the exponential moving average over values with the given
// period. The series is defined from the first point, seeded with the first
// value, using the standard multiplier 2/(period+1).
func EMA(values []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, errors.Newf(errors.ErrCodeInvalidPeriod, "period must be a positive integer, got %d", period)
	}

	result := make([]float64, len(values))
	if len(values) == 0 {
		return result, nil
	}

	multiplier := 2.0 / (float64(period) + 1.0)

	result[0] = values[0]
	for i := 1; i < len(values); i++ {
		result[i] = (values[i]-result[i-1])*multiplier + result[i-1]
	}

	return result, nil
}
