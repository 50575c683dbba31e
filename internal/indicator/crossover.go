package indicator

import (
	"math"

	"github.com/rxtech-lab/sentiment-backtest/pkg/errors"
)

// CrossoverAt compares a fast and a slow average at index i. It returns +1
// on the bar where fast crosses from <= slow to > slow, -1 on the mirror
// case, 0 otherwise. Only the current and the immediately preceding bar are
// consulted; any NaN involved yields 0.
func CrossoverAt(fast, slow []float64, i int) int {
	if i < 1 || i >= len(fast) || i >= len(slow) {
		return 0
	}

	if math.IsNaN(fast[i]) || math.IsNaN(slow[i]) || math.IsNaN(fast[i-1]) || math.IsNaN(slow[i-1]) {
		return 0
	}

	if fast[i] > slow[i] && fast[i-1] <= slow[i-1] {
		return 1
	}

	if fast[i] < slow[i] && fast[i-1] >= slow[i-1] {
		return -1
	}

	return 0
}

// Crossover computes the full crossover series between a fast and a slow
// average. Index 0 is always 0 since there is no preceding bar.
func Crossover(fast, slow []float64) ([]int, error) {
	if len(fast) != len(slow) {
		return nil, errors.Newf(errors.ErrCodeInvalidParameter,
			"fast and slow series length mismatch: %d vs %d", len(fast), len(slow))
	}

	result := make([]int, len(fast))
	for i := range result {
		result[i] = CrossoverAt(fast, slow, i)
	}

	return result, nil
}
