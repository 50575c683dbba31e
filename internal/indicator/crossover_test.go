package indicator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCrossoverGoldenCross(t *testing.T) {
	fast := []float64{1, 2, 4}
	slow := []float64{3, 3, 3}

	assert.Equal(t, 0, CrossoverAt(fast, slow, 1))
	assert.Equal(t, 1, CrossoverAt(fast, slow, 2))
}

func TestCrossoverDeathCross(t *testing.T) {
	fast := []float64{5, 4, 2}
	slow := []float64{3, 3, 3}

	assert.Equal(t, -1, CrossoverAt(fast, slow, 2))
}

func TestCrossoverTouchThenCross(t *testing.T) {
	// Equality on the previous bar still counts as a cross on this bar.
	fast := []float64{3, 4}
	slow := []float64{3, 3}

	assert.Equal(t, 1, CrossoverAt(fast, slow, 1))
}

func TestCrossoverNaNYieldsZero(t *testing.T) {
	fast := []float64{math.NaN(), 4, 5}
	slow := []float64{3, 3, 3}

	assert.Equal(t, 0, CrossoverAt(fast, slow, 1))
	assert.Equal(t, 0, CrossoverAt(slow, fast, 1))
}

func TestCrossoverBounds(t *testing.T) {
	fast := []float64{1, 2}
	slow := []float64{3, 1}

	assert.Equal(t, 0, CrossoverAt(fast, slow, 0))
	assert.Equal(t, 0, CrossoverAt(fast, slow, 5))
	assert.Equal(t, 0, CrossoverAt(fast, slow, -1))
}

func TestCrossoverSeries(t *testing.T) {
	fast := []float64{1, 4, 4, 2, 2}
	slow := []float64{3, 3, 3, 3, 3}

	result, err := Crossover(fast, slow)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 0, -1, 0}, result)
}

func TestCrossoverLengthMismatch(t *testing.T) {
	_, err := Crossover([]float64{1, 2}, []float64{1})
	assert.Error(t, err)
}

func TestCrossoverNoRetriggerWhileAbove(t *testing.T) {
	fast := []float64{1, 4, 5, 6}
	slow := []float64{3, 3, 3, 3}

	result, err := Crossover(fast, slow)
	require.NoError(t, err)

	// The cross fires once on the crossing bar only.
	assert.Equal(t, []int{0, 1, 0, 0}, result)
}
