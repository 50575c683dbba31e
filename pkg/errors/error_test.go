package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCarriesCode(t *testing.T) {
	err := New(ErrCodeNoSymbols, "at least one symbol is required")

	assert.Equal(t, ErrCodeNoSymbols, GetCode(err))
	assert.True(t, HasCode(err, ErrCodeNoSymbols))
	assert.Contains(t, err.Error(), "at least one symbol")
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := Wrap(ErrCodeDataFetchFailed, "failed to fetch bars", cause)

	assert.True(t, HasCode(err, ErrCodeDataFetchFailed))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetCodeThroughWrappedChain(t *testing.T) {
	inner := New(ErrCodeInvalidStrategyConfig, "fast must be below slow")
	outer := fmt.Errorf("run aborted: %w", inner)

	// errors.As walks through plain fmt wrapping.
	assert.Equal(t, ErrCodeInvalidStrategyConfig, GetCode(outer))
}

func TestGetCodeUnknownForPlainErrors(t *testing.T) {
	assert.Equal(t, ErrCodeUnknown, GetCode(stderrors.New("boom")))
	assert.Equal(t, ErrCodeUnknown, GetCode(nil))
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, IsConfigurationError(New(ErrCodeInvalidDateRange, "")))
	assert.True(t, IsConfigurationError(New(ErrCodeUnknownStrategy, "")))
	assert.True(t, IsConfigurationError(New(ErrCodeInvalidStrategyConfig, "")))
	assert.False(t, IsConfigurationError(New(ErrCodeDataFetchFailed, "")))
	assert.False(t, IsConfigurationError(New(ErrCodeBacktestFailed, "")))
}

func TestIsDataError(t *testing.T) {
	assert.True(t, IsDataError(New(ErrCodeMissingColumns, "")))
	assert.True(t, IsDataError(NewInsufficientDataError(60, 30, "AAPL", "too short")))
	assert.False(t, IsDataError(New(ErrCodeInvalidDateRange, "")))
}

func TestInsufficientDataError(t *testing.T) {
	err := NewInsufficientDataError(60, 30, "AAPL", "not enough usable bars")

	require.True(t, IsInsufficientDataError(err))
	assert.Contains(t, err.Error(), "AAPL")
	assert.Contains(t, err.Error(), "30")
	assert.Contains(t, err.Error(), "60")

	wrapped := fmt.Errorf("symbol failed: %w", err)
	assert.True(t, IsInsufficientDataError(wrapped))
}
