package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidOrder         ErrorCode = 102
	ErrCodeInvalidDateRange     ErrorCode = 103
	ErrCodeNoSymbols            ErrorCode = 104
	ErrCodeInvalidPeriod        ErrorCode = 105

	// Data errors (200-299)
	ErrCodeDataFetchFailed  ErrorCode = 200
	ErrCodeMissingColumns   ErrorCode = 201
	ErrCodeInsufficientData ErrorCode = 202
	ErrCodeDataParseFailed  ErrorCode = 203

	// Strategy errors (400-499)
	ErrCodeUnknownStrategy       ErrorCode = 400
	ErrCodeInvalidStrategyConfig ErrorCode = 401
	ErrCodeStrategyRuntimeError  ErrorCode = 402

	// Trading errors (500-599)
	ErrCodeOrderRejected    ErrorCode = 500
	ErrCodePositionNotOpen  ErrorCode = 501
	ErrCodeBrokerInvariant  ErrorCode = 502
	ErrCodeInsufficientCash ErrorCode = 503

	// Backtest errors (600-699)
	ErrCodeBacktestFailed     ErrorCode = 600
	ErrCodeBacktestInitFailed ErrorCode = 601
	ErrCodeJournalFailed      ErrorCode = 602
	ErrCodeResultsWriteFailed ErrorCode = 603
)
