package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidRiskLimits    ErrorCode = 102
	ErrCodeInvalidStopLoss      ErrorCode = 103
	ErrCodeInvalidTakeProfit    ErrorCode = 104
	ErrCodeInvalidType          ErrorCode = 105
	ErrCodeInsufficientData     ErrorCode = 106
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidParamRange    ErrorCode = 110
	ErrCodeUnknownParameter     ErrorCode = 111
	ErrCodeInvalidThreshold     ErrorCode = 112

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound   ErrorCode = 200
	ErrCodeInvalidCandles ErrorCode = 201
	ErrCodeQueryFailed    ErrorCode = 202
	ErrCodeStoreFailed    ErrorCode = 203
	ErrCodeNoDataFound    ErrorCode = 204

	// Indicator errors (300-399)
	ErrCodeIndicatorNotFound      ErrorCode = 300
	ErrCodeIndicatorAlreadyExists ErrorCode = 301
	ErrCodeIndicatorCalculation   ErrorCode = 302

	// Decision errors (400-499)
	ErrCodeProviderFailed  ErrorCode = 400
	ErrCodeProviderTimeout ErrorCode = 401
	ErrCodeInvalidDecision ErrorCode = 402

	// Backtest errors (600-699)
	ErrCodeBacktestInitFailed  ErrorCode = 601
	ErrCodeBacktestConfigError ErrorCode = 602
	ErrCodeBacktestCancelled   ErrorCode = 603

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimeframe      ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704

	// Gate/Sweep errors (900-999)
	ErrCodeGateBudgetExceeded  ErrorCode = 900
	ErrCodeSweepBudgetExceeded ErrorCode = 901
	ErrCodeHistoryFailed       ErrorCode = 902
)
