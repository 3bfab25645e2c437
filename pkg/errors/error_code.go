package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidCommand       ErrorCode = 102
	ErrCodeInvalidTakeProfit    ErrorCode = 103
	ErrCodeInvalidStopLoss      ErrorCode = 104
	ErrCodeInvalidVolume        ErrorCode = 105
	ErrCodeInvalidPeriod        ErrorCode = 108
	ErrCodeMissingParameter     ErrorCode = 109
	ErrCodeInvalidVersion       ErrorCode = 110

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound          ErrorCode = 200
	ErrCodeDataSourceUnavailable ErrorCode = 201
	ErrCodeQueryFailed           ErrorCode = 202
	ErrCodeExportFailed          ErrorCode = 203

	// Indicator errors (300-399)
	ErrCodeIndicatorCalculation ErrorCode = 302

	// Strategy errors (400-499)
	ErrCodeStrategyConfigError ErrorCode = 401
	ErrCodeVersionMismatch     ErrorCode = 404

	// Trading errors (500-599)
	ErrCodeOrderFailed         ErrorCode = 500
	ErrCodeTradeNotFound       ErrorCode = 501
	ErrCodeVenueDispatchFailed ErrorCode = 502
	ErrCodeVenueTimeout        ErrorCode = 503
	ErrCodeCommandRejected     ErrorCode = 504
	ErrCodeUnsupportedAction   ErrorCode = 505
	ErrCodeVenueNotConnected   ErrorCode = 506
	ErrCodeChannelClosed       ErrorCode = 507

	// Market data errors (700-799)
	ErrCodeMarketDataFetchFailed ErrorCode = 700
	ErrCodeMarketDataParseFailed ErrorCode = 702
	ErrCodeInvalidTimespan       ErrorCode = 703
	ErrCodeInvalidProvider       ErrorCode = 704
	ErrCodeFeedStale             ErrorCode = 705
	ErrCodeInsufficientData      ErrorCode = 706

	// Callback errors (800-899)
	ErrCodeCallbackFailed ErrorCode = 800

	// Ledger errors (900-999)
	ErrCodePersistenceFailed  ErrorCode = 900
	ErrCodeVersionConflict    ErrorCode = 901
	ErrCodeInvariantViolation ErrorCode = 902
	ErrCodeAccountNotFound    ErrorCode = 903
	ErrCodeAdvisoryFailed     ErrorCode = 950
)
