package apperror

const (
	// Client errors (4xx)
	CodeValidation             = "VALIDATION_ERROR"
	CodeUnauthorized           = "UNAUTHORIZED"
	CodeForbidden              = "FORBIDDEN"
	CodeNotFound               = "NOT_FOUND"
	CodeComplianceLimit        = "COMPLIANCE_LIMIT_EXCEEDED"
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"
	CodeConfiguration          = "CONFIGURATION_ERROR"
	CodeTooManyRequests        = "TOO_MANY_REQUESTS"
	CodeNegativeNetPay         = "NEGATIVE_NET_PAY"

	// Server errors (5xx)
	CodeInternalError = "INTERNAL_ERROR"
)
