package apperror

import "net/http"

var (
	ErrValidation = New(
		CodeValidation,
		"The provided input is invalid",
		http.StatusBadRequest,
	)

	ErrComplianceLimitExceeded = New(
		CodeComplianceLimit,
		"Overtime request violates one or more compliance rules",
		http.StatusUnprocessableEntity,
	)

	ErrConcurrentModification = New(
		CodeConcurrentModification,
		"The resource was modified by another request",
		http.StatusConflict,
	)

	ErrConfiguration = New(
		CodeConfiguration,
		"No configuration available for the requested jurisdiction",
		http.StatusUnprocessableEntity,
	)

	ErrNotFound = New(
		CodeNotFound,
		"Resource not found",
		http.StatusNotFound,
	)

	ErrForbidden = New(
		CodeForbidden,
		"You do not have permission to access this resource",
		http.StatusForbidden,
	)

	ErrUnauthorized = New(
		CodeUnauthorized,
		"Authentication is required",
		http.StatusUnauthorized,
	)

	ErrInternal = New(
		CodeInternalError,
		"An unexpected error occurred",
		http.StatusInternalServerError,
	)

	// ErrNegativeNetPay is raised when deductions exceed gross income.
	ErrNegativeNetPay = New(
		CodeNegativeNetPay,
		"Deductions exceed gross income",
		http.StatusUnprocessableEntity,
	)
)
