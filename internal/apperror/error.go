package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type AppError struct {
	Code       string      // Error code (e.g., VALIDATION_ERROR)
	Message    string      // User-friendly message
	HTTPStatus int         // HTTP status code
	Details    interface{} // Structured payload, e.g. compliance violations
	Err        error       // Wrapped original error (optional)
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap implements errors.Unwrap interface for errors.Is/As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches any AppError carrying the same code, so wrapped copies of a
// sentinel still satisfy errors.Is(err, ErrValidation).
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError without wrapping
func New(code, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap creates an AppError that wraps an existing error
func Wrap(err error, code, message string, httpStatus int) *AppError {
	if err == nil {
		return nil
	}
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// WithMessage returns a copy of e carrying a more specific message.
func (e *AppError) WithMessage(format string, args ...interface{}) *AppError {
	cp := *e
	cp.Message = fmt.Sprintf(format, args...)
	return &cp
}

// WithDetails returns a copy of e carrying a structured payload.
func (e *AppError) WithDetails(details interface{}) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

// Validation builds a request-scoped validation error.
func Validation(format string, args ...interface{}) *AppError {
	return ErrValidation.WithMessage(format, args...)
}

// Configuration builds a missing or invalid configuration error.
func Configuration(format string, args ...interface{}) *AppError {
	return ErrConfiguration.WithMessage(format, args...)
}

// As extracts the AppError from err. Errors that are not AppErrors are
// reported as ErrInternal wrapping the original.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeInternalError, ErrInternal.Message, http.StatusInternalServerError)
}
