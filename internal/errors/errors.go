package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status code
type AppError struct {
	Code       string // Machine-readable error code
	Message    string // Human-readable error message
	StatusCode int    // HTTP status code
	Err        error  // Underlying error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (underlying: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code, message string, statusCode int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Err:        err,
	}
}

// As extracts an AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// HasCode reports whether err carries an AppError with the given code
func HasCode(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}

// Error codes shared with API clients
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidation         = "VALIDATION_ERROR"
	CodeMissingHeader      = "MISSING_HEADER"
	CodeConfiguration      = "CONFIGURATION_ERROR"
	CodePromocodeRejected  = "PROMOCODE_REJECTED"
	CodeQuoteNotFound      = "QUOTE_NOT_FOUND"
	CodeQuoteExpired       = "QUOTE_EXPIRED"
	CodeSubmissionNotFound = "SUBMISSION_NOT_FOUND"
	CodeDuplicateRequest   = "DUPLICATE_REQUEST"
	CodeDatabase           = "DATABASE_ERROR"
	CodeQueue              = "QUEUE_ERROR"
	CodeRateUnavailable    = "RATE_UNAVAILABLE"
	CodeInternal           = "INTERNAL_ERROR"
)

// Common error constructors

// ErrInvalidRequest creates an invalid request error
func ErrInvalidRequest(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// ErrValidation creates a validation error
func ErrValidation(field, reason string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    fmt.Sprintf("Validation failed for field '%s': %s", field, reason),
		StatusCode: http.StatusBadRequest,
	}
}

// ErrMissingHeader creates a missing header error
func ErrMissingHeader(headerName string) *AppError {
	return &AppError{
		Code:       CodeMissingHeader,
		Message:    fmt.Sprintf("Required header '%s' is missing", headerName),
		StatusCode: http.StatusBadRequest,
	}
}

// ErrConfiguration signals missing or malformed reference data such as an
// unknown currency or a non-positive rate.
func ErrConfiguration(subject, reason string) *AppError {
	return &AppError{
		Code:       CodeConfiguration,
		Message:    fmt.Sprintf("Invalid reference data for '%s': %s", subject, reason),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// ErrPromocodeRejected creates a recoverable promocode rejection
func ErrPromocodeRejected(code, reason string) *AppError {
	return &AppError{
		Code:       CodePromocodeRejected,
		Message:    fmt.Sprintf("Promocode '%s' rejected: %s", code, reason),
		StatusCode: http.StatusUnprocessableEntity,
	}
}

// ErrQuoteNotFound creates a quote not found error
func ErrQuoteNotFound(quoteID string) *AppError {
	return &AppError{
		Code:       CodeQuoteNotFound,
		Message:    fmt.Sprintf("Quote '%s' not found or expired", quoteID),
		StatusCode: http.StatusNotFound,
	}
}

// ErrQuoteExpired creates a quote expired error
func ErrQuoteExpired(quoteID string) *AppError {
	return &AppError{
		Code:       CodeQuoteExpired,
		Message:    fmt.Sprintf("Quote '%s' has expired", quoteID),
		StatusCode: http.StatusBadRequest,
	}
}

// ErrSubmissionNotFound creates a submission not found error
func ErrSubmissionNotFound(submissionID string) *AppError {
	return &AppError{
		Code:       CodeSubmissionNotFound,
		Message:    fmt.Sprintf("Submission '%s' not found", submissionID),
		StatusCode: http.StatusNotFound,
	}
}

// ErrDuplicateRequest creates a duplicate request error
func ErrDuplicateRequest(idempotencyKey string) *AppError {
	return &AppError{
		Code:       CodeDuplicateRequest,
		Message:    fmt.Sprintf("Request with idempotency key '%s' already exists", idempotencyKey),
		StatusCode: http.StatusConflict,
	}
}

// ErrDatabaseOperation creates a database operation error
func ErrDatabaseOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeDatabase,
		Message:    fmt.Sprintf("Database operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrQueueOperation creates a queue operation error
func ErrQueueOperation(operation string, err error) *AppError {
	return &AppError{
		Code:       CodeQueue,
		Message:    fmt.Sprintf("Queue operation '%s' failed", operation),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrRateUnavailable creates an exchange rate lookup error
func ErrRateUnavailable(token string, err error) *AppError {
	return &AppError{
		Code:       CodeRateUnavailable,
		Message:    fmt.Sprintf("Exchange rate for '%s' is unavailable", token),
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// ErrInternalServer creates an internal server error
func ErrInternalServer(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

// ErrorResponse represents an error response structure
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details for API responses
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ToErrorResponse converts an AppError to an ErrorResponse
func ToErrorResponse(err *AppError) ErrorResponse {
	return ErrorResponse{
		Error: ErrorDetail{
			Code:    err.Code,
			Message: err.Message,
		},
	}
}
