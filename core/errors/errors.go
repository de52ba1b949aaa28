package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies an application-level error category. Business-rule
// failures get their own codes so callers can react to them; infrastructure
// failures all collapse into ErrInternalServer.
type ErrorCode string

const (
	// Generic / infrastructure
	ErrInternalServer     ErrorCode = "INTERNAL_SERVER_ERROR"
	ErrInvalidInput       ErrorCode = "INVALID_INPUT"
	ErrInvalidRequestData ErrorCode = "INVALID_REQUEST_DATA"
	ErrNotFound           ErrorCode = "NOT_FOUND"
	ErrAlreadyExists      ErrorCode = "ALREADY_EXISTS"
	ErrCreateFailed       ErrorCode = "CREATE_FAILED"
	ErrGetFailed          ErrorCode = "GET_FAILED"
	ErrUpdateFailed       ErrorCode = "UPDATE_FAILED"
	ErrDeleteFailed       ErrorCode = "DELETE_FAILED"

	// Auth
	ErrUnauthorized               ErrorCode = "UNAUTHORIZED"
	ErrForbidden                  ErrorCode = "FORBIDDEN"
	ErrTokenExpired               ErrorCode = "TOKEN_EXPIRED"
	ErrInvalidTokenFormat         ErrorCode = "INVALID_TOKEN_FORMAT"
	ErrMissingAuthorizationHeader ErrorCode = "MISSING_AUTHORIZATION_HEADER"

	// Booking engine business rules
	ErrClassFull     ErrorCode = "CLASS_FULL"
	ErrNoCapacity    ErrorCode = "NO_CAPACITY"
	ErrPastCutoff    ErrorCode = "PAST_CUTOFF"
	ErrAlreadyBooked ErrorCode = "ALREADY_BOOKED"
	ErrInstanceGone  ErrorCode = "INSTANCE_GONE"
)

// AppError is the error type every service returns. Code drives the HTTP
// mapping in the base controller; Err keeps the underlying cause for logs.
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details any       `json:"details,omitempty"`
	Err     error     `json:"-"`
}

func NewAppError(code ErrorCode, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetails attaches structured details for the response body.
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// IsCode reports whether err is an *AppError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var ae *AppError
	if stderrors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}

func New(text string) error {
	return stderrors.New(text)
}

func Is(err, target error) bool {
	return stderrors.Is(err, target)
}

func As(err error, target any) bool {
	return stderrors.As(err, target)
}
