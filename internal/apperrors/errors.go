package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
// The store returns it when the (currency, date) key of a rate is already taken.
var ErrDuplicate = errors.New("resource already exists")

// ErrInvalidDate indicates a date token that matches none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// ErrInvalidCurrency indicates a currency code that is not three uppercase letters.
var ErrInvalidCurrency = errors.New("invalid currency")

// ErrMalformedValue indicates a rate value that is not a positive decimal.
var ErrMalformedValue = errors.New("malformed value")

// ErrSourceUnavailable indicates a network or HTTP failure talking to the live source.
var ErrSourceUnavailable = errors.New("source unavailable")

// ErrIOFailure indicates a file system failure on the CSV archive.
var ErrIOFailure = errors.New("io failure")

// AppError carries a status-like code alongside a wrapped cause.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError wrapping err.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}
