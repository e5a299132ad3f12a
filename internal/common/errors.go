// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")

	// Carrier errors.
	ErrCarrierConnection = errors.New("carrier connection failed")

	// Ledger errors.
	ErrLedgerNotLoaded = errors.New("ledger window not loaded")
)

// CarrierAPIError is a transport-level failure talking to the carrier:
// a network fault or a non-2xx response.
type CarrierAPIError struct {
	Body       string
	Op         string
	StatusCode int
}

func (e *CarrierAPIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("carrier %s failed: %d - %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("carrier %s failed: %s", e.Op, e.Body)
}

// UserError represents an error that should be shown to the user.
type UserError struct {
	Err         error
	UserMessage string
}

func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.UserMessage, e.Err)
	}
	return e.UserMessage
}

func (e *UserError) Unwrap() error {
	return e.Err
}

// NewUserError creates a new user-friendly error.
func NewUserError(userMessage string, err error) error {
	return &UserError{
		UserMessage: userMessage,
		Err:         err,
	}
}
