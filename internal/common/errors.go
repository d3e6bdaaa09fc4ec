// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Common application errors.
var (
	// Portal errors.
	ErrPortalRejected    = errors.New("portal rejected the request")
	ErrPortalUnavailable = errors.New("portal unavailable")

	// Authentication errors.
	ErrMissingCredentials = errors.New("email and password are required")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNoChallenge        = errors.New("no MFA challenge in progress")
	ErrChallengeExpired   = errors.New("MFA challenge expired")
	ErrEmptyCode          = errors.New("MFA code is empty")

	// Report errors.
	ErrNoRecords    = errors.New("no document records returned")
	ErrInvalidRange = errors.New("invalid date range")
	ErrWriteFailed  = errors.New("failed to write report")

	// Configuration errors.
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

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

// UserMessage returns the friendliest description available for err.
func UserMessage(err error) string {
	var userErr *UserError
	if errors.As(err, &userErr) {
		return userErr.UserMessage
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
