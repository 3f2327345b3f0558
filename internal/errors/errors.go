package errors

import (
	"errors"
	"fmt"
)

// Common error types for the activity session service
var (
	// Configuration errors
	ErrMissingClientID     = errors.New("client id is not configured")
	ErrMissingClientSecret = errors.New("client secret is not configured")
	ErrInvalidRedisURL     = errors.New("invalid redis url")

	// Token exchange errors
	ErrMissingCode      = errors.New("authorization code is required")
	ErrExchangeRejected = errors.New("token exchange rejected")

	// Session value errors
	ErrUnknownValueKey = errors.New("unknown session value key")
	ErrStoreFailure    = errors.New("session value store failure")

	// General errors
	ErrInternal = errors.New("internal error")
)

// Wrapf wraps an error with context using fmt.Errorf
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Message returns err's text, or fallback when err is nil or carries no text.
func Message(err error, fallback string) string {
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
