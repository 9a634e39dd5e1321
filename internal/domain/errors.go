package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the four failure categories the core distinguishes.
// Callers classify with errors.Is; transport adapters map each category to
// a response status. Wrapped messages carry the field, rule, or value that
// caused the failure.
var (
	// ErrInvalidInput marks malformed or out-of-range arguments. Detected
	// before any I/O, never retried.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound marks a referenced entity that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrRuleViolation marks a business-rule rejection. Retrying with the
	// same input reproduces the same violation.
	ErrRuleViolation = errors.New("business rule violation")

	// ErrUnavailable marks a storage or collaborator failure. May be
	// retried by the caller with backoff.
	ErrUnavailable = errors.New("storage unavailable")
)

// InvalidInputf wraps ErrInvalidInput with a formatted reason.
func InvalidInputf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidInput}, args...)...)
}

// NotFoundf wraps ErrNotFound with a formatted reason.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrNotFound}, args...)...)
}

// RuleViolationf wraps ErrRuleViolation with a formatted reason.
func RuleViolationf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrRuleViolation}, args...)...)
}

// Unavailablef wraps ErrUnavailable with a formatted reason.
func Unavailablef(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrUnavailable}, args...)...)
}
