package errors

import (
	"errors"
	"fmt"
)

// State token validation outcomes. The messages are part of the contract with
// callers and must not change.
var (
	ErrInvalidStateFormat    = errors.New("Invalid state format")
	ErrProviderMismatch      = errors.New("Provider ID mismatch in state")
	ErrInvalidStateSignature = errors.New("Invalid state signature")
	ErrStateExpired          = errors.New("State token has expired")
	ErrStateNotFound         = errors.New("State token not found or already used")
	ErrInvalidStateToken     = errors.New("Invalid state token")
)

// General errors
var (
	ErrInvalidParameter   = errors.New("invalid parameter")
	ErrNotFound           = errors.New("not found")
	ErrUnknownProvider    = errors.New("unknown provider")
	ErrPreconditionFailed = errors.New("precondition failed")
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
