package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidGSTIN             = errors.New("missing or invalid gstin")
	ErrNoCredentialsConfigured  = errors.New("no provider credentials configured")
	ErrAllCredentialsExhausted  = errors.New("all provider credentials attempted and failed")
	ErrCredentialsFileNotFound  = errors.New("credentials file not found")
	ErrDuplicateCredentialLabel = errors.New("duplicate credential label")
)

// ExhaustedError is returned when every credential in the pool was tried for one
// lookup and none succeeded. Last holds the final observed outcome.
type ExhaustedError struct {
	Attempts int
	Last     Outcome
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("%s (%d attempted, last outcome: %s)", ErrAllCredentialsExhausted, e.Attempts, e.Last)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrAllCredentialsExhausted
}
