package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Source errors
	ErrSourceUnreachable = errors.New("order source unreachable")
	ErrSourceStatus      = fmt.Errorf("%w: unexpected status", ErrSourceUnreachable)
	ErrNonTabular        = errors.New("order source is not tabular")
	ErrPayloadTooLarge   = errors.New("order source payload too large")
	ErrEmptySource       = errors.New("order source has no rows")

	// Lookup table errors
	ErrInvalidStatusTable = errors.New("invalid status table")
)

// Error constructors with context
func NewSourceStatusError(status int, url string) error {
	return fmt.Errorf("%w %d from %s", ErrSourceStatus, status, url)
}

func NewNonTabularError(mime string) error {
	return fmt.Errorf("%w: got %s", ErrNonTabular, mime)
}

func NewStatusTableError(table, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidStatusTable, table, reason)
}

// Error checking helpers
func IsSourceUnreachable(err error) bool {
	return errors.Is(err, ErrSourceUnreachable)
}

func IsNonTabular(err error) bool {
	return errors.Is(err, ErrNonTabular)
}

func IsEmptySource(err error) bool {
	return errors.Is(err, ErrEmptySource)
}
