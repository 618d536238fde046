package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// ErrSourceUnavailable means the input workbook is missing or unreadable.
	// This is the only fatal condition in the pipeline: with no rows there is
	// nothing to enrich, so the load halts instead of serving partial data.
	ErrSourceUnavailable = errors.New("source file unavailable")

	// ErrEmptySource means the file opened but contained no data rows.
	ErrEmptySource = errors.New("source contains no data rows")

	// ErrRoleUnbound means no column matched a semantic role. Feature-level
	// and non-fatal: consumers report "data not available" instead of raising.
	ErrRoleUnbound = errors.New("no column bound for role")

	// ErrSessionNotFound is returned for an unknown chat session.
	ErrSessionNotFound = errors.New("session not found")

	// ErrUnknownIntent is returned when a chat question matches no intent.
	ErrUnknownIntent = errors.New("question not understood")
)

// NewSourceError wraps a file-level failure with its path
func NewSourceError(path string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
}

// NewRoleUnboundError names the missing role
func NewRoleUnboundError(role string) error {
	return fmt.Errorf("%w: %s", ErrRoleUnbound, role)
}

// IsSourceError reports whether err is fatal for the load.
func IsSourceError(err error) bool {
	return errors.Is(err, ErrSourceUnavailable) || errors.Is(err, ErrEmptySource)
}
