package apperrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Process exit codes used by cmd/sysmoni.
const (
	ExitSuccess       = 0
	ExitErrorGeneric  = 1
	ExitErrorTimeout  = 2
	ExitErrorConfig   = 4
	ExitErrorCanceled = 130
)

// ErrProcessVanished reports that a pid disappeared between enumeration and
// the detail read. It is expected and never fails a cycle.
var ErrProcessVanished = errors.New("process vanished")

// SourceKind classifies a SourceError.
type SourceKind int

const (
	// SourceUnavailable means the metric could not be read this cycle.
	SourceUnavailable SourceKind = iota
	// ParseError means the metric was read but its content was malformed.
	ParseError
)

func (k SourceKind) String() string {
	switch k {
	case SourceUnavailable:
		return "unavailable"
	case ParseError:
		return "parse error"
	default:
		return "unknown"
	}
}

// SourceError wraps a failed metrics read together with the snapshot field
// it was meant to populate.
type SourceError struct {
	Field string
	Kind  SourceKind
	Cause error
}

func (e *SourceError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("%s: %s", e.Field, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Field, e.Kind, e.Cause)
}

func (e *SourceError) Unwrap() error { return e.Cause }

// Unavailable returns a SourceError of kind SourceUnavailable.
func Unavailable(field string, cause error) error {
	return &SourceError{Field: field, Kind: SourceUnavailable, Cause: cause}
}

// Malformed returns a SourceError of kind ParseError.
func Malformed(field string, cause error) error {
	return &SourceError{Field: field, Kind: ParseError, Cause: cause}
}

// ShutdownTimeoutError is returned when a background component did not exit
// within its stop deadline.
type ShutdownTimeoutError struct {
	Component string
	Limit     time.Duration
}

func (e *ShutdownTimeoutError) Error() string {
	return fmt.Sprintf("%s did not stop within %s", e.Component, e.Limit)
}

// ConfigError represents an invalid flag, environment value or option.
type ConfigError struct {
	Message string
}

func (e ConfigError) Error() string { return e.Message }

// NewConfigError creates a ConfigError with a formatted message.
func NewConfigError(format string, a ...any) error {
	return ConfigError{Message: fmt.Sprintf(format, a...)}
}

// WrapError wraps err with a formatted context message. It returns nil when
// err is nil.
func WrapError(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// IsContextError reports whether err is a context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ExitCode maps an error returned by the command to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var cfgErr ConfigError
	var timeoutErr *ShutdownTimeoutError
	switch {
	case errors.As(err, &cfgErr):
		return ExitErrorConfig
	case errors.As(err, &timeoutErr):
		return ExitErrorTimeout
	case errors.Is(err, context.Canceled):
		return ExitErrorCanceled
	default:
		return ExitErrorGeneric
	}
}
