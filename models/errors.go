package models

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a conversion failure by the step that failed.
type ErrorKind string

// Error kinds reported in logs, metrics and the X-Error-Kind response header.
const (
	KindLocate            ErrorKind = "LOCATE_ERROR"
	KindLaunch            ErrorKind = "LAUNCH_ERROR"
	KindTab               ErrorKind = "TAB_ERROR"
	KindNavigation        ErrorKind = "NAVIGATION_ERROR"
	KindNavigationTimeout ErrorKind = "NAVIGATION_TIMEOUT"
	KindPrint             ErrorKind = "PRINT_ERROR"
	KindInternal          ErrorKind = "INTERNAL_ERROR"

	// KindCleanup is never returned to callers; teardown failures are only logged.
	KindCleanup ErrorKind = "CLEANUP_WARNING"
)

// ConversionError is the single failure value returned by a conversion.
// It implements the error interface and supports error wrapping via Unwrap.
type ConversionError struct {
	Kind    ErrorKind
	Message string
	Err     error // wrapped original error
}

func (e *ConversionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ConversionError) Unwrap() error {
	return e.Err
}

// NewConversionError creates a new ConversionError.
func NewConversionError(kind ErrorKind, message string, err error) *ConversionError {
	return &ConversionError{Kind: kind, Message: message, Err: err}
}

// KindOf returns the kind of err, or KindInternal when err is not a ConversionError.
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindInternal
}
