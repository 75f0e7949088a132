package ipcmap

import (
	"errors"
	"fmt"
)

// Error represents an ipcmap error with an error code.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error // wrapped OS error, nil for non-system failures
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("ipcmap: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("ipcmap: %s", e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode classifies construction failures.
type ErrorCode int

const (
	// ModeError indicates the requested access mode is not one of
	// ReadOnly, ReadWrite or CopyOnWrite.
	ModeError ErrorCode = iota + 1

	// SizeError indicates automatic size resolution failed (offset at
	// or beyond the end of the resource) or the requested size does
	// not fit the platform's addressable range.
	SizeError

	// SystemError indicates an underlying OS call failed. The OS
	// error is available through Unwrap.
	SystemError
)

func newModeError(mode Mode) error {
	return &Error{Code: ModeError, Message: fmt.Sprintf("invalid mode %d", int(mode))}
}

func newSizeError(msg string) error {
	return &Error{Code: SizeError, Message: msg}
}

func newSystemError(op string, err error) error {
	return &Error{Code: SystemError, Message: op, Err: err}
}

// IsModeError reports whether err is an Error with code ModeError.
func IsModeError(err error) bool { return hasCode(err, ModeError) }

// IsSizeError reports whether err is an Error with code SizeError.
func IsSizeError(err error) bool { return hasCode(err, SizeError) }

// IsSystemError reports whether err is an Error with code SystemError.
func IsSystemError(err error) bool { return hasCode(err, SystemError) }

func hasCode(err error, code ErrorCode) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}
