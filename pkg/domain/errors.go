package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrConnection is returned when the host application cannot be reached.
	ErrConnection = errors.New("host application unreachable")

	// ErrNoActiveDocument is returned when the host has no open document.
	ErrNoActiveDocument = errors.New("no active document")

	// ErrWrongDocumentType is returned when the active document is not of the expected kind.
	ErrWrongDocumentType = errors.New("wrong document type")

	// ErrNotConnected is returned by any operation attempted without a live session.
	ErrNotConnected = errors.New("not connected")

	// ErrInvalidParameter is returned when request parameters fail validation.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrDegenerateGeometry is returned when derived geometry is undefined (e.g. a zero-length slot).
	ErrDegenerateGeometry = fmt.Errorf("%w: degenerate geometry", ErrInvalidParameter)

	// ErrUnknownName is returned when a named plane, relation, axis or operation is not recognized.
	ErrUnknownName = errors.New("unknown name")

	// ErrHostOperation is returned when the host reports that an operation failed.
	ErrHostOperation = errors.New("host operation failed")

	// ErrNotFound is returned when a host lookup yields nothing.
	ErrNotFound = errors.New("not found")

	// ErrCircuitOpen is returned when calls are refused because the host keeps failing.
	ErrCircuitOpen = errors.New("host circuit open")
)

// HostError describes a failure reported by the host through its own result
// channel (nil return, false return, or error/warning codes).
type HostError struct {
	Method   string
	Detail   string
	Code     int32
	Warnings int32
}

func (e *HostError) Error() string {
	msg := fmt.Sprintf("host %s failed", e.Method)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Code != 0 || e.Warnings != 0 {
		msg += fmt.Sprintf(" (error=%d, warning=%d)", e.Code, e.Warnings)
	}
	return msg
}

// Is makes errors.Is(err, ErrHostOperation) match any HostError.
func (e *HostError) Is(target error) bool {
	return target == ErrHostOperation
}

// NewHostError returns a HostError for method with an optional detail.
func NewHostError(method, detail string) *HostError {
	return &HostError{Method: method, Detail: detail}
}

// WrongDocumentTypeError carries the kind of document that was found.
type WrongDocumentTypeError struct {
	Want DocumentType
	Got  DocumentType
}

func (e *WrongDocumentTypeError) Error() string {
	return fmt.Sprintf("active document is %s, expected %s", e.Got, e.Want)
}

// Is makes errors.Is(err, ErrWrongDocumentType) match.
func (e *WrongDocumentTypeError) Is(target error) bool {
	return target == ErrWrongDocumentType
}

// Invalid returns an ErrInvalidParameter wrapping a formatted message.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidParameter, fmt.Sprintf(format, args...))
}
