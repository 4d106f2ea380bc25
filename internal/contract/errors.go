package contract

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes contract errors.
type ErrorCode string

const (
	ParseError ErrorCode = "ParseError"
	IOError    ErrorCode = "IOError"
)

var (
	ErrParse = errors.New("contract: parse error")
	ErrIO    = errors.New("contract: io error")
)

// Error is a structured contract error with an optional location and a
// pointer to the offending element inside the document.
type Error struct {
	Code     ErrorCode
	Message  string
	Location string // file path or URL
	Pointer  string // e.g. "requests[GetBucket].path"
	Cause    error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Pointer != "" {
		msg = fmt.Sprintf("%s (at %s)", msg, e.Pointer)
	}
	if e.Location != "" {
		msg = fmt.Sprintf("%s: %s", e.Location, msg)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is lets callers match on the code with errors.Is(err, ErrParse).
func (e *Error) Is(target error) bool {
	switch target {
	case ErrParse:
		return e.Code == ParseError
	case ErrIO:
		return e.Code == IOError
	}
	return false
}

func parseErrorf(pointer, format string, args ...any) *Error {
	return &Error{Code: ParseError, Message: fmt.Sprintf(format, args...), Pointer: pointer}
}

func withLocation(err error, location string) error {
	var ce *Error
	if errors.As(err, &ce) && ce.Location == "" {
		ce.Location = location
	}
	return err
}
