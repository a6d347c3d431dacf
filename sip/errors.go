package sip

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the parsers matches one of them
// with errors.Is, MultipleError matches all kinds of its members.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrInvalidUri    = errors.New("invalid uri")
	ErrMissingField  = errors.New("missing field")
	ErrEmptyMessage  = errors.New("empty message")
	ErrUnknown       = errors.New("unknown error")
)

// ParseError is a single parse failure.
type ParseError struct {
	// Kind is one of ErrInvalidFormat, ErrInvalidUri, ErrMissingField,
	// ErrEmptyMessage or ErrUnknown.
	Kind error
	Msg  string
	// Err is the wrapped cause, if any. InvalidUri errors carry the URI error here.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func invalidFormat(format string, args ...any) error {
	return &ParseError{Kind: ErrInvalidFormat, Msg: fmt.Sprintf(format, args...)}
}

func emptyMessage(msg string) error {
	return &ParseError{Kind: ErrEmptyMessage, Msg: msg}
}

// NewInvalidFormatError returns InvalidFormat error with formatted message.
func NewInvalidFormatError(format string, args ...any) error {
	return invalidFormat(format, args...)
}

// NewInvalidUriError wraps URI parse error.
func NewInvalidUriError(uri string, err error) error {
	return &ParseError{Kind: ErrInvalidUri, Msg: fmt.Sprintf("invalid uri %q", uri), Err: err}
}

// NewMissingFieldError reports mandatory field that was never set.
func NewMissingFieldError(field string) error {
	return &ParseError{Kind: ErrMissingField, Msg: "missing mandatory field " + field}
}

// NewEmptyMessageError reports empty input.
func NewEmptyMessageError(msg string) error {
	return emptyMessage(msg)
}

// NewUnknownError wraps unexpected failure.
func NewUnknownError(v any) error {
	if err, ok := v.(error); ok {
		return &ParseError{Kind: ErrUnknown, Msg: "unexpected parse failure", Err: err}
	}
	return &ParseError{Kind: ErrUnknown, Msg: fmt.Sprintf("unexpected parse failure: %v", v)}
}

// MultipleError aggregates all failures found in one message.
type MultipleError struct {
	Errors []error
}

func (e *MultipleError) Error() string {
	var b strings.Builder
	for i, err := range e.Errors {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *MultipleError) Unwrap() []error {
	return e.Errors
}
