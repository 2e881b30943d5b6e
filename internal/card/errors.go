package card

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingRequiredField marks a required column absent from a record.
	// It is fatal to a pipeline run.
	ErrMissingRequiredField = errors.New("missing required field")

	// ErrMalformedRecord marks a field whose value does not fit its type.
	// The record is skipped and counted.
	ErrMalformedRecord = errors.New("malformed record")
)

// FieldError attaches the offending field and source line to one of the
// error kinds above. errors.Is matches both the kind and the cause.
type FieldError struct {
	Kind  error
	Field string
	Line  int
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%v: field=%s", e.Kind, e.Field)
	if e.Line > 0 {
		msg = fmt.Sprintf("line %d: %s", e.Line, msg)
	}
	if e.Value != "" {
		msg += fmt.Sprintf(" value=%q", e.Value)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func malformed(line int, field, value string, err error) *FieldError {
	return &FieldError{Kind: ErrMalformedRecord, Field: field, Line: line, Value: value, Err: err}
}
