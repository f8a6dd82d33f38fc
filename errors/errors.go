package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Common step errors with actionable guidance.
var (
	// ErrMissingInput indicates a required step input was not provided.
	ErrMissingInput = errors.New("missing required input")

	// ErrInvalidInput indicates a step input has an unusable value.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotAuthenticated indicates the token was rejected.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrPermissionDenied indicates the token lacks a required permission.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrConnectionFailed indicates the platform API is unreachable.
	ErrConnectionFailed = errors.New("connection failed")

	// ErrRateLimited indicates the platform API throttled the step.
	ErrRateLimited = errors.New("rate limited")
)

// InputError describes a single step input that failed validation.
type InputError struct {
	// Field is the input name as written in the workflow file.
	Field string

	// Reason explains what is wrong with the value.
	Reason string

	// Err is ErrMissingInput or ErrInvalidInput.
	Err error
}

func (e *InputError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("%s: %s", e.Err, e.Field)
	}
	return fmt.Sprintf("%s %q: %s", e.Err, e.Field, e.Reason)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Missing returns an error naming each missing field, or nil when fields is empty.
// Every field gets its own *InputError so all of them are reported at once.
func Missing(fields ...string) error {
	errs := make([]error, 0, len(fields))
	for _, field := range fields {
		errs = append(errs, &InputError{Field: field, Err: ErrMissingInput})
	}
	return errors.Join(errs...)
}

// Invalid returns an *InputError for a field whose value cannot be used.
func Invalid(field, format string, args ...any) error {
	return &InputError{
		Field:  field,
		Reason: fmt.Sprintf(format, args...),
		Err:    ErrInvalidInput,
	}
}

// Fields returns the names of every input field reported in err.
func Fields(err error) []string {
	var fields []string
	collectFields(err, &fields)
	return fields
}

func collectFields(err error, fields *[]string) {
	if err == nil {
		return
	}
	if inputErr, ok := err.(*InputError); ok {
		*fields = append(*fields, inputErr.Field)
		return
	}
	switch u := err.(type) {
	case interface{ Unwrap() []error }:
		for _, e := range u.Unwrap() {
			collectFields(e, fields)
		}
	case interface{ Unwrap() error }:
		collectFields(u.Unwrap(), fields)
	}
}

// Summary flattens err onto a single line, for workflow annotations
// which cannot span lines.
func Summary(err error) string {
	if err == nil {
		return ""
	}
	lines := strings.Split(strings.TrimSpace(err.Error()), "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "; ")
}
