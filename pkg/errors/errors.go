// Package errors provides structured error handling for qparquet.
//
// Every failure of a write call is reported as one *Error. Its Type places
// it in one of four families:
//   - ErrorTypeValidation: the arguments are not shaped as a write call expects
//   - ErrorTypeData: a source column cannot be mapped to an Arrow column
//   - ErrorTypeConfig: a writer option is unknown or malformed
//   - ErrorTypeFile: the destination could not be written or encoded
//
// Error() is the caller-facing message, e.g. "not a table". Causes from the
// file system or the Parquet encoder are appended verbatim. The %+v verb
// adds the type and details, which zap reports as errorVerbose.
package errors

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeInternal marks errors that did not come from this package
	ErrorTypeInternal ErrorType = "internal"
	// ErrorTypeValidation represents malformed call arguments
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeData represents type-mapping errors on source columns
	ErrorTypeData ErrorType = "data"
	// ErrorTypeConfig represents writer option errors
	ErrorTypeConfig ErrorType = "config"
	// ErrorTypeFile represents file system and encoding errors
	ErrorTypeFile ErrorType = "file"
)

// Error is a typed error with an optional cause and diagnostic details.
// Details never appear in Error().
type Error struct {
	Type    ErrorType
	Message string
	Cause   error
	Details map[string]interface{}
}

// Error returns the message, followed by the cause when there is one
func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Format implements fmt.Formatter. %+v prints the type and details as well.
func (e *Error) Format(s fmt.State, verb rune) {
	switch {
	case verb == 'v' && s.Flag('+'):
		fmt.Fprintf(s, "[%s] %s", e.Type, e.Message)
		if len(e.Details) > 0 {
			keys := make([]string, 0, len(e.Details))
			for k := range e.Details {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			_, _ = io.WriteString(s, " {")
			for i, k := range keys {
				if i > 0 {
					_, _ = io.WriteString(s, ", ")
				}
				fmt.Fprintf(s, "%s=%v", k, e.Details[k])
			}
			_, _ = io.WriteString(s, "}")
		}
		if e.Cause != nil {
			fmt.Fprintf(s, ": %+v", e.Cause)
		}
	case verb == 'v' || verb == 's':
		_, _ = io.WriteString(s, e.Error())
	case verb == 'q':
		fmt.Fprintf(s, "%q", e.Error())
	}
}

// WithDetail adds a key-value detail to the error
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// Detail returns the detail stored under key
func (e *Error) Detail(key string) (interface{}, bool) {
	v, ok := e.Details[key]
	return v, ok
}

// New creates a new error with the given type and message
func New(errType ErrorType, message string) *Error {
	return &Error{Type: errType, Message: message}
}

// Newf is New with a format string
func Newf(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a type and message to err. It returns nil for a nil err.
func Wrap(err error, errType ErrorType, message string) *Error {
	if err == nil {
		return nil
	}
	return &Error{Type: errType, Message: message, Cause: err}
}

// IsType checks if the error is of the given type
func IsType(err error, errType ErrorType) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Type == errType
}

// TypeOf returns the type of the outermost *Error in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var e *Error
	if !errors.As(err, &e) {
		return ErrorTypeInternal
	}
	return e.Type
}

// As is errors.As, re-exported so callers need only one errors import
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is is errors.Is, re-exported so callers need only one errors import
func Is(err, target error) bool {
	return errors.Is(err, target)
}
