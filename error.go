package gensi

import (
	"errors"
	"fmt"
)

// Application error codes.
//
// These codes classify errors for the orchestrator's propagation rules:
// ECONFIG and EEXTRACT abort the unit of work they affect, EFETCH degrades
// at the article level but is fatal at the index level, and cache failures
// are never surfaced as errors at all.
const (
	ECONFIG         = "config"          // malformed or incomplete recipe fragment
	EEXTRACT        = "extract"         // required selector missed, script misbehaved
	EFETCH          = "fetch"           // network failure, non-success status, timeout
	EINVALID        = "invalid"         // validation failed
	ENOTFOUND       = "not_found"       // entity does not exist
	EINTERNAL       = "internal"        // internal error
	EUNAVAILABLE    = "unavailable"     // external service unavailable
	ENOTIMPLEMENTED = "not_implemented" // feature not implemented
)

// Error represents an application-specific error. Errors carry a machine
// readable code and a human readable message.
type Error struct {
	// Code classifies the error for propagation decisions.
	Code string

	// Message is a human-readable description.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("gensi error: code=%s message=%s", e.Code, e.Message)
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns the empty string.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return a generic message; nil returns the empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
