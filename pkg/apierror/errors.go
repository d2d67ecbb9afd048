// Package apierror classifies failed GitHub GraphQL requests into a closed
// set of error kinds.
package apierror

import (
	"errors"
	"fmt"
)

// Kind identifies the cause of a failed request.
type Kind string

const (
	// KindInsufficientScopes means the access token lacks a scope the query needs.
	KindInsufficientScopes Kind = "INSUFFICIENT_SCOPES"

	// KindBadCredentials means the access token was rejected (401).
	KindBadCredentials Kind = "BAD_CREDENTIALS"

	// KindAccessForbidden means the endpoint refused the request (403), typically
	// abuse detection or an exhausted rate limit.
	KindAccessForbidden Kind = "ACCESS_FORBIDDEN"

	// KindNotFound means the queried entity does not exist.
	KindNotFound Kind = "NOT_FOUND"

	// KindServerError means GitHub answered with a 5xx status.
	KindServerError Kind = "SERVER_ERROR"

	// KindUnknown covers everything else, including network failures.
	KindUnknown Kind = "UNKNOWN"

	// KindParse marks a response whose shape did not match the request's expectations.
	KindParse Kind = "PARSE_ERROR"
)

// ErrNotFound matches any NOT_FOUND error with errors.Is.
var ErrNotFound = errors.New("resource not found")

// Error is a classified request failure.
type Error struct {
	Kind       Kind
	Message    string
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("github %s (status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("github %s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports NOT_FOUND errors as ErrNotFound.
func (e *Error) Is(target error) bool {
	return target == ErrNotFound && e.Kind == KindNotFound
}

// NotFound builds a NOT_FOUND error for a payload that is structurally absent.
func NotFound(message string) *Error {
	if message == "" {
		message = ErrNotFound.Error()
	}
	return &Error{Kind: KindNotFound, Message: message}
}

// ParseError reports a response payload that could not be mapped to the
// expected shape. Payload holds the offending raw bytes.
type ParseError struct {
	Payload []byte
	Reason  string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("github %s: %s: %v", KindParse, e.Reason, e.Err)
	}
	return fmt.Sprintf("github %s: %s", KindParse, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// NewParseError wraps cause with the payload that failed to parse.
func NewParseError(payload []byte, reason string, cause error) *ParseError {
	return &ParseError{
		Payload: append([]byte(nil), payload...),
		Reason:  reason,
		Err:     cause,
	}
}

// KindOf returns the kind carried by err, or KindUnknown for foreign errors.
// It returns an empty kind for a nil error.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		return KindParse
	}
	return KindUnknown
}

// IsNotFound reports whether err was classified as NOT_FOUND.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
