package apierror

import (
	"fmt"
	"net/http"
)

// Default messages used when the endpoint supplies none.
const (
	msgBadCredentials     = "Bad credentials provided"
	msgAccessForbidden    = "Request forbidden by GitHub endpoint. Check if abuse detection mechanism is triggered or rate limit is exceeded."
	msgInsufficientScopes = "Insufficient scopes to perform request"
	msgUnknown            = "unknown error"
)

// ResponseError is one entry of a GraphQL response's errors array.
type ResponseError struct {
	Type    string `json:"type,omitempty"`
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

// Failure is the raw signal of a failed round trip: the HTTP status (0 when
// none was received), the transport's own message and any GraphQL errors.
type Failure struct {
	StatusCode int
	Message    string
	Errors     []ResponseError
	Err        error
}

// Classify maps a raw failure to a classified error. The first matching rule
// wins and only the first nested GraphQL error is consulted.
func Classify(f Failure) *Error {
	e := &Error{StatusCode: f.StatusCode, Err: f.Err}

	switch {
	case f.StatusCode == 0:
		e.Kind = KindUnknown
		e.Message = orDefault(f.Message, msgUnknown)
	case f.StatusCode >= http.StatusInternalServerError:
		e.Kind = KindServerError
		e.Message = orDefault(f.Message,
			fmt.Sprintf("GitHub endpoint responded with server error (status %d)", f.StatusCode))
	case f.StatusCode == http.StatusUnauthorized:
		e.Kind = KindBadCredentials
		e.Message = orDefault(f.Message, msgBadCredentials)
	case f.StatusCode == http.StatusForbidden:
		e.Kind = KindAccessForbidden
		e.Message = orDefault(f.Message, msgAccessForbidden)
	case f.StatusCode == http.StatusOK && len(f.Errors) > 0:
		classifyNested(e, f)
	default:
		e.Kind = KindUnknown
		e.Message = orDefault(f.Message, msgUnknown)
	}

	return e
}

func classifyNested(e *Error, f Failure) {
	first := f.Errors[0]

	switch first.Type {
	case string(KindNotFound):
		e.Kind = KindNotFound
		e.Message = orDefault(first.Message, ErrNotFound.Error())
	case string(KindInsufficientScopes):
		e.Kind = KindInsufficientScopes
		e.Message = msgInsufficientScopes
		if first.Message != "" {
			e.Message = fmt.Sprintf("%s. Error message: %s", msgInsufficientScopes, first.Message)
		}
	default:
		e.Kind = KindUnknown
		e.Message = orDefault(f.Message, orDefault(first.Message, msgUnknown))
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
