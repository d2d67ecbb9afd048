package graphql

import (
	"encoding/json"
	"maps"
)

// Request is the contract every query implements. ParseResponse receives the
// "data" member of the response and returns the typed result. It returns an
// apierror NOT_FOUND error when the queried entity is absent and an
// *apierror.ParseError for any other shape mismatch.
type Request[T any] interface {
	Query() string
	Variables() map[string]any
	ParseResponse(data json.RawMessage) (T, error)
}

// Query is a plain Request whose payload lives at a fixed path in the
// response. The raw payload is decoded into R and mapped by convert.
type Query[R, T any] struct {
	query     string
	variables map[string]any
	path      []string
	convert   func(R) (T, error)
}

// NewQuery builds a Query. path is the explicit accessor path from the
// response data to the payload, e.g. "user", "gist".
func NewQuery[R, T any](query string, variables map[string]any, convert func(R) (T, error), path ...string) *Query[R, T] {
	return &Query[R, T]{
		query:     query,
		variables: variables,
		path:      path,
		convert:   convert,
	}
}

func (q *Query[R, T]) Query() string { return q.query }

func (q *Query[R, T]) Variables() map[string]any { return q.variables }

func (q *Query[R, T]) ParseResponse(data json.RawMessage) (T, error) {
	var raw R
	if err := DecodeAt(data, &raw, q.path...); err != nil {
		var zero T
		return zero, err
	}
	return q.convert(raw)
}

// copyVariables returns a private copy so a request never aliases a
// caller-owned map.
func copyVariables(v map[string]any) map[string]any {
	out := make(map[string]any, len(v)+1)
	maps.Copy(out, v)
	return out
}
