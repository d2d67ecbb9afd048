package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/gustavclausen/github-api-fetcher/pkg/apierror"
)

// DecodeAt follows path through the response data and decodes the value
// found there into dst.
//
// A null on the path means the entity does not exist and yields a NOT_FOUND
// error. A missing key or a value of the wrong type yields a ParseError
// carrying the full data.
func DecodeAt(data json.RawMessage, dst any, path ...string) error {
	cur := data
	for i, key := range path {
		if isNull(cur) {
			return apierror.NotFound(fmt.Sprintf("%s not found", describe(path[:i])))
		}

		var obj map[string]json.RawMessage
		if err := json.Unmarshal(cur, &obj); err != nil {
			return apierror.NewParseError(data, fmt.Sprintf("%s is not an object", describe(path[:i])), err)
		}

		next, ok := obj[key]
		if !ok {
			return apierror.NewParseError(data, fmt.Sprintf("missing key %q", strings.Join(path[:i+1], ".")), nil)
		}
		cur = next
	}

	if isNull(cur) {
		return apierror.NotFound(fmt.Sprintf("%s not found", describe(path)))
	}

	if err := json.Unmarshal(cur, dst); err != nil {
		return apierror.NewParseError(data, fmt.Sprintf("decode %s", describe(path)), err)
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func describe(path []string) string {
	if len(path) == 0 {
		return "data"
	}
	return strings.Join(path, ".")
}
