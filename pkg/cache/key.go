package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// KeyPrefix namespaces every cache key in Redis.
const KeyPrefix = "github-fetcher"

// CacheKey identifies a cached GraphQL response.
type CacheKey struct {
	// Operation is the GraphQL operation name (e.g. "GetUserProfile")
	Operation string

	// Query is the full query text; only its digest ends up in the key
	Query string

	// Variables are the request variables, including any pagination cursor
	Variables map[string]any

	// Principal distinguishes tokens that may see different data (empty for shared)
	Principal string
}

// String generates a deterministic cache key string.
// Format: github-fetcher:operation:querydigest:var1=val1:var2=val2:principal=abcd
//
// Example:
//
//	github-fetcher:GetUserProfile:3f29c1a0b7de:username="octocat"
func (k CacheKey) String() string {
	parts := []string{KeyPrefix}

	if k.Operation != "" {
		parts = append(parts, k.Operation)
	}

	parts = append(parts, Digest(k.Query))

	if len(k.Variables) > 0 {
		names := make([]string, 0, len(k.Variables))
		for name := range k.Variables {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, encodeValue(k.Variables[name])))
		}
	}

	if k.Principal != "" {
		parts = append(parts, "principal="+k.Principal)
	}

	return strings.Join(parts, ":")
}

// Digest returns a short stable digest of s.
func Digest(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:6])
}

// encodeValue renders a variable as JSON, which sorts map keys.
func encodeValue(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
