package cache

import (
	"fmt"
	"sort"
	"strings"
)

// KeyNamespace prefixes every key the gateway generates.
const KeyNamespace = "football"

// Key identifies one cached logical query.
type Key struct {
	// Kind is the query kind (e.g., "today", "date", "upcoming")
	Kind string

	// Params are the query parameters (e.g., {"date": "2025-08-27"})
	Params map[string]string
}

// String generates a deterministic cache key string.
// Format: football:kind:param1=val1:param2=val2
//
// Example:
//
//	football:date:date=2025-08-27
func (k Key) String() string {
	parts := []string{KeyNamespace}

	if kind := strings.Trim(k.Kind, ":"); kind != "" {
		parts = append(parts, kind)
	}

	// Sorted for determinism
	if len(k.Params) > 0 {
		names := make([]string, 0, len(k.Params))
		for name := range k.Params {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%s=%s", name, k.Params[name]))
		}
	}

	return strings.Join(parts, ":")
}
