package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key identifies a cached per-entity resource.
type Key struct {
	// Kind is the resource kind (e.g., "friends", "badges")
	Kind string

	// ID is the entity the resource belongs to (e.g., a user ID)
	ID int64

	// Params are extra query parameters that change the payload
	Params url.Values
}

// String generates a deterministic key string.
// Format: rbx:kind:id:param1=val1:param2=val2
//
// Example:
//
//	rbx:badges:261:sortOrder=Desc
func (k Key) String() string {
	parts := []string{"rbx"}

	if kind := strings.Trim(k.Kind, ":/ "); kind != "" {
		parts = append(parts, kind)
	}

	parts = append(parts, fmt.Sprintf("%d", k.ID))

	// Add params (sorted for determinism)
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.Params.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
