package store

import (
	"strings"

	"github.com/oklog/ulid/v2"
)

// NewID returns a prefixed, lower-cased ULID (millisecond timestamp plus
// monotonic random suffix). Collision-resistant within one process; an
// opaque handle, not a security token.
func NewID(prefix string) string {
	return prefix + "_" + strings.ToLower(ulid.Make().String())
}
