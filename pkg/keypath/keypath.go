// Package keypath parses dot-delimited cache keys into ordered path segments.
//
// Segments are used verbatim: no trimming, no case folding. A key without a
// delimiter is a single-segment address.
package keypath

import (
	"fmt"
	"strings"

	"github.com/aretw0/nestcache/pkg/domain"
)

// Delimiter separates path segments.
const Delimiter = "."

// Address is a parsed key, ordered root to leaf.
type Address struct {
	segments []string
}

// Parse splits key on the delimiter. It fails with domain.ErrInvalidKey when
// the key is empty or any segment is empty ("a..b", ".a", "a.").
func Parse(key string) (Address, error) {
	if key == "" {
		return Address{}, fmt.Errorf("%w: empty key", domain.ErrInvalidKey)
	}

	segments := strings.Split(key, Delimiter)
	for i, seg := range segments {
		if seg == "" {
			return Address{}, fmt.Errorf("%w: empty segment %d in %q", domain.ErrInvalidKey, i, key)
		}
	}
	return Address{segments: segments}, nil
}

// MustParse is like Parse but panics on error. Intended for constant keys.
func MustParse(key string) Address {
	addr, err := Parse(key)
	if err != nil {
		panic(err)
	}
	return addr
}

// Segments returns a copy of the path segments.
func (a Address) Segments() []string {
	out := make([]string, len(a.segments))
	copy(out, a.segments)
	return out
}

// Len returns the number of segments.
func (a Address) Len() int {
	return len(a.segments)
}

// Leaf returns the final segment, or "" for the zero Address.
func (a Address) Leaf() string {
	if len(a.segments) == 0 {
		return ""
	}
	return a.segments[len(a.segments)-1]
}

func (a Address) String() string {
	return strings.Join(a.segments, Delimiter)
}

// Join prefixes key with prefix. Both sides are expected to be valid keys;
// validation happens when the joined key is parsed.
func Join(prefix, key string) string {
	return prefix + Delimiter + key
}
