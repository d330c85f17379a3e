// Package merge implements entry merging: adding a candidate (key, text)
// pair to a catalog without ever overwriting a different text.
//
// The decision policy, applied in order:
//   - The key is absent: the entry is inserted under the key.
//   - The key holds the same text: nothing changes and the key is reused.
//   - The key holds a different text: the key is disambiguated with a
//     numeric suffix (KEY_2, KEY_3, ...). A free suffixed key receives the
//     entry. An occupied one is skipped, whatever it holds, unless
//     Policy.ReuseSuffixed is set and it holds the same text. Running out
//     of suffixes is a ConflictError.
//
// Merging is additive. No key is deleted or renamed.
package merge

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/minios-linux/lokey/catalog"
)

// DefaultMaxSuffix tries a single disambiguated key (KEY_2).
const DefaultMaxSuffix = 2

// Policy controls key disambiguation.
type Policy struct {
	// MaxSuffix is the highest numeric suffix tried. Values below 2 mean
	// DefaultMaxSuffix.
	MaxSuffix int
	// ReuseSuffixed reuses a suffixed key that already holds the text
	// instead of counting it as occupied.
	ReuseSuffixed bool
}

// Result describes the outcome of a merge.
type Result struct {
	// Key is the key the text is stored under.
	Key string
	// Catalog is the updated catalog. When Changed is false it is the
	// input catalog itself.
	Catalog *catalog.Catalog
	// Changed reports whether an entry was inserted.
	Changed bool
}

// Reused reports whether an existing entry already held the text.
func (r Result) Reused() bool {
	return !r.Changed
}

// ConflictError reports a key collision that disambiguation could not
// resolve.
type ConflictError struct {
	Key   string
	Tried []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("translation key conflict: %q and %s are already taken",
		e.Key, strings.Join(e.Tried, ", "))
}

// Merge adds (key, text) to c using the default policy.
func Merge(c *catalog.Catalog, key, text string) (Result, error) {
	return Policy{}.Merge(c, key, text)
}

// Merge adds (key, text) to c. The input catalog is never modified.
func (p Policy) Merge(c *catalog.Catalog, key, text string) (Result, error) {
	if !c.Has(key) {
		return insert(c, key, text), nil
	}
	if holds(c, key, text) {
		return Result{Key: key, Catalog: c}, nil
	}

	var tried []string
	for n := 2; n <= p.maxSuffix(); n++ {
		candidate := Suffixed(key, n)
		if !c.Has(candidate) {
			return insert(c, candidate, text), nil
		}
		if p.ReuseSuffixed && holds(c, candidate, text) {
			return Result{Key: candidate, Catalog: c}, nil
		}
		tried = append(tried, candidate)
	}

	return Result{}, &ConflictError{Key: key, Tried: tried}
}

// Suffixed returns the n-th disambiguated form of key.
func Suffixed(key string, n int) string {
	return key + "_" + strconv.Itoa(n)
}

func (p Policy) maxSuffix() int {
	if p.MaxSuffix < 2 {
		return DefaultMaxSuffix
	}
	return p.MaxSuffix
}

func holds(c *catalog.Catalog, key, text string) bool {
	stored, ok := c.Text(key)
	return ok && stored == text
}

func insert(c *catalog.Catalog, key, text string) Result {
	out := c.Clone()
	out.Set(key, text)
	return Result{Key: key, Catalog: out, Changed: true}
}
