// Package catalog implements the translation mapping: an ordered set of
// key → text entries loaded from one resource document.
//
// Keys are unique. Insertion order is kept so that writing a catalog back
// reproduces the document's layout and produces small diffs.
package catalog

import (
	"reflect"
	"sort"
)

// Entry is a single member of a resource document.
type Entry struct {
	Key  string
	Text string
	// Opaque holds a member that is not plain text (for example a nested
	// JSON object). Codecs store it verbatim so round-trip preserves it.
	// A nil Opaque marks a text entry.
	Opaque any
}

// IsText reports whether the entry carries translatable text.
func (e Entry) IsText() bool {
	return e.Opaque == nil
}

// Catalog is an ordered key → text mapping.
type Catalog struct {
	entries []Entry
	index   map[string]int
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{index: make(map[string]int)}
}

// FromPairs builds a catalog from alternating key, text arguments.
// A trailing key without text is ignored.
func FromPairs(kv ...string) *Catalog {
	c := New()
	for i := 0; i+1 < len(kv); i += 2 {
		c.Set(kv[i], kv[i+1])
	}
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Has reports whether key is present, text or opaque.
func (c *Catalog) Has(key string) bool {
	_, ok := c.index[key]
	return ok
}

// Get returns the entry for key.
func (c *Catalog) Get(key string) (Entry, bool) {
	idx, ok := c.index[key]
	if !ok {
		return Entry{}, false
	}
	return c.entries[idx], true
}

// Text returns the text stored under key. Opaque entries report false.
func (c *Catalog) Text(key string) (string, bool) {
	e, ok := c.Get(key)
	if !ok || !e.IsText() {
		return "", false
	}
	return e.Text, true
}

// Set stores text under key, replacing the value in place when the key
// exists and appending otherwise.
func (c *Catalog) Set(key, text string) {
	c.Put(Entry{Key: key, Text: text})
}

// Put stores a complete entry with the same placement rules as Set.
func (c *Catalog) Put(e Entry) {
	if idx, ok := c.index[e.Key]; ok {
		c.entries[idx] = e
		return
	}
	c.index[e.Key] = len(c.entries)
	c.entries = append(c.entries, e)
}

// Keys returns the keys in catalog order.
func (c *Catalog) Keys() []string {
	keys := make([]string, len(c.entries))
	for i, e := range c.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in catalog order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Clone returns an independent copy. Opaque payloads are shared; codecs
// treat them as immutable.
func (c *Catalog) Clone() *Catalog {
	out := &Catalog{
		entries: make([]Entry, len(c.entries)),
		index:   make(map[string]int, len(c.index)),
	}
	copy(out.entries, c.entries)
	for k, v := range c.index {
		out.index[k] = v
	}
	return out
}

// Sorted returns a copy with entries ordered by key.
func (c *Catalog) Sorted() *Catalog {
	entries := c.Entries()
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Key < entries[j].Key
	})

	out := New()
	for _, e := range entries {
		out.Put(e)
	}
	return out
}

// Equal reports whether both catalogs hold the same entries in the same
// order.
func (c *Catalog) Equal(other *Catalog) bool {
	if c.Len() != other.Len() {
		return false
	}
	for i, e := range c.entries {
		o := other.entries[i]
		if e.Key != o.Key || e.Text != o.Text {
			return false
		}
		if !reflect.DeepEqual(e.Opaque, o.Opaque) {
			return false
		}
	}
	return true
}
