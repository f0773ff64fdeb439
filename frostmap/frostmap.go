// Package frostmap provides an insertion-ordered, write-once string map.
// It is the recommended container for the SQL text a pipeline executes:
// reads feel like a normal map, but reassigning an existing key fails
// loudly instead of silently clobbering a statement.
package frostmap

import (
	"fmt"
	"strings"
)

// FrozenKeyError is returned when an existing key is assigned again.
type FrozenKeyError struct {
	Key string
}

func (e *FrozenKeyError) Error() string {
	return fmt.Sprintf("cannot reassign existing key %q", e.Key)
}

// Map is an insertion-ordered string map whose keys freeze on first
// assignment. The zero value is not usable; create one with New.
type Map struct {
	keys   []string
	values map[string]string
}

// New returns an empty map.
func New() *Map {
	return &Map{values: make(map[string]string)}
}

// Pair is a key/value pair for bulk construction.
type Pair struct {
	Key   string
	Value string
}

// FromPairs builds a map from ordered pairs. A duplicate key returns a
// FrozenKeyError.
func FromPairs(pairs ...Pair) (*Map, error) {
	m := New()
	for _, p := range pairs {
		if err := m.Set(p.Key, p.Value); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Set stores a value under a new key. Assigning an existing key returns a
// FrozenKeyError.
func (m *Map) Set(key, value string) error {
	if _, ok := m.values[key]; ok {
		return &FrozenKeyError{Key: key}
	}
	m.keys = append(m.keys, key)
	m.values[key] = value
	return nil
}

// MustSet is Set for static construction; it panics on a frozen key.
func (m *Map) MustSet(key, value string) {
	if err := m.Set(key, value); err != nil {
		panic(err)
	}
}

// Get returns the value for key, or the empty string when absent.
func (m *Map) Get(key string) string {
	return m.values[key]
}

// Lookup returns the value for key and whether it was present.
func (m *Map) Lookup(key string) (string, bool) {
	v, ok := m.values[key]
	return v, ok
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	out := make([]string, len(m.keys))
	copy(out, m.keys)
	return out
}

// Len reports the number of stored pairs.
func (m *Map) Len() int {
	return len(m.keys)
}

// Each calls fn for every pair in insertion order, stopping early if fn
// returns false.
func (m *Map) Each(fn func(key, value string) bool) {
	for _, k := range m.keys {
		if !fn(k, m.values[k]) {
			return
		}
	}
}

func (m *Map) String() string {
	var b strings.Builder
	b.WriteString("frostmap.Map{")
	for i, k := range m.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s: %q", k, m.values[k])
	}
	b.WriteString("}")
	return b.String()
}
