package headwater

import (
	"fmt"
	"strings"
)

// Recognized settings keys. Values are always strings.
const (
	KeyBackendKind = "BACKEND_KIND"
	KeyLocatorURL  = "LOCATOR_URL"
	KeyUsername    = "USERNAME"
	KeyPassword    = "PASSWORD"
	KeyHost        = "HOST"
	KeyPort        = "PORT"
	KeyDatabase    = "DATABASE"
)

// BackendKind identifies the database dialect a resolution produced.
type BackendKind string

// Known backend kinds. Anything else is treated as an "other SQL dialect
// by name" and gets a best-effort lowercase driver scheme.
const (
	KindMySQL      BackendKind = "MYSQL"
	KindPostgreSQL BackendKind = "POSTGRESQL"
	KindSQLite     BackendKind = "SQLITE"
	KindDatabricks BackendKind = "DATABRICKS"
)

// DefaultKind is assumed when a resolved source does not declare a
// BACKEND_KIND. This is a documented default, not an inference.
const DefaultKind = KindMySQL

// Settings holds whatever key/value pairs a single winning detection
// strategy discovered, in insertion order. The order is preserved for
// diagnostics only and carries no semantic weight.
//
// Two out-of-band fields ride alongside the map: Handle is set once
// provisioning succeeds, Err carries the provisioning failure message when
// the implicit policy captured it instead of raising. At most one of the
// two is ever set.
type Settings struct {
	keys   []string
	values map[string]string

	// Handle is the live connection handle, present only after
	// provisioning succeeded.
	Handle *Handle

	// Err is the captured provisioning failure message, present only
	// when an implicit (auto-detect) resolution failed to connect.
	Err string
}

// NewSettings returns an empty settings container.
func NewSettings() *Settings {
	return &Settings{values: make(map[string]string)}
}

// Set stores a value. Re-setting an existing key overwrites the value but
// keeps the key's original position.
func (s *Settings) Set(key, value string) {
	if _, ok := s.values[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.values[key] = value
}

// Get returns the value for key, or the empty string when absent.
func (s *Settings) Get(key string) string {
	return s.values[key]
}

// Lookup returns the value for key and whether it was present.
func (s *Settings) Lookup(key string) (string, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Keys returns the keys in insertion order.
func (s *Settings) Keys() []string {
	out := make([]string, len(s.keys))
	copy(out, s.keys)
	return out
}

// Len reports the number of stored pairs.
func (s *Settings) Len() int {
	return len(s.keys)
}

// Kind returns the declared backend kind, normalized to upper case, or
// DefaultKind when none was declared.
func (s *Settings) Kind() BackendKind {
	v, ok := s.values[KeyBackendKind]
	if !ok || v == "" {
		return DefaultKind
	}
	return BackendKind(strings.ToUpper(v))
}

// String renders the pairs in insertion order with the password masked.
func (s *Settings) String() string {
	var b strings.Builder
	b.WriteString("Settings{")
	for i, k := range s.keys {
		if i > 0 {
			b.WriteString(", ")
		}
		v := s.values[k]
		if k == KeyPassword && v != "" {
			v = "****"
		}
		fmt.Fprintf(&b, "%s=%s", k, v)
	}
	b.WriteString("}")
	return b.String()
}
