package headwater

import (
	"fmt"
	"strings"
)

// Locator is a fully assembled, backend-specific connection address.
type Locator struct {
	Kind BackendKind
	URL  string
}

// schemes maps backend kinds to URL schemes. Unrecognized kinds fall back
// to the lowercased kind name as a best-effort scheme.
var schemes = map[BackendKind]string{
	KindPostgreSQL: "postgres",
	KindMySQL:      "mysql",
	"ORACLE":       "oracle",
	"SQLSERVER":    "sqlserver",
	"MSSQL":        "sqlserver",
}

func schemeFor(kind BackendKind) string {
	if s, ok := schemes[kind]; ok {
		return s
	}
	return strings.ToLower(string(kind))
}

// Redacted returns the locator URL with the credential segment stripped:
// the URL is split on the scheme separator and, when a "user:pass@"
// segment is present in the remainder, everything up to and including the
// "@" is replaced.
func (l Locator) Redacted() string {
	parts := strings.SplitN(l.URL, "://", 2)
	if len(parts) != 2 {
		return l.URL
	}
	at := strings.LastIndex(parts[1], "@")
	if at < 0 {
		return l.URL
	}
	return parts[0] + "://...@" + parts[1][at+1:]
}

// BuildLocator assembles a connection locator from resolved settings.
// It is a pure function: no I/O, no connection attempt.
//
// Required fields per kind:
//   - SQLITE needs only DATABASE (a file path); other fields are ignored.
//   - DATABRICKS needs a pre-built LOCATOR_URL, passed through verbatim.
//   - Everything else needs USERNAME, PASSWORD, HOST, PORT and DATABASE.
func BuildLocator(s *Settings) (Locator, error) {
	kind := s.Kind()

	switch kind {
	case KindSQLite:
		path, ok := s.Lookup(KeyDatabase)
		if !ok || path == "" {
			return Locator{}, &IncompleteCredentialsError{Kind: kind, Missing: []string{KeyDatabase}}
		}
		return Locator{Kind: kind, URL: "sqlite3:///" + path}, nil

	case KindDatabricks:
		url, ok := s.Lookup(KeyLocatorURL)
		if !ok || url == "" {
			return Locator{}, &IncompleteCredentialsError{Kind: kind, Missing: []string{KeyLocatorURL}}
		}
		return Locator{Kind: kind, URL: url}, nil
	}

	var missing []string
	for _, key := range []string{KeyUsername, KeyPassword, KeyHost, KeyPort, KeyDatabase} {
		if v, ok := s.Lookup(key); !ok || v == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return Locator{}, &IncompleteCredentialsError{Kind: kind, Missing: missing}
	}

	url := fmt.Sprintf("%s://%s:%s@%s:%s/%s",
		schemeFor(kind),
		s.Get(KeyUsername),
		s.Get(KeyPassword),
		s.Get(KeyHost),
		s.Get(KeyPort),
		s.Get(KeyDatabase),
	)
	return Locator{Kind: kind, URL: url}, nil
}
