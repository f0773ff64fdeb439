package headwater

import "database/sql"

// Handle is a live, poolable connection factory bound to exactly one
// resolved locator. Ownership passes to the caller; the resolver does not
// retain or reuse handles across calls.
type Handle struct {
	db      *sql.DB
	kind    BackendKind
	locator string
}

// DB exposes the underlying connection pool.
func (h *Handle) DB() *sql.DB { return h.db }

// Kind reports which backend the handle is connected to.
func (h *Handle) Kind() BackendKind { return h.kind }

// Locator returns the credential-redacted locator the handle was built
// from. Useful for diagnostics; never contains the password.
func (h *Handle) Locator() string { return h.locator }

// Close releases the underlying pool.
func (h *Handle) Close() error {
	if h.db != nil {
		return h.db.Close()
	}
	return nil
}
