package headwater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// fallbackFileName is the well-known SQLite file written under the user's
// home directory when no other source is usable.
const fallbackFileName = "headwater_fallback.db"

// testDBStrategy is the terminal strategy: it stands up a disposable
// Postgres service and, when that cannot be started (no container
// runtime, start failure), degrades deterministically to a local SQLite
// file. It never reports absent, so the chain always terminates.
type testDBStrategy struct{}

func (testDBStrategy) name() string { return "test-database" }

func (testDBStrategy) probe(*Runtime) capability { return capActive }

func (testDBStrategy) settings(ctx context.Context, rt *Runtime) (*Settings, error) {
	db, err := ephemeral.ensure(ctx)
	if err != nil {
		// Start failure is the documented fallthrough to SQLite, not a
		// hard error.
		home, herr := rt.UserHomeDir()
		if herr != nil {
			return nil, fmt.Errorf("ephemeral database unavailable (%v) and no home directory for fallback: %w", err, herr)
		}
		return sqliteSettings(rt, filepath.Join(home, fallbackFileName))
	}

	out := NewSettings()
	out.Set(KeyBackendKind, string(KindPostgreSQL))
	out.Set(KeyUsername, db.user)
	out.Set(KeyPassword, db.password)
	out.Set(KeyHost, db.host)
	out.Set(KeyPort, db.port)
	out.Set(KeyDatabase, db.database)
	return out, nil
}

// sqliteSettings materializes settings for a file-backed store, creating
// parent directories as needed.
func sqliteSettings(rt *Runtime, path string) (*Settings, error) {
	path = expandHome(rt, path)
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating directory for sqlite database %s: %w", path, err)
		}
	}
	out := NewSettings()
	out.Set(KeyBackendKind, string(KindSQLite))
	out.Set(KeyDatabase, path)
	return out, nil
}
