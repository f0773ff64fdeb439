package headwater

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// notebookSecretsEnv points at the directory where a notebook host mounts
// credential sheets as CSV files.
const notebookSecretsEnv = "NOTEBOOK_SECRETS_DIR"

// maxSheetRows bounds how large a secret sheet we are willing to scan.
const maxSheetRows = 10000

// secretSheetStrategy reads warehouse credentials from a notebook-hosted
// secret sheet: a CSV whose header names username, password, server, port
// and database columns, with the live credentials in the first data row.
type secretSheetStrategy struct {
	sheet string
}

func (secretSheetStrategy) name() string { return "secret-sheet" }

func (s secretSheetStrategy) probe(rt *Runtime) capability {
	dir := rt.getenv(notebookSecretsEnv)
	if dir == "" {
		return capAbsent
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return capInactive
	}
	if _, err := os.Stat(s.path(rt)); err != nil {
		return capInactive
	}
	return capActive
}

func (s secretSheetStrategy) settings(_ context.Context, rt *Runtime) (*Settings, error) {
	path := s.path(rt)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening secret sheet %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing secret sheet %s: %w", path, err)
	}
	if len(rows) > maxSheetRows {
		return nil, fmt.Errorf("secret sheet %s has %d rows, exceeding the %d row limit", path, len(rows), maxSheetRows)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("secret sheet %s has no credential row", path)
	}

	cols := map[string]int{}
	for i, h := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	row := rows[1]
	field := func(name string) (string, error) {
		i, ok := cols[name]
		if !ok {
			return "", fmt.Errorf("secret sheet %s is missing a %q column", path, name)
		}
		if i >= len(row) {
			return "", fmt.Errorf("secret sheet %s credential row has no value for %q", path, name)
		}
		return strings.TrimSpace(row[i]), nil
	}

	username, err := field("username")
	if err != nil {
		return nil, err
	}
	password, err := field("password")
	if err != nil {
		return nil, err
	}
	server, err := field("server")
	if err != nil {
		return nil, err
	}
	port, err := field("port")
	if err != nil {
		return nil, err
	}
	database, err := field("database")
	if err != nil {
		return nil, err
	}

	out := NewSettings()
	out.Set(KeyBackendKind, string(KindMySQL))
	out.Set(KeyUsername, username)
	out.Set(KeyPassword, password)
	out.Set(KeyHost, server)
	out.Set(KeyPort, port)
	out.Set(KeyDatabase, database)
	return out, nil
}

func (s secretSheetStrategy) path(rt *Runtime) string {
	return filepath.Join(rt.getenv(notebookSecretsEnv), s.sheet+".csv")
}
