// Package dbtable represents database tables across SQL dialects with a
// single hierarchical identifier: Catalog → Database → Schema → Table or
// View. The dotted string form drops straight into SQL text.
package dbtable

import (
	"fmt"
	"regexp"
	"strings"
)

// ValidationError is returned when a name or option fails validation.
type ValidationError struct {
	msg string
}

func (e *ValidationError) Error() string { return e.msg }

// HierarchyError is returned when the combination of levels is invalid.
type HierarchyError struct {
	msg string
}

func (e *HierarchyError) Error() string { return e.msg }

const maxNameLen = 60

var namePattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_-]*$`)

// Table identifies a table or view somewhere in a database hierarchy.
// At least two hierarchy levels must be set, and a table and a view
// cannot both be set. Build one with New.
type Table struct {
	catalog  string
	database string
	schema   string
	table    string
	view     string
}

// Option sets one hierarchy level.
type Option func(*Table)

// Catalog sets the catalog (Databricks/Spark style) level.
func Catalog(name string) Option { return func(t *Table) { t.catalog = name } }

// Database sets the database level.
func Database(name string) Option { return func(t *Table) { t.database = name } }

// Schema sets the schema level.
func Schema(name string) Option { return func(t *Table) { t.schema = name } }

// Name sets the table level.
func Name(name string) Option { return func(t *Table) { t.table = name } }

// View sets the view level, which occupies the same position as a table.
func View(name string) Option { return func(t *Table) { t.view = name } }

// New builds a validated table identifier.
//
//	// MySQL style (2 levels)
//	t, err := dbtable.New(dbtable.Database("mydb"), dbtable.Name("users"))
//
//	// PostgreSQL style (3 levels)
//	t, err := dbtable.New(dbtable.Database("mydb"), dbtable.Schema("public"), dbtable.Name("users"))
func New(opts ...Option) (*Table, error) {
	t := &Table{}
	for _, opt := range opts {
		opt(t)
	}
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Table) validate() error {
	levels := 0
	for _, part := range []struct {
		level, name string
	}{
		{"catalog", t.catalog},
		{"database", t.database},
		{"schema", t.schema},
		{"table", t.table},
		{"view", t.view},
	} {
		if part.name == "" {
			continue
		}
		levels++
		if err := validateName(part.name, part.level); err != nil {
			return err
		}
	}
	if t.table != "" && t.view != "" {
		return &HierarchyError{msg: "cannot specify both a table and a view: they occupy the same hierarchy level"}
	}
	if levels < 2 {
		return &HierarchyError{msg: fmt.Sprintf("at least 2 different hierarchy levels are required, got %d", levels)}
	}
	return nil
}

func validateName(name, level string) error {
	if len(name) > maxNameLen {
		return &ValidationError{msg: fmt.Sprintf("%s name %q exceeds the %d character limit (got %d)", level, name, maxNameLen, len(name))}
	}
	if !namePattern.MatchString(name) {
		return &ValidationError{msg: fmt.Sprintf("%s name %q must start with a letter and contain only letters, numbers, underscores and dashes", level, name)}
	}
	return nil
}

// Catalog returns the catalog level, if set.
func (t *Table) Catalog() string { return t.catalog }

// Database returns the database level, if set.
func (t *Table) Database() string { return t.database }

// Schema returns the schema level, if set.
func (t *Table) Schema() string { return t.schema }

// Name returns the table level, if set.
func (t *Table) Name() string { return t.table }

// ViewName returns the view level, if set.
func (t *Table) ViewName() string { return t.view }

// String returns the fully qualified dotted name for use in SQL text,
// e.g. "catalog.database.schema.table".
func (t *Table) String() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{t.catalog, t.database, t.schema, t.table, t.view} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ".")
}

// Child derives a new identifier whose table (or view) name gains an
// underscore-joined suffix: users → users_staging.
func (t *Table) Child(suffix string) (*Table, error) {
	suffix = strings.TrimLeft(suffix, "_")
	if err := validateName(suffix, "suffix"); err != nil {
		return nil, err
	}

	child := *t
	switch {
	case t.table != "":
		child.table = t.table + "_" + suffix
	case t.view != "":
		child.view = t.view + "_" + suffix
	default:
		return nil, &ValidationError{msg: "cannot create child: no table or view name defined"}
	}
	return &child, nil
}
