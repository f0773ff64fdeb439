// Package sqlloop runs an ordered set of SQL statements against a
// database, with a dry-run mode that prints the statements without
// touching the database. Minimal by design: no error handling beyond
// propagation, no templating, no scheduling.
package sqlloop

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"

	"github.com/headwaterdb/headwater/frostmap"
)

// Options controls a loop run.
type Options struct {
	// DryRun prints the statements instead of executing them.
	DryRun bool
	// Output receives the loop's console trace (default os.Stdout).
	Output io.Writer
}

// Run executes every statement in stmts, in insertion order, inside a
// single transaction. Database errors roll the transaction back and
// propagate untouched.
func Run(ctx context.Context, db *sql.DB, stmts *frostmap.Map, opts Options) error {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	if opts.DryRun {
		fmt.Fprintln(out, "===== DRY-RUN MODE – NO SQL WILL BE EXECUTED =====")
	} else {
		fmt.Fprintln(out, "===== EXECUTING SQL LOOP =====")
	}

	for _, key := range stmts.Keys() {
		fmt.Fprintf(out, "▶ %s: %s\n", key, stmts.Get(key))
	}

	if !opts.DryRun && stmts.Len() > 0 {
		if err := execAll(ctx, db, stmts); err != nil {
			return err
		}
	}

	if opts.DryRun {
		fmt.Fprintln(out, "===== I AM NOT RUNNING SQL =====")
	} else {
		fmt.Fprintln(out, "===== SQL LOOP COMPLETE =====")
	}
	return nil
}

func execAll(ctx context.Context, db *sql.DB, stmts *frostmap.Map) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	for _, key := range stmts.Keys() {
		if _, err := tx.ExecContext(ctx, stmts.Get(key)); err != nil {
			tx.Rollback()
			return fmt.Errorf("executing %q: %w", key, err)
		}
	}
	return tx.Commit()
}
