package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/headwaterdb/headwater"
	"github.com/headwaterdb/headwater/frostmap"
	"github.com/headwaterdb/headwater/sqlloop"
)

// newRunCmd creates the run subcommand: execute the statements of a SQL
// file, in order, against the resolved connection.
func newRunCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "run <file.sql>",
		Short: "Run the statements of a SQL file against the resolved connection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signalContext()
			defer cancel()

			stmts, err := loadSQLFile(args[0])
			if err != nil {
				return err
			}

			handle, err := headwater.Resolve(ctx, resolverOptions()...)
			if err != nil {
				return err
			}
			defer handle.Close()

			return sqlloop.Run(ctx, handle.DB(), stmts, sqlloop.Options{DryRun: dryRun})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the statements without executing them")
	return cmd
}

// loadSQLFile splits a SQL file on semicolons into an ordered statement
// map keyed stmt_001, stmt_002, ...
func loadSQLFile(path string) (*frostmap.Map, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	stmts := frostmap.New()
	n := 0
	for _, raw := range strings.Split(string(data), ";") {
		stmt := strings.TrimSpace(raw)
		if stmt == "" {
			continue
		}
		n++
		if err := stmts.Set(fmt.Sprintf("stmt_%03d", n), stmt); err != nil {
			return nil, err
		}
	}
	if stmts.Len() == 0 {
		return nil, fmt.Errorf("%s contains no SQL statements", path)
	}
	return stmts, nil
}
