// Package inlaw runs validation checks after a pipeline finishes: the
// in-law pattern, where checks complain loudly but never block. Checks
// register themselves (typically from an init function) and RunAll
// executes every one against a live database, reporting per-check
// PASS/FAIL/ERROR and a summary.
package inlaw

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fatih/color"
)

// Check is one validation. Run returns "" for a pass, a non-empty
// message for a failure; returning an error marks the check as broken
// rather than failed.
type Check interface {
	Title() string
	Run(ctx context.Context, db *sql.DB) (failure string, err error)
}

// CheckFunc adapts a function to the Check interface.
type CheckFunc struct {
	Name string
	Fn   func(ctx context.Context, db *sql.DB) (string, error)
}

func (c CheckFunc) Title() string { return c.Name }

func (c CheckFunc) Run(ctx context.Context, db *sql.DB) (string, error) {
	return c.Fn(ctx, db)
}

var (
	mu     sync.Mutex
	checks []Check
)

// Register adds a check to the global registry.
func Register(c Check) {
	mu.Lock()
	defer mu.Unlock()
	checks = append(checks, c)
}

// Status classifies one check outcome.
type Status string

const (
	StatusPass  Status = "PASS"
	StatusFail  Status = "FAIL"
	StatusError Status = "ERROR"
)

// Result is one check's outcome.
type Result struct {
	Check   string
	Status  Status
	Message string
}

// Summary aggregates a RunAll invocation.
type Summary struct {
	Passed  int
	Failed  int
	Errors  int
	Results []Result
}

// Total reports how many checks ran.
func (s Summary) Total() int { return s.Passed + s.Failed + s.Errors }

// Options controls a RunAll invocation.
type Options struct {
	// Output receives the console report (default os.Stdout).
	Output io.Writer
	// Checks overrides the global registry, mostly for tests.
	Checks []Check
}

// RunAll executes every registered check against db. Check failures and
// errors are reported, never raised: the returned Summary is the only
// signal.
func RunAll(ctx context.Context, db *sql.DB, opts Options) Summary {
	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	toRun := opts.Checks
	if toRun == nil {
		mu.Lock()
		toRun = append([]Check(nil), checks...)
		mu.Unlock()
	}

	fmt.Fprintln(out, "===== IN-LAW CHECKS =====")
	if len(toRun) == 0 {
		fmt.Fprintln(out, "No in-law checks registered.")
		return Summary{}
	}

	green := color.New(color.FgGreen).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()

	var sum Summary
	for _, c := range toRun {
		fmt.Fprintf(out, "▶ Running: %s\n", c.Title())
		failure, err := runSafely(ctx, db, c)
		switch {
		case err != nil:
			fmt.Fprintln(out, red("ERROR: %v", err))
			sum.Errors++
			sum.Results = append(sum.Results, Result{Check: c.Title(), Status: StatusError, Message: err.Error()})
		case failure != "":
			fmt.Fprintln(out, red("FAIL: %s", failure))
			sum.Failed++
			sum.Results = append(sum.Results, Result{Check: c.Title(), Status: StatusFail, Message: failure})
		default:
			fmt.Fprintln(out, green("PASS"))
			sum.Passed++
			sum.Results = append(sum.Results, Result{Check: c.Title(), Status: StatusPass})
		}
	}

	fmt.Fprintf(out, "Summary: %d passed · %d failed · %d errors\n", sum.Passed, sum.Failed, sum.Errors)
	return sum
}

// runSafely converts a panicking check into an error result so one bad
// check cannot take the report down.
func runSafely(ctx context.Context, db *sql.DB, c Check) (failure string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("check panicked: %v", r)
		}
	}()
	return c.Run(ctx, db)
}

// QueryInt runs a query expected to return a single integer value, a
// convenience for count-style checks.
func QueryInt(ctx context.Context, db *sql.DB, query string, args ...any) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("querying %q: %w", query, err)
	}
	return n, nil
}
