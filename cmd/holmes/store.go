package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes/engine"
	"github.com/maurer/holmes/holmes/store"
	"github.com/maurer/holmes/holmes/trace"
)

// openEngine opens the store a subcommand's --db/--mem flags select and
// wraps it in an Engine, attaching a Console tracer when --verbose is set —
// the same db-path-or-memory choice the teacher's cmd/datalog offers,
// generalized from a single always-on database to an explicit switch since
// this engine's in-memory backend is a first-class option, not a fallback.
func openEngine(cmd *cobra.Command) (*engine.Engine, store.Store, func() error, error) {
	useMem, _ := cmd.Flags().GetBool("mem")
	verbose, _ := cmd.Flags().GetBool("verbose")

	var s store.Store
	var closeFn func() error
	if useMem {
		m := store.NewMem()
		s, closeFn = m, m.Close
	} else {
		dbPath, _ := cmd.Flags().GetString("db")
		b, err := store.NewBadger(dbPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("open badger store at %s: %w", dbPath, err)
		}
		s, closeFn = b, b.Close
	}

	e := engine.New(s)
	if verbose {
		e = e.WithTracer(trace.NewConsole(cmd.ErrOrStderr()))
	}
	return e, s, closeFn, nil
}
