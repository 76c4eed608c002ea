package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/query"
)

func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <arg>...",
		Short: "Insert one fact and run the fixpoint it triggers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fact, err := query.ParseFact(args[0], args[1:])
			if err != nil {
				return err
			}

			e, _, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := e.Set(cmd.Context(), []holmes.Fact{fact}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "set %s\n", fact)
			return nil
		},
	}
}
