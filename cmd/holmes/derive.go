package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/query"
)

func newDeriveCmd() *cobra.Command {
	var premiseFlags []string
	var dumpPred string

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Run a one-shot conjunctive query, or --dump a predicate's stored facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, s, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if dumpPred != "" {
				facts := s.Dump(dumpPred)
				for _, f := range facts {
					fmt.Fprintln(cmd.OutOrStdout(), f)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d fact(s)\n", len(facts))
				return nil
			}

			if len(premiseFlags) == 0 {
				return fmt.Errorf("derive needs at least one --premise, or --dump <predicate>")
			}

			in := query.NewInterner()
			premises := make([]holmes.FactTemplate, len(premiseFlags))
			for i, raw := range premiseFlags {
				tokens := strings.Fields(raw)
				if len(tokens) == 0 {
					return fmt.Errorf("--premise %d is empty", i)
				}
				t, err := query.ParseTemplate(tokens[0], tokens[1:], in)
				if err != nil {
					return err
				}
				premises[i] = t
			}

			ctxs, err := e.Derive(premises)
			if err != nil {
				return err
			}
			formatContexts(cmd.OutOrStdout(), in.Names(), ctxs)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&premiseFlags, "premise", nil, `a premise, e.g. --premise "parent ?x ?y" (repeatable)`)
	cmd.Flags().StringVar(&dumpPred, "dump", "", "list every stored fact for a predicate instead of running a query")
	return cmd
}
