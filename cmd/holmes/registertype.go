package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes/config"
)

func newRegisterTypeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register-type <name> <arg-type>...",
		Short: "Register a predicate's argument-type signature",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, typeNames := args[0], args[1:]
			argTypes, err := config.ParseHTypes(typeNames)
			if err != nil {
				return err
			}

			e, _, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if !e.RegisterType(name, argTypes) {
				return fmt.Errorf("registration rejected for %s (invalid name or conflicting signature)", name)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "registered %s/%d\n", name, len(argTypes))
			return nil
		},
	}
}
