package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes/config"
)

func newSeedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file.yaml>",
		Short: "Load a YAML seed file's type registrations and facts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := config.LoadFile(args[0])
			if err != nil {
				return err
			}

			e, _, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if err := seed.Apply(cmd.Context(), e); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "loaded %d type(s), %d fact(s)\n", len(seed.Types), len(seed.Facts))
			return nil
		},
	}
}
