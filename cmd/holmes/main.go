package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "holmes",
		Short: "A forward-chaining fact engine",
		Long:  "holmes runs a typed fact store and fixpoint analyzer loop, either as a standalone RPC server or as a local command against a database directory.",
	}
	root.PersistentFlags().String("db", "holmes.db", "database directory (badger); omit with --mem for an in-memory store")
	root.PersistentFlags().Bool("mem", false, "use an in-memory store instead of --db")
	root.PersistentFlags().Bool("verbose", false, "print fixpoint generation trace to stderr")

	root.AddCommand(newServeCmd())
	root.AddCommand(newRegisterTypeCmd())
	root.AddCommand(newSetCmd())
	root.AddCommand(newDeriveCmd())
	root.AddCommand(newReplCmd())
	root.AddCommand(newSeedCmd())
	return root
}
