package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes/config"
	"github.com/maurer/holmes/holmes/rpc"
)

func newServeCmd() *cobra.Command {
	var addr string
	var seedPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run a net/rpc server over a store",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, _, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			if seedPath != "" {
				seed, err := config.LoadFile(seedPath)
				if err != nil {
					return err
				}
				if err := seed.Apply(cmd.Context(), e); err != nil {
					return fmt.Errorf("apply seed: %w", err)
				}
			}

			srv, err := rpc.Serve(addr, e)
			if err != nil {
				return err
			}
			defer srv.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "listening on %s\n", srv.Addr())

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
			<-sig
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8420", "address to listen on")
	cmd.Flags().StringVar(&seedPath, "seed", "", "YAML seed file to apply before serving")
	return cmd
}
