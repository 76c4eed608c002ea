package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maurer/holmes/holmes"
	"github.com/maurer/holmes/holmes/config"
	"github.com/maurer/holmes/holmes/query"
)

// newReplCmd matches the teacher's -i interactive mode: a line-oriented
// loop over the same operations the other subcommands expose, useful for
// poking at a database without restarting the process per call.
func newReplCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "repl",
		Short: "Interactive mode: register-type / set / derive / dump, one per line",
		RunE: func(cmd *cobra.Command, args []string) error {
			e, s, closeFn, err := openEngine(cmd)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "holmes repl — register-type NAME TYPE...  |  set NAME ARG...  |  derive PRED ARG... [; PRED ARG...]  |  dump NAME  |  quit")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					return nil
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				fields := strings.Fields(line)
				cmdName, rest := fields[0], fields[1:]

				switch cmdName {
				case "quit", "exit":
					return nil
				case "register-type":
					if len(rest) < 2 {
						fmt.Fprintln(out, "usage: register-type NAME TYPE...")
						continue
					}
					argTypes, err := config.ParseHTypes(rest[1:])
					if err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					if !e.RegisterType(rest[0], argTypes) {
						fmt.Fprintln(out, "registration rejected")
						continue
					}
					fmt.Fprintf(out, "registered %s/%d\n", rest[0], len(argTypes))
				case "set":
					if len(rest) < 1 {
						fmt.Fprintln(out, "usage: set NAME ARG...")
						continue
					}
					fact, err := query.ParseFact(rest[0], rest[1:])
					if err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					if err := e.Set(cmd.Context(), []holmes.Fact{fact}); err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					fmt.Fprintf(out, "set %s\n", fact)
				case "derive":
					in := query.NewInterner()
					var premises []holmes.FactTemplate
					for _, clause := range strings.Split(strings.Join(rest, " "), ";") {
						tokens := strings.Fields(clause)
						if len(tokens) == 0 {
							continue
						}
						t, err := query.ParseTemplate(tokens[0], tokens[1:], in)
						if err != nil {
							fmt.Fprintln(out, "error:", err)
							continue
						}
						premises = append(premises, t)
					}
					if len(premises) == 0 {
						fmt.Fprintln(out, "usage: derive PRED ARG... [; PRED ARG...]")
						continue
					}
					ctxs, err := e.Derive(premises)
					if err != nil {
						fmt.Fprintln(out, "error:", err)
						continue
					}
					formatContexts(out, in.Names(), ctxs)
				case "dump":
					if len(rest) != 1 {
						fmt.Fprintln(out, "usage: dump NAME")
						continue
					}
					for _, f := range s.Dump(rest[0]) {
						fmt.Fprintln(out, f)
					}
				default:
					fmt.Fprintf(out, "unknown command %q\n", cmdName)
				}
			}
		},
	}
}
