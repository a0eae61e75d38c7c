package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

const replSource = "<repl>"

func newReplCmd(a *app) *cobra.Command {
	var defines []string

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Evaluate one program per input line",
		Long: `Read programs from stdin, one per line, and print each value.

A failing line is reported on stderr and the loop carries on. Blank lines
are skipped. The loop ends at end of input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := globals(defines)
			if err != nil {
				return err
			}

			prompt := func() {}
			if isTerminal(a.stderr) {
				prompt = func() { fmt.Fprint(a.stderr, "> ") }
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for prompt(); scanner.Scan(); prompt() {
				line := scanner.Text()
				if strings.TrimSpace(line) == "" {
					continue
				}
				v, err := a.interp.Eval(line, replSource, env)
				if err != nil {
					if rerr := a.report(err, &source{name: replSource, text: line}); !errors.Is(rerr, errReported) {
						return rerr
					}
					continue
				}
				fmt.Fprintln(a.stdout, v)
			}
			return errors.Wrap(scanner.Err(), "read stdin")
		},
	}
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "bind `name=value` in the global frame (repeatable)")
	return cmd
}
