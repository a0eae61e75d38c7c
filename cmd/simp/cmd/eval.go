package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/simp-lang/simp/internal/eval"
)

func newEvalCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		defines []string
	)

	cmd := &cobra.Command{
		Use:   "eval [path]",
		Short: "Evaluate a program and print its value",
		Long: `Evaluate a program and print the resulting integer.

Free identifiers can be given values with --define; anything still unbound
when evaluation reaches it is an error.

Examples:
  simp eval --expr "1 + 2 * 3"
  simp eval -D width=3 -D height=4 area.simp`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			env, err := globals(defines)
			if err != nil {
				return err
			}

			v, err := a.interp.Eval(in.text, in.name, env)
			if err != nil {
				return a.report(err, in)
			}
			fmt.Fprintln(a.stdout, v)
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "bind `name=value` in the global frame (repeatable)")
	return cmd
}

// globals builds the global frame from name=value definitions.
func globals(defines []string) (*eval.Environment, error) {
	env := eval.NewEnvironment(nil)
	for _, def := range defines {
		name, value, ok := strings.Cut(def, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("--define %q: want name=value", def)
		}
		v, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "--define %s", name)
		}
		env.Define(name, v)
	}
	return env, nil
}
