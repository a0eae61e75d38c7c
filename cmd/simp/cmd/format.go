package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/simp-lang/simp/internal/ast"
)

func newParseCmd(a *app) *cobra.Command {
	var (
		src  sourceFlags
		tree bool
	)

	cmd := &cobra.Command{
		Use:   "parse [path]",
		Short: "Parse a program and print its syntax tree",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			expr, err := a.interp.Parse(in.text, in.name)
			if err != nil {
				return a.report(err, in)
			}

			if tree {
				fmt.Fprint(a.stdout, ast.Dump(expr))
				return nil
			}
			fmt.Fprintln(a.stdout, ast.Print(expr))
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&tree, "tree", false, "print an indented tree instead of source")
	return cmd
}

func newFmtCmd(a *app) *cobra.Command {
	var (
		src   sourceFlags
		check bool
	)

	cmd := &cobra.Command{
		Use:   "fmt [path]",
		Short: "Print a program in canonical form",
		Long: `Print a program in canonical form: single spaces between tokens and
parentheses only where the source has them.

With --check nothing is printed to stdout; the command fails if the
program is not already canonical.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			expr, err := a.interp.Parse(in.text, in.name)
			if err != nil {
				return a.report(err, in)
			}

			canonical := ast.Print(expr)
			if !check {
				fmt.Fprintln(a.stdout, canonical)
				return nil
			}
			if strings.TrimSpace(in.text) != canonical {
				return errors.Errorf("%s is not canonically formatted", in.name)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&check, "check", false, "fail if the program is not canonical")
	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var (
		src     sourceFlags
		defines []string
	)

	cmd := &cobra.Command{
		Use:   "check [path]",
		Short: "Parse a program and warn about identifiers that are never bound",
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := src.load(cmd, args)
			if err != nil {
				return err
			}
			env, err := globals(defines)
			if err != nil {
				return err
			}
			warnings, err := a.interp.Check(in.text, in.name, env)
			if err != nil {
				return a.report(err, in)
			}

			f := a.formatter(in)
			for _, w := range warnings {
				f.Format(w)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().StringArrayVarP(&defines, "define", "D", nil, "treat `name=value` as bound (repeatable)")
	return cmd
}
