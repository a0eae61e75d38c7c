package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/simp-lang/simp/internal/lexer"
)

func newTokensCmd(a *app) *cobra.Command {
	var (
		src  sourceFlags
		long bool
	)

	cmd := &cobra.Command{
		Use:   "tokens [path]",
		Short: "Print the token stream, one token per line",
		Long: `Print the token stream, one token per line, as <line>:<col> <token>.
Keywords print as name-keyword and operators by name, e.g. plus-operator.

With --long every token is followed by its file, line and position.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := src.load(cmd, args)
			if err != nil {
				return err
			}

			tokens, err := a.interp.Tokenize(in.text, in.name)
			if err != nil {
				return a.report(err, in)
			}

			palette := newTokenPalette(a.color)
			for _, tok := range tokens {
				text := palette.paint(tok)
				if long {
					fmt.Fprintf(a.stdout, "%s%s\n", text, tok.Location())
					continue
				}
				fmt.Fprintf(a.stdout, "%d:%d %s\n", tok.Span.Line, tok.Span.Column, text)
			}
			return nil
		},
	}
	src.register(cmd)
	cmd.Flags().BoolVar(&long, "long", false, "append file, line and position to each token")
	return cmd
}

type tokenPalette map[lexer.Kind]*color.Color

func newTokenPalette(enabled bool) tokenPalette {
	p := tokenPalette{
		lexer.INTEGER:    color.New(color.FgMagenta),
		lexer.IDENTIFIER: color.New(color.FgGreen),
		lexer.KEYWORD:    color.New(color.FgCyan, color.Bold),
		lexer.OPERATOR:   color.New(color.FgYellow),
	}
	for _, c := range p {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p tokenPalette) paint(tok lexer.Token) string {
	if c, ok := p[tok.Kind]; ok {
		return c.Sprint(tok.String())
	}
	return tok.String()
}
