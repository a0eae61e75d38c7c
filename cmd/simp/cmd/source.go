package cmd

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// source is the program text a command operates on.
type source struct {
	name string
	text string
}

// sourceFlags selects the program text: --file, --expr, a positional path,
// or standard input.
type sourceFlags struct {
	file string
	expr string
}

func (s *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&s.file, "file", "f", "", "read the program from `path`")
	cmd.Flags().StringVarP(&s.expr, "expr", "e", "", "evaluate `source` given on the command line")
	cmd.MarkFlagsMutuallyExclusive("file", "expr")
	cmd.Args = cobra.MaximumNArgs(1)
}

func (s *sourceFlags) load(cmd *cobra.Command, args []string) (*source, error) {
	file := s.file
	if len(args) == 1 {
		if file != "" || s.expr != "" {
			return nil, errors.New("give the program either as an argument or with --file/--expr, not both")
		}
		file = args[0]
	}

	switch {
	case s.expr != "":
		return &source{name: "<expr>", text: s.expr}, nil
	case file == "-":
		return readSource(cmd.InOrStdin(), "<stdin>")
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, errors.Wrapf(err, "read %s", file)
		}
		return &source{name: file, text: string(data)}, nil
	default:
		return readSource(cmd.InOrStdin(), "<stdin>")
	}
}

func readSource(r io.Reader, name string) (*source, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", name)
	}
	return &source{name: name, text: string(data)}, nil
}
