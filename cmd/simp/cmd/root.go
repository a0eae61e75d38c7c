package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/simp-lang/simp/internal/config"
	"github.com/simp-lang/simp/internal/diag"
	"github.com/simp-lang/simp/internal/interp"
	"github.com/simp-lang/simp/internal/logging"
)

// parseCacheSize bounds the parsed programs kept per invocation. Only repl
// sees repeated input.
const parseCacheSize = 128

// errReported marks a failure that has already been rendered on stderr.
var errReported = errors.New("failure already reported")

// app carries the state shared by every subcommand of one invocation.
type app struct {
	cfgFile  string
	verbose  bool
	maxDepth int
	noColor  bool

	cfg    *config.Config
	logger *zap.Logger
	interp *interp.Interpreter
	color  bool

	stdout io.Writer
	stderr io.Writer
}

// Execute runs the simp command line against the process's arguments and
// standard streams.
func Execute() error {
	return run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root, a := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	if err != nil && !errors.Is(err, errReported) {
		prefix := color.New(color.FgRed, color.Bold)
		if a.color {
			prefix.EnableColor()
		} else {
			prefix.DisableColor()
		}
		fmt.Fprintf(stderr, "%s %v\n", prefix.Sprint("error:"), err)
	}
	return err
}

func newRootCmd(stdout, stderr io.Writer) (*cobra.Command, *app) {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "simp",
		Short: "Interpreter for the simp expression language",
		Long: `simp tokenizes, parses and evaluates programs written in a small
integer expression language with let bindings and conditionals.

Examples:
  simp eval --expr "let x = 2 in x * 21 end"
  simp eval -D n=10 prog.simp
  simp tokens --file prog.simp
  simp parse --tree prog.simp
  simp fmt --check prog.simp
  simp repl -D n=10`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (.toml, .yaml or .yml; default $"+config.EnvVar+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "log every stage at debug level")
	flags.IntVar(&a.maxDepth, "max-depth", 0, "nesting limit for parsing and evaluation (0 disables it)")
	flags.BoolVar(&a.noColor, "no-color", false, "disable colored output")

	root.AddCommand(
		newEvalCmd(a),
		newTokensCmd(a),
		newParseCmd(a),
		newFmtCmd(a),
		newCheckCmd(a),
		newReplCmd(a),
	)
	return root, a
}

// setup resolves configuration, applies flag overrides and builds the logger
// and interpreter.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(a.cfgFile)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.Limits.MaxDepth = a.maxDepth
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "--max-depth")
		}
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.Log, a.verbose, a.stderr)
	if err != nil {
		return err
	}
	a.logger = logger.With(
		zap.String("command", cmd.Name()),
		zap.String("run", uuid.New().String()))

	a.color = !a.noColor && cfg.ColorEnabled(isTerminal(a.stderr))
	a.interp = interp.New(
		interp.WithConfig(cfg),
		interp.WithLogger(a.logger),
		interp.WithParseCache(parseCacheSize))
	return nil
}

// report renders a stage failure with a source snippet. Errors that carry no
// diagnostic are returned unchanged for Execute to print.
func (a *app) report(err error, src *source) error {
	d, ok := interp.Diagnose(err)
	if !ok {
		return err
	}
	a.formatter(src).Format(d)
	return errReported
}

func (a *app) formatter(src *source) *diag.Formatter {
	f := diag.NewFormatter(a.stderr, diag.WithColor(a.color))
	f.AddSource(src.name, src.text)
	return f
}

// isTerminal reports whether w is a file attached to a terminal. Only the
// descriptor of w itself is consulted.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
