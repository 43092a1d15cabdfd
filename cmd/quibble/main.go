package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/term"

	"quibble/internal/version"
)

// errProblems makes the process exit with status 1 without printing
// anything: the diagnostics were already written.
var errProblems = errors.New("problems reported")

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "quibble",
		Short: "Lint class lists for excessive whitespace",
		Long: `quibble finds and fixes runs of whitespace in class lists of JavaScript,
TypeScript, JSX, Vue single-file components and HTML.`,
		Version:           version.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupGlobals,
	}

	// Глобальные флаги
	root.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	root.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	root.PersistentFlags().Bool("timings", false, "show timing information")
	root.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics per file")
	root.PersistentFlags().String("log-level", "warn", "log level (trace|debug|info|warn|error|disabled)")
	root.PersistentFlags().BoolP("verbose", "v", false, "shorthand for --log-level debug")
	root.PersistentFlags().String("config", "", "path to a config file (default: discovered upwards)")

	root.AddCommand(
		newDiagCmd(),
		newFixCmd(),
		newInitCmd(),
		newRulesCmd(),
		newLSPCmd(),
		newVersionCmd(),
	)
	return root
}

func main() {
	root := newRootCmd()
	if err := root.ExecuteContext(context.Background()); err != nil {
		if !errors.Is(err, errProblems) {
			fmt.Fprintf(os.Stderr, "quibble: %v\n", err)
		}
		os.Exit(1)
	}
}

// setupGlobals configures colour and attaches the logger to the command context.
func setupGlobals(cmd *cobra.Command, _ []string) error {
	mode, err := cmd.Flags().GetString("color")
	if err != nil {
		return err
	}
	colorOn, err := resolveColor(mode, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	applyColor(colorOn)

	level, err := cmd.Flags().GetString("log-level")
	if err != nil {
		return err
	}
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return err
	}
	stderrColor, err := resolveColor(mode, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	logger, err := newLogger(cmd.ErrOrStderr(), level, verbose, stderrColor)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(logger.WithContext(ctx))
	logger.Debug().Str("command", cmd.CommandPath()).Str("version", version.Fingerprint()).Msg("start")
	return nil
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// loggerFrom returns the logger attached by setupGlobals.
func loggerFrom(cmd *cobra.Command) *zerolog.Logger {
	return zerolog.Ctx(cmd.Context())
}
