package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/config"
	"quibble/internal/diag"
	"quibble/internal/diagfmt"
	"quibble/internal/driver"
	"quibble/internal/lint"
	"quibble/internal/observ"
	"quibble/internal/rules"
	"quibble/internal/source"
	"quibble/internal/version"
)

const projectURL = "https://github.com/kamilpula/eslint-plugin-quibble"

func newDiagCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diag [flags] <file|directory>",
		Short: "Report excessive whitespace in class lists",
		Long: `Lint a file, or every matching file of a directory, and print the
diagnostics. Exits with status 1 when an error-severity diagnostic is reported.`,
		Args: cobra.ExactArgs(1),
		RunE: runDiag,
	}
	cmd.Flags().String("format", "pretty", "output format (pretty|json|sarif|short)")
	cmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	cmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	cmd.Flags().Bool("suggest", false, "include fix suggestions in output")
	cmd.Flags().Bool("preview", false, "preview fixes inline (implies --suggest)")
	cmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
	cmd.Flags().Bool("disk-cache", false, "reuse results of unchanged files across runs")
	cmd.Flags().String("ui", "auto", "progress UI for directories (auto|on|off)")
	cmd.Flags().Bool("no-template", false, "parse .vue files without template support")
	return cmd
}

type diagFlags struct {
	format    string
	jobs      int
	withNotes bool
	suggest   bool
	preview   bool
	fullPath  bool
	diskCache bool
	ui        uiMode
	noTmpl    bool
	quiet     bool
	timings   bool
	useColor  bool
}

func readDiagFlags(cmd *cobra.Command) (diagFlags, error) {
	var (
		f   diagFlags
		err error
	)
	if f.format, err = flagString(cmd, "format"); err != nil {
		return f, err
	}
	switch f.format {
	case "pretty", "json", "sarif", "short":
	default:
		return f, errors.Errorf("unknown format: %s", f.format)
	}
	if f.jobs, err = flagInt(cmd, "jobs"); err != nil {
		return f, err
	}
	if f.withNotes, err = flagBool(cmd, "with-notes"); err != nil {
		return f, err
	}
	if f.suggest, err = flagBool(cmd, "suggest"); err != nil {
		return f, err
	}
	if f.preview, err = flagBool(cmd, "preview"); err != nil {
		return f, err
	}
	if f.fullPath, err = flagBool(cmd, "fullpath"); err != nil {
		return f, err
	}
	if f.diskCache, err = flagBool(cmd, "disk-cache"); err != nil {
		return f, err
	}
	uiValue, err := flagString(cmd, "ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.noTmpl, err = flagBool(cmd, "no-template"); err != nil {
		return f, err
	}
	if f.quiet, err = flagBool(cmd, "quiet"); err != nil {
		return f, err
	}
	if f.timings, err = flagBool(cmd, "timings"); err != nil {
		return f, err
	}
	colorMode, err := flagString(cmd, "color")
	if err != nil {
		return f, err
	}
	f.useColor, err = resolveColor(colorMode, cmd.OutOrStdout())
	return f, err
}

func (f diagFlags) pathMode() diagfmt.PathMode {
	if f.fullPath {
		return diagfmt.PathModeAbsolute
	}
	return diagfmt.PathModeAuto
}

func runDiag(cmd *cobra.Command, args []string) error {
	flags, err := readDiagFlags(cmd)
	if err != nil {
		return err
	}
	target := args[0]
	ctx := cmd.Context()
	logger := loggerFrom(cmd)
	timer := observ.NewTimer()
	fsys := afero.NewOsFs()

	cfg, err := loadConfig(cmd, fsys, target)
	if err != nil {
		return err
	}
	if flags.noTmpl {
		cfg.Lint.Template = false
	}

	var paths []string
	err = timer.Track("discover", func() error {
		var derr error
		paths, derr = driver.Discover(ctx, fsys, target, cfg)
		return derr
	})
	if err != nil {
		return err
	}

	opts, err := lintOptions(cmd, fsys, cfg)
	if err != nil {
		return err
	}
	opts.Jobs = flags.jobs
	opts.Timings = flags.timings
	if flags.diskCache {
		cache, cerr := driver.OpenDiskCache("quibble")
		if cerr != nil {
			logger.Warn().Err(cerr).Msg("disk cache disabled")
		} else {
			opts.Cache = cache
			logger.Debug().Str("dir", cache.Dir()).Msg("disk cache enabled")
		}
	}

	var result *driver.Result
	err = timer.Track("lint", func() error {
		var lerr error
		useUI := len(paths) > 1 && flags.format == "pretty" && !flags.quiet && shouldUseTUI(flags.ui)
		if useUI {
			result, lerr = runLintWithUI(ctx, "quibble diag", paths, opts)
		} else {
			result, lerr = driver.LintFiles(ctx, opts, paths)
		}
		return lerr
	})
	if err != nil {
		return errors.Errorf("diagnosis failed: %w", err)
	}

	err = timer.Track("render", func() error {
		return renderDiagnostics(cmd.OutOrStdout(), result, flags, cmd.CommandPath(), args)
	})
	if err != nil {
		return err
	}

	if !flags.quiet && flags.format == "pretty" {
		printSummary(cmd.ErrOrStderr(), result)
	}
	if flags.timings {
		fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
	}
	timer.Log(logger, "diag timings")

	if result.HasErrors() {
		return errProblems
	}
	return nil
}

func renderDiagnostics(w io.Writer, result *driver.Result, flags diagFlags, command string, args []string) error {
	showFixes := flags.suggest || flags.preview
	switch flags.format {
	case "pretty":
		opts := diagfmt.PrettyOpts{
			Color:       flags.useColor,
			Context:     2,
			PathMode:    flags.pathMode(),
			ShowNotes:   flags.withNotes,
			ShowFixes:   showFixes,
			ShowPreview: flags.preview,
		}
		first := true
		for _, fr := range result.Files {
			if fr.Bag == nil || fr.Bag.Len() == 0 {
				continue
			}
			if !first {
				fmt.Fprintln(w)
			}
			first = false
			diagfmt.Pretty(w, fr.Bag, result.FileSet, opts)
		}
		return nil
	case "short":
		return diagfmt.Short(w, result.Diagnostics(), result.FileSet, flags.withNotes)
	case "json":
		opts := diagfmt.JSONOpts{
			IncludePositions: true,
			PathMode:         flags.pathMode(),
			IncludeNotes:     flags.withNotes,
			IncludeFixes:     showFixes,
			IncludePreviews:  flags.preview,
		}
		if len(result.Files) == 1 {
			return diagfmt.JSON(w, result.Files[0].Bag, result.FileSet, opts)
		}
		bags := make(map[source.FileID]*diag.Bag, len(result.Files))
		for _, fr := range result.Files {
			bags[fr.FileID] = fr.Bag
		}
		return diagfmt.JSONByFile(w, bags, result.FileSet, opts)
	case "sarif":
		all := diag.NewBag(0)
		for _, d := range result.Diagnostics() {
			all.Add(d)
		}
		return diagfmt.Sarif(w, all, result.FileSet, diagfmt.SarifRunMeta{
			ToolName:       "quibble",
			ToolVersion:    version.Version,
			InformationURI: projectURL,
			InvocationArgs: append([]string{command}, args...),
			Rules:          ruleMetas(),
		})
	}
	return errors.Errorf("unknown format: %s", flags.format)
}

func ruleMetas() []lint.Meta {
	all := rules.Builtin()
	out := make([]lint.Meta, 0, len(all))
	for _, r := range all {
		out = append(out, r.Meta())
	}
	return out
}

func printSummary(w io.Writer, result *driver.Result) {
	var errs, warns, fixable, cached int
	for _, fr := range result.Files {
		if fr.Cached {
			cached++
		}
		if fr.Bag == nil {
			continue
		}
		for _, d := range fr.Bag.Items() {
			switch d.Severity {
			case diag.SevError:
				errs++
			case diag.SevWarning:
				warns++
			}
			if d.HasFix() {
				fixable++
			}
		}
	}
	if errs+warns == 0 {
		fmt.Fprintf(w, "%d file(s) checked, no problems\n", len(result.Files))
		return
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d problem(s) (%d error(s), %d warning(s)) in %d file(s)", errs+warns, errs, warns, len(result.Files))
	if cached > 0 {
		fmt.Fprintf(&b, ", %d from cache", cached)
	}
	fmt.Fprintln(w, b.String())
	if fixable > 0 {
		fmt.Fprintf(w, "%d problem(s) fixable with `quibble fix --all`\n", fixable)
	}
}

// lintOptions builds driver options from the flags diag and fix share.
func lintOptions(cmd *cobra.Command, fsys afero.Fs, cfg *config.Config) (driver.Options, error) {
	maxDiags, err := flagInt(cmd, "max-diagnostics")
	if err != nil {
		return driver.Options{}, err
	}
	return driver.Options{
		Fs:             fsys,
		Config:         cfg,
		MaxDiagnostics: maxDiags,
		Version:        version.Fingerprint(),
	}, nil
}
