package main

import (
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/driver"
	"quibble/internal/fix"
)

func newFixCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [flags] <file|directory>",
		Short: "Apply whitespace fixes to a file or directory",
		Long: `Lint, then apply fixes according to the chosen strategy. With --all the
lint/fix cycle repeats until nothing more applies.`,
		Args: cobra.ExactArgs(1),
		RunE: runFix,
	}
	cmd.Flags().Bool("all", false, "apply all fixes, repeating until none remain")
	cmd.Flags().Bool("once", false, "apply the first available fix (default)")
	cmd.Flags().String("id", "", "apply the fix with a specific identifier")
	cmd.Flags().Bool("dry-run", false, "report what would change without writing")
	cmd.Flags().Bool("no-template", false, "parse .vue files without template support")
	return cmd
}

func readApplyOptions(cmd *cobra.Command) (fix.ApplyOptions, error) {
	applyAll, err := flagBool(cmd, "all")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	applyOnce, err := flagBool(cmd, "once")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	targetID, err := flagString(cmd, "id")
	if err != nil {
		return fix.ApplyOptions{}, err
	}
	if targetID != "" && (applyAll || applyOnce) {
		return fix.ApplyOptions{}, errors.New("--id cannot be combined with --all or --once")
	}
	if applyAll && applyOnce {
		return fix.ApplyOptions{}, errors.New("--all and --once are mutually exclusive")
	}
	mode := fix.ApplyModeOnce
	if targetID != "" {
		mode = fix.ApplyModeID
	} else if applyAll {
		mode = fix.ApplyModeAll
	}
	return fix.ApplyOptions{Mode: mode, TargetID: targetID}, nil
}

func runFix(cmd *cobra.Command, args []string) error {
	apply, err := readApplyOptions(cmd)
	if err != nil {
		return err
	}
	dryRun, err := flagBool(cmd, "dry-run")
	if err != nil {
		return err
	}
	noTmpl, err := flagBool(cmd, "no-template")
	if err != nil {
		return err
	}
	quiet, err := flagBool(cmd, "quiet")
	if err != nil {
		return err
	}
	target := args[0]
	ctx := cmd.Context()
	logger := loggerFrom(cmd)
	fsys := afero.NewOsFs()

	cfg, err := loadConfig(cmd, fsys, target)
	if err != nil {
		return err
	}
	if noTmpl {
		cfg.Lint.Template = false
	}
	paths, err := driver.Discover(ctx, fsys, target, cfg)
	if err != nil {
		return err
	}
	opts, err := lintOptions(cmd, fsys, cfg)
	if err != nil {
		return err
	}

	report, err := driver.FixFiles(ctx, opts, paths, driver.FixOptions{Apply: apply, DryRun: dryRun})
	if err != nil {
		return errors.Errorf("fix: %w", err)
	}
	for _, skip := range report.Skipped {
		logger.Debug().Str("id", skip.ID).Str("reason", skip.Reason).Msg("fix skipped")
	}
	if !quiet {
		if err := printFixReport(cmd.OutOrStdout(), report, dryRun); err != nil {
			return err
		}
	}
	if apply.Mode == fix.ApplyModeID && len(report.Applied) == 0 {
		return errors.Errorf("fix: no fix with id %q", apply.TargetID)
	}
	if !dryRun && report.Remaining != nil && report.Remaining.HasErrors() {
		return errProblems
	}
	return nil
}

func printFixReport(out io.Writer, report *driver.FixReport, dryRun bool) error {
	if len(report.Applied) == 0 {
		_, err := fmt.Fprintln(out, "No fixes to apply.")
		return err
	}
	verb := "Applied"
	if dryRun {
		verb = "Would apply"
	}
	if _, err := fmt.Fprintf(out, "%s %d fix(es) in %d pass(es):\n", verb, len(report.Applied), report.Passes); err != nil {
		return err
	}
	for _, item := range report.Applied {
		location := item.PrimaryPath
		if location == "" {
			location = "(unknown location)"
		}
		if _, err := fmt.Fprintf(out, "  %s [%s] %s (%d edits, %s)\n",
			item.Title, item.ID, location, item.EditCount, item.Applicability); err != nil {
			return err
		}
	}

	header := "Updated files:"
	if dryRun {
		header = "Would update:"
	}
	if _, err := fmt.Fprintln(out, header); err != nil {
		return err
	}
	for _, path := range report.Changed {
		if _, err := fmt.Fprintf(out, "  %s\n", path); err != nil {
			return err
		}
	}
	return nil
}
