package driver

import (
	"context"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/fix"
	"quibble/internal/source"
)

// DefaultMaxPasses bounds the lint/fix loop of FixFiles.
const DefaultMaxPasses = 10

// FixOptions configures FixFiles.
type FixOptions struct {
	Apply fix.ApplyOptions
	// DryRun plans a single pass and writes nothing.
	DryRun    bool
	MaxPasses int
}

// FixReport summarises a FixFiles run.
type FixReport struct {
	Passes  int
	Applied []fix.AppliedFix
	Skipped []fix.SkippedFix
	// Changed lists every path written (or planned, for dry runs), sorted.
	Changed []string
	// Outputs holds planned contents of a dry run, keyed by path.
	Outputs map[string][]byte
	// Remaining is the lint result after the last pass.
	Remaining *Result
}

// FixFiles lints paths and applies fixes, re-linting until nothing more
// applies. Modes other than ApplyModeAll make a single pass.
func FixFiles(ctx context.Context, opts Options, paths []string, fixOpts FixOptions) (*FixReport, error) {
	maxPasses := fixOpts.MaxPasses
	if maxPasses <= 0 {
		maxPasses = DefaultMaxPasses
	}
	logger := zerolog.Ctx(ctx)
	report := &FixReport{}
	changed := make(map[string]struct{})

	for report.Passes < maxPasses {
		res, err := LintFiles(ctx, opts, paths)
		if err != nil {
			return report, err
		}
		report.Remaining = res

		diags := res.Diagnostics()
		var applied *fix.ApplyResult
		if fixOpts.DryRun {
			applied, err = fix.Plan(res.FileSet, diags, fixOpts.Apply)
		} else {
			applied, err = fix.Apply(res.FileSet, diags, fixOpts.Apply)
		}
		if applied != nil {
			report.Skipped = append(report.Skipped, applied.Skipped...)
		}
		if errors.Is(err, fix.ErrNoFixes) {
			break
		}
		if err != nil {
			return report, err
		}
		report.Passes++
		report.Applied = append(report.Applied, applied.Applied...)
		for _, ch := range applied.FileChanges {
			changed[ch.Path] = struct{}{}
		}
		logger.Debug().Int("pass", report.Passes).Int("applied", len(applied.Applied)).Msg("fix pass")

		if fixOpts.DryRun {
			report.Outputs = outputsByPath(res.FileSet, applied.Outputs)
			break
		}
		if fixOpts.Apply.Mode != fix.ApplyModeAll {
			report.Remaining, err = LintFiles(ctx, opts, paths)
			if err != nil {
				return report, err
			}
			break
		}
	}

	if report.Passes == maxPasses && !fixOpts.DryRun && fixOpts.Apply.Mode == fix.ApplyModeAll {
		logger.Warn().Int("passes", maxPasses).Msg("fixes did not converge")
		res, err := LintFiles(ctx, opts, paths)
		if err != nil {
			return report, err
		}
		report.Remaining = res
	}

	report.Changed = sortedKeys(changed)
	return report, nil
}

func outputsByPath(fs *source.FileSet, outputs map[source.FileID][]byte) map[string][]byte {
	out := make(map[string][]byte, len(outputs))
	for id, content := range outputs {
		if f := fs.Get(id); f != nil {
			out[f.Path] = content
		}
	}
	return out
}
