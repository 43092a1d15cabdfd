package lint

import (
	"cmp"
	"context"
	"slices"

	"gitlab.com/tozd/go/errors"

	"quibble/internal/ast"
	"quibble/internal/diag"
)

// Enabled is a rule switched on for a run.
type Enabled struct {
	Rule     Rule
	Severity diag.Severity
	Options  any
}

type activeRule struct {
	name  string
	ready Ready
}

// Run lints one parsed file. Every report passes through a DedupReporter, so
// a leaf reached from both listener tables is reported once.
func Run(ctx context.Context, src *ast.SourceCode, rules []Enabled, reporter diag.Reporter) error {
	if src == nil {
		return errors.New("lint: nil source")
	}
	dedup := diag.NewDedupReporter(reporter)

	active := make([]activeRule, 0, len(rules))
	for _, enabled := range rules {
		meta := enabled.Rule.Meta()
		lc := NewContext(ctx, meta, src, enabled.Severity, enabled.Options, dedup)
		setup, err := enabled.Rule.Create(lc)
		if err != nil {
			return errors.Errorf("rule %s: %w", meta.Name, err)
		}
		switch s := setup.(type) {
		case Ready:
			active = append(active, activeRule{name: meta.Name, ready: s})
		case Degraded:
			d := s.Diagnostic
			dedup.Report(d.Code, d.Severity, d.Primary, d.Message, d.Notes, d.Fixes)
		case nil:
		default:
			return errors.Errorf("rule %s: unexpected setup %T", meta.Name, setup)
		}
	}
	if len(active) == 0 {
		return nil
	}

	return walk(ctx, src, active)
}

// walk fires listeners in source order. Script programs are visited at
// their position among template nodes: before the first template node that
// starts after them, or after the template when none does.
func walk(ctx context.Context, src *ast.SourceCode, active []activeRule) error {
	programs := slices.Clone(src.Programs)
	slices.SortStableFunc(programs, func(a, b *ast.Program) int {
		return cmp.Compare(a.Span().Start, b.Span().Start)
	})
	next := 0
	flush := func(before uint32, all bool) error {
		for ; next < len(programs); next++ {
			prog := programs[next]
			if !all && prog.Span().Start >= before {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			ast.Inspect(prog, func(n ast.Node) bool {
				if n != nil {
					fire(active, n, false)
				}
				return true
			})
		}
		return nil
	}

	if src.HasTemplate && src.Template != nil {
		if err := ctx.Err(); err != nil {
			return err
		}
		var walkErr error
		ast.Inspect(src.Template, func(n ast.Node) bool {
			if n == nil || walkErr != nil {
				return false
			}
			if walkErr = flush(n.Span().Start, false); walkErr != nil {
				return false
			}
			fire(active, n, true)
			return true
		})
		if walkErr != nil {
			return walkErr
		}
	}
	return flush(0, true)
}

func fire(active []activeRule, n ast.Node, inTemplate bool) {
	kind := n.Kind()
	for _, rule := range active {
		if inTemplate {
			if cb := rule.ready.Template[kind]; cb != nil {
				cb(n)
			}
			if kind.IsTemplate() {
				continue
			}
		}
		if cb := rule.ready.Script[kind]; cb != nil {
			cb(n)
		}
	}
}
