package fix

import (
	"fmt"

	"quibble/internal/diag"
	"quibble/internal/source"
)

// Option mutates fix during construction.
type Option func(*diag.Fix)

// WithApplicability overrides applicability metadata.
func WithApplicability(app diag.FixApplicability) Option {
	return func(f *diag.Fix) {
		f.Applicability = app
	}
}

// Preferred marks fix as preferred suggestion.
func Preferred() Option {
	return func(f *diag.Fix) {
		f.IsPreferred = true
	}
}

// WithID sets stable identifier for fix.
func WithID(id string) Option {
	return func(f *diag.Fix) {
		f.ID = id
	}
}

// StableID derives a fix identifier from the code and the edited span. It is
// stable across runs as long as files are loaded in the same order.
func StableID(code diag.Code, span source.Span) string {
	return fmt.Sprintf("%s-%d-%d-%d", code.ID(), span.File, span.Start, span.End)
}

func applyOptions(f diag.Fix, opts []Option) diag.Fix {
	for _, opt := range opts {
		if opt != nil {
			opt(&f)
		}
	}
	return f
}

// ReplaceSpan replaces text covered by span with newText.
// A non-empty expect guards the edit against stale buffers.
func ReplaceSpan(title string, span source.Span, newText, expect string, opts ...Option) diag.Fix {
	f := diag.Fix{
		Title:         title,
		Kind:          diag.FixKindQuickFix,
		Applicability: diag.FixApplicabilityAlwaysSafe,
		Edits:         []diag.TextEdit{{Span: span, NewText: newText, OldText: expect}},
	}
	return applyOptions(f, opts)
}
