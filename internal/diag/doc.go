// Package diag defines the diagnostic model shared by the parser, the rule
// host and every output layer.
//
// # Data model
//
// Diagnostic is the central record:
//
//   - Severity: Info, Warning or Error (severity.go).
//   - Code: compact numeric identifier with a stable string ID (codes.go).
//     Lint codes use the rule's message id as their ID, so
//     "excessive-whitespace-in-class-callee" survives every output format.
//   - Message: short, human oriented text.
//   - Primary: the source.Span of the node that triggered the report.
//   - Notes: optional secondary spans.
//   - Fixes: optional Fix records.
//
// # Fix suggestions
//
// A Fix carries a title, a kind, an applicability level and a list of
// TextEdits. TextEdit spans are in normalized source coordinates (see
// internal/source); OldText is an optional guard the fix engine checks before
// applying an edit. Fixes are data only: internal/fix plans and applies them.
//
// # Emitting diagnostics
//
// Producers talk to a Reporter. BagReporter stores into a Bag; DedupReporter
// drops repeats. Two reports may share a primary span (two leaves under one
// attribute), so deduplication keys on the first edit span as well.
//
// Package diag performs no IO and no formatting beyond the single-line short
// form used for golden files; rendering lives in internal/diagfmt.
package diag
