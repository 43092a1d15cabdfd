package diag

import "quibble/internal/source"

// Several reports may share a root node (two branches of one conditional),
// so the first edit span is part of the identity.
type dedupKey struct {
	code      Code
	sev       Severity
	file      source.FileID
	start     uint32
	end       uint32
	msg       string
	editStart uint32
	editEnd   uint32
	hasEdit   bool
}

func keyOf(code Code, sev Severity, primary source.Span, msg string, fixes []Fix) dedupKey {
	key := dedupKey{
		code:  code,
		sev:   sev,
		file:  primary.File,
		start: primary.Start,
		end:   primary.End,
		msg:   msg,
	}
	for _, f := range fixes {
		if len(f.Edits) > 0 {
			key.editStart = f.Edits[0].Span.Start
			key.editEnd = f.Edits[0].Span.End
			key.hasEdit = true
			break
		}
	}
	return key
}

// DedupReporter wraps another Reporter and suppresses duplicate diagnostics
// with the same code, severity, primary span, message and first edit span.
type DedupReporter struct {
	next Reporter
	seen map[dedupKey]struct{}
}

// NewDedupReporter returns a Reporter that filters out duplicates while
// forwarding unique diagnostics to the provided reporter.
func NewDedupReporter(next Reporter) *DedupReporter {
	return &DedupReporter{
		next: next,
		seen: make(map[dedupKey]struct{}),
	}
}

func (r *DedupReporter) Report(code Code, sev Severity, primary source.Span, msg string, notes []Note, fixes []Fix) {
	if r == nil {
		return
	}
	key := keyOf(code, sev, primary, msg, fixes)
	if _, ok := r.seen[key]; ok {
		return
	}
	r.seen[key] = struct{}{}
	if r.next != nil {
		r.next.Report(code, sev, primary, msg, notes, fixes)
	}
}
