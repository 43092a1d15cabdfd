package lsp

import (
	"encoding/json"
	"strings"

	"quibble/internal/diag"
	"quibble/internal/fix"
)

func (s *Server) handleCodeAction(msg *rpcMessage) error {
	var params codeActionParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	uri := params.TextDocument.URI
	s.mu.Lock()
	ld := s.linted[uri]
	doc := s.docs[uri]
	var text string
	stale := doc == nil || ld == nil || ld.version != doc.version
	if doc != nil {
		text = doc.text
	}
	s.mu.Unlock()
	if stale {
		// Правки от старой версии текста испортят буфер.
		return s.sendResponse(msg.ID, []codeAction{})
	}
	actions := ld.codeActions(uri, text, params)
	s.logger.Debug().Str("uri", uri).Int("actions", len(actions)).Msg("code actions")
	return s.sendResponse(msg.ID, actions)
}

// codeActions offers one quick fix per fix of each diagnostic touching the
// requested range, plus a fix-all action when the document has fixes.
func (ld *lintedDoc) codeActions(uri, text string, params codeActionParams) []codeAction {
	actions := make([]codeAction, 0)
	if wantsKind(params.Context.Only, kindQuickFix) {
		for _, d := range ld.diags {
			if !d.HasFix() {
				continue
			}
			ldiag := ld.toLSP(d)
			if !ldiag.Range.overlaps(params.Range) {
				continue
			}
			for _, f := range d.Fixes {
				actions = append(actions, codeAction{
					Title:       f.Title,
					Kind:        kindQuickFix,
					Diagnostics: []lspDiagnostic{ldiag},
					IsPreferred: f.IsPreferred,
					Edit:        &workspaceEdit{Changes: map[string][]textEdit{uri: ld.lspEdits(f)}},
				})
			}
		}
	}
	if wantsKind(params.Context.Only, kindSourceFixAll+".quibble") {
		if edit, ok := ld.fixAll(uri, text); ok {
			actions = append(actions, codeAction{
				Title: "Fix all auto-fixable problems",
				Kind:  kindSourceFixAll + ".quibble",
				Edit:  edit,
			})
		}
	}
	return actions
}

// fixAll applies every non-conflicting fix and returns a single edit
// replacing the whole buffer.
func (ld *lintedDoc) fixAll(uri, text string) (*workspaceEdit, bool) {
	res, err := fix.Plan(ld.fileSet, ld.diags, fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if err != nil {
		return nil, false
	}
	out, ok := res.Outputs[ld.file.ID]
	if !ok {
		return nil, false
	}
	return &workspaceEdit{Changes: map[string][]textEdit{
		uri: {{
			Range:   lspRange{End: textEnd(text)},
			NewText: string(ld.file.Denormalize(out)),
		}},
	}}, true
}

func (ld *lintedDoc) lspEdits(f diag.Fix) []textEdit {
	edits := make([]textEdit, 0, len(f.Edits))
	for _, e := range f.Edits {
		edits = append(edits, textEdit{Range: spanRange(ld.file, e.Span), NewText: e.NewText})
	}
	return edits
}

// wantsKind applies the client's "only" filter; kinds are hierarchical.
func wantsKind(only []string, kind string) bool {
	if len(only) == 0 {
		return true
	}
	for _, o := range only {
		if kind == o || strings.HasPrefix(kind, o+".") {
			return true
		}
	}
	return false
}

// textEnd is the position just past the last character of text.
func textEnd(text string) position {
	line := strings.Count(text, "\n")
	last := text[strings.LastIndexByte(text, '\n')+1:]
	units := 0
	for _, r := range last {
		units += utf16Len(r)
	}
	return position{Line: line, Character: units}
}
