package lsp

import (
	"context"
	"sort"
	"time"

	"github.com/spf13/afero"

	"quibble/internal/config"
	"quibble/internal/diag"
	"quibble/internal/driver"
	"quibble/internal/lint"
	"quibble/internal/parser"
	"quibble/internal/source"
)

// lintedDoc is the last lint result published for a document.
type lintedDoc struct {
	version int
	fileSet *source.FileSet
	file    *source.File
	diags   []diag.Diagnostic
	docs    map[string]string
}

// scheduleLint restarts the debounce timer. Every open document is linted
// when it fires; an earlier run still in flight is cancelled.
func (s *Server) scheduleLint() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	seq := s.seq
	if s.lintCancel != nil {
		s.lintCancel()
		s.lintCancel = nil
	}
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
	}
	s.debounceTimer = time.AfterFunc(s.opts.Debounce, func() {
		s.lintOpenDocuments(seq)
	})
}

func (s *Server) stopLinting() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.debounceTimer != nil {
		s.debounceTimer.Stop()
		s.debounceTimer = nil
	}
	if s.lintCancel != nil {
		s.lintCancel()
		s.lintCancel = nil
	}
}

type docSnapshot struct {
	uri     string
	path    string
	version int
}

// lintOpenDocuments lints buffers from an in-memory filesystem and
// publishes the results, unless a newer edit superseded seq meanwhile.
func (s *Server) lintOpenDocuments(seq uint64) {
	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(s.baseCtx)
	s.lintCancel = cancel
	cfg := s.cfg
	if cfg == nil {
		cfg = config.Default()
	}
	root := s.root
	mem := afero.NewMemMapFs()
	snaps := make([]docSnapshot, 0, len(s.docs))
	for uri, doc := range s.docs {
		if doc.path == "" || !parser.Supported(doc.path) {
			continue
		}
		if err := afero.WriteFile(mem, doc.path, []byte(doc.text), 0o644); err != nil {
			s.logger.Warn().Err(err).Str("uri", uri).Msg("buffer snapshot failed")
			continue
		}
		snaps = append(snaps, docSnapshot{uri: uri, path: doc.path, version: doc.version})
	}
	s.mu.Unlock()
	defer cancel()

	if len(snaps) == 0 {
		return
	}
	sort.Slice(snaps, func(i, j int) bool { return snaps[i].uri < snaps[j].uri })
	paths := make([]string, len(snaps))
	for i, snap := range snaps {
		paths[i] = snap.path
	}

	rules, err := cfg.EnabledRules()
	if err != nil {
		s.logger.Error().Err(err).Msg("rule setup failed")
		return
	}
	docs := ruleDocs(rules)
	res, err := driver.LintFiles(ctx, driver.Options{
		Fs:             mem,
		BaseDir:        root,
		Config:         cfg,
		Rules:          rules,
		MaxDiagnostics: s.opts.MaxDiagnostics,
	}, paths)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error().Err(err).Msg("lint failed")
		}
		return
	}

	s.mu.Lock()
	if seq != s.seq {
		s.mu.Unlock()
		s.logger.Debug().Uint64("seq", seq).Msg("stale lint result dropped")
		return
	}
	published := make([]*lintedDoc, len(snaps))
	for i, snap := range snaps {
		if _, open := s.docs[snap.uri]; !open {
			continue
		}
		fr := res.Files[i]
		ld := &lintedDoc{
			version: snap.version,
			fileSet: res.FileSet,
			file:    res.FileSet.Get(fr.FileID),
			diags:   fr.Bag.Items(),
			docs:    docs,
		}
		s.linted[snap.uri] = ld
		published[i] = ld
	}
	s.mu.Unlock()

	for i, snap := range snaps {
		ld := published[i]
		if ld == nil {
			continue
		}
		version := ld.version
		if err := s.sendPublish(snap.uri, &version, ld.lspDiagnostics()); err != nil {
			s.logger.Warn().Err(err).Str("uri", snap.uri).Msg("publish failed")
		}
	}
}

// ruleDocs maps message ids to the documentation page of their rule.
func ruleDocs(rules []lint.Enabled) map[string]string {
	out := make(map[string]string)
	for _, e := range rules {
		meta := e.Rule.Meta()
		for id := range meta.Messages {
			out[id] = meta.URL
		}
	}
	return out
}

func (ld *lintedDoc) lspDiagnostics() []lspDiagnostic {
	out := make([]lspDiagnostic, 0, len(ld.diags))
	for _, d := range ld.diags {
		out = append(out, ld.toLSP(d))
	}
	return out
}

func (ld *lintedDoc) toLSP(d diag.Diagnostic) lspDiagnostic {
	out := lspDiagnostic{
		Range:    spanRange(ld.file, d.Primary),
		Severity: lspSeverity(d.Severity),
		Code:     d.Code.ID(),
		Source:   "quibble",
		Message:  d.Message,
	}
	if href, ok := ld.docs[out.Code]; ok && href != "" {
		out.CodeDescription = &codeDescription{Href: href}
	}
	return out
}

func lspSeverity(sev diag.Severity) int {
	switch sev {
	case diag.SevError:
		return severityError
	case diag.SevWarning:
		return severityWarning
	default:
		return severityInformation
	}
}
