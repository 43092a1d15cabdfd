package lint

import (
	"path/filepath"
	"strings"

	"quibble/internal/diag"
	"quibble/internal/source"
)

// DegradedMessage is reported for .vue files parsed without template support.
const DegradedMessage = "Use a template-aware parser for .vue files (template parsing is disabled)."

// DefineTemplateBodyVisitor combines a template and a script listener table.
// Without template traversal a .vue file degrades to a single diagnostic at
// the start of the file; other files fall back to the script table.
func DefineTemplateBodyVisitor(ctx *Context, template, script Listener) Setup {
	if ctx.Source != nil && ctx.Source.HasTemplate {
		return Ready{Script: script, Template: template}
	}
	if strings.EqualFold(filepath.Ext(ctx.Filename()), ".vue") {
		return Degraded{Diagnostic: diag.New(
			ctx.Severity,
			diag.ParserIntegrationRequired,
			source.Span{File: ctx.file()},
			DegradedMessage,
		)}
	}
	return Ready{Script: script}
}
