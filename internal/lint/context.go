package lint

import (
	"context"

	"github.com/rs/zerolog"

	"quibble/internal/ast"
	"quibble/internal/diag"
	"quibble/internal/fix"
	"quibble/internal/source"
)

// Fix replaces Range with Text.
type Fix struct {
	Range source.Span
	Text  string
	Title string
}

// Context is handed to Rule.Create. It is valid for one file.
type Context struct {
	ctx      context.Context
	meta     Meta
	reporter diag.Reporter

	Source   *ast.SourceCode
	Options  any
	Severity diag.Severity
}

// NewContext binds a rule to a parsed file and a reporter.
func NewContext(ctx context.Context, meta Meta, src *ast.SourceCode, sev diag.Severity, options any, reporter diag.Reporter) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:      ctx,
		meta:     meta,
		reporter: reporter,
		Source:   src,
		Options:  options,
		Severity: sev,
	}
}

// Filename returns the path of the file being linted.
func (c *Context) Filename() string {
	if c.Source == nil {
		return ""
	}
	if c.Source.Path != "" {
		return c.Source.Path
	}
	if c.Source.File != nil {
		return c.Source.File.Path
	}
	return ""
}

func (c *Context) Logger() *zerolog.Logger {
	return zerolog.Ctx(c.ctx)
}

func (c *Context) file() source.FileID {
	if c.Source == nil || c.Source.File == nil {
		return 0
	}
	return c.Source.File.ID
}

// Report emits a diagnostic on node. messageID selects both the diagnostic
// code and the message text from Meta.Messages.
func (c *Context) Report(node ast.Node, messageID string, f *Fix) {
	code, ok := diag.CodeFromID(messageID)
	if !ok {
		c.Logger().Debug().Str("rule", c.meta.Name).Str("message", messageID).Msg("unknown message id")
		code = diag.UnknownCode
	}
	msg := c.meta.Messages[messageID]
	if msg == "" {
		msg = code.Title()
	}

	primary := node.Span()
	primary.File = c.file()

	var fixes []diag.Fix
	if f != nil {
		span := f.Range
		span.File = primary.File
		title := f.Title
		if title == "" {
			title = "Apply " + c.meta.Name + " fix"
		}
		fixes = append(fixes, fix.ReplaceSpan(title, span, f.Text, c.Source.Text(span),
			fix.WithID(fix.StableID(code, span)),
			fix.Preferred(),
		))
	}
	c.reporter.Report(code, c.Severity, primary, msg, nil, fixes)
}
