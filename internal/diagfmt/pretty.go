package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"quibble/internal/diag"
	"quibble/internal/source"
)

const tabWidth = 4

type palette struct {
	path, err, warn, info, code, gutter, caret, add, del, note *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		path:   color.New(color.Bold),
		err:    color.New(color.FgRed, color.Bold),
		warn:   color.New(color.FgYellow, color.Bold),
		info:   color.New(color.FgCyan, color.Bold),
		code:   color.New(color.Faint),
		gutter: color.New(color.FgBlue),
		caret:  color.New(color.FgGreen, color.Bold),
		add:    color.New(color.FgGreen),
		del:    color.New(color.FgRed),
		note:   color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{p.path, p.err, p.warn, p.info, p.code, p.gutter, p.caret, p.add, p.del, p.note} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	default:
		return p.info
	}
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>:<col>: <SEV> <code>: <Message>
// затем контекст строки с подчёркиванием ^~~~ по Span.
func Pretty(w io.Writer, bag *diag.Bag, fs *source.FileSet, opts PrettyOpts) {
	pal := newPalette(opts.Color)
	for i, d := range bag.Items() {
		if i > 0 {
			fmt.Fprintln(w)
		}
		prettyOne(w, d, fs, opts, pal)
	}
}

func prettyOne(w io.Writer, d diag.Diagnostic, fs *source.FileSet, opts PrettyOpts, pal palette) {
	file := fs.Get(d.Primary.File)
	start, _ := fs.Resolve(d.Primary)
	fmt.Fprintf(w, "%s: %s %s: %s\n",
		pal.path.Sprintf("%s:%d:%d", displayPath(file, fs, opts.PathMode), start.Line, start.Col),
		pal.severity(d.Severity).Sprint(d.Severity.String()),
		pal.code.Sprint(d.Code.ID()),
		d.Message,
	)
	if file != nil && len(file.Content) > 0 {
		writeSnippet(w, fs, file, d.Primary, opts, pal)
	}

	if opts.ShowNotes {
		for _, n := range d.Notes {
			pos, _ := fs.Resolve(n.Span)
			fmt.Fprintf(w, "  %s %s (%d:%d)\n", pal.note.Sprint("note:"), n.Msg, pos.Line, pos.Col)
		}
	}
	if opts.ShowFixes || opts.ShowPreview {
		for _, f := range sortedFixes(d.Fixes) {
			fmt.Fprintf(w, "  %s %s [%s]", pal.note.Sprint("fix:"), f.Title, f.Applicability)
			if f.ID != "" {
				fmt.Fprintf(w, " %s", pal.code.Sprint(f.ID))
			}
			fmt.Fprintln(w)
			if !opts.ShowPreview {
				continue
			}
			for _, e := range f.Edits {
				preview, err := buildFixEditPreview(fs, e)
				if err != nil {
					continue
				}
				for _, line := range preview.before {
					fmt.Fprintf(w, "    %s\n", pal.del.Sprint("- "+clip(expandTabs(line), opts.Width)))
				}
				for _, line := range preview.after {
					fmt.Fprintf(w, "    %s\n", pal.add.Sprint("+ "+clip(expandTabs(line), opts.Width)))
				}
			}
		}
	}
}

// writeSnippet prints the primary line with Context lines around it and a
// caret underline. Spans over several lines are underlined to the end of
// their first line.
func writeSnippet(w io.Writer, fs *source.FileSet, file *source.File, span source.Span, opts PrettyOpts, pal palette) {
	start, end := fs.Resolve(span)
	ctx := uint32(max(opts.Context, 0))
	first := start.Line - min(ctx, start.Line-1)
	last := start.Line + ctx
	gutterWidth := len(fmt.Sprint(last))

	for ln := first; ln <= last; ln++ {
		text := file.GetLine(ln)
		if ln > start.Line && text == "" && ln > uint32(len(file.LineIdx)) {
			break
		}
		fmt.Fprintf(w, "%s %s\n", pal.gutter.Sprintf("%*d |", gutterWidth, ln), clip(expandTabs(text), opts.Width))
		if ln != start.Line {
			continue
		}
		prefix := expandTabs(prefixBytes(text, start.Col-1))
		endCol := end.Col
		if end.Line != start.Line {
			endCol = uint32(len(text)) + 1
		}
		marked := expandTabs(prefixBytes(text, endCol-1))
		width := max(runewidth.StringWidth(marked)-runewidth.StringWidth(prefix), 1)
		pad := runewidth.StringWidth(prefix)
		if opts.Width > 0 && pad >= int(opts.Width) {
			continue
		}
		underline := "^" + strings.Repeat("~", width-1)
		fmt.Fprintf(w, "%s %s%s\n", pal.gutter.Sprintf("%*s |", gutterWidth, ""), strings.Repeat(" ", pad), pal.caret.Sprint(underline))
	}
}

func prefixBytes(line string, n uint32) string {
	if int(n) > len(line) {
		return line
	}
	return line[:n]
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

func clip(s string, width uint8) string {
	if width == 0 {
		return s
	}
	return runewidth.Truncate(s, int(width), "…")
}
