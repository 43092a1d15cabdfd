package diagfmt

import (
	"io"

	"quibble/internal/diag"
	"quibble/internal/source"
)

// Short writes one line per diagnostic: "<sev> <code> <path>:<line>:<col> <message>".
func Short(w io.Writer, items []diag.Diagnostic, fs *source.FileSet, includeNotes bool) error {
	out := diag.FormatShortDiagnostics(items, fs, includeNotes)
	if out == "" {
		return nil
	}
	_, err := io.WriteString(w, out+"\n")
	return err
}
