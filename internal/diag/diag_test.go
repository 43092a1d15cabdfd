package diag

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/source"
)

func editFix(span source.Span, text string) Fix {
	return Fix{Title: "fix", Edits: []TextEdit{{Span: span, NewText: text}}}
}

func TestDedupReporterKeepsDistinctLeaves(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	root := source.Span{Start: 0, End: 40}

	r.Report(LintExcessiveWhitespaceInClassAttribute, SevWarning, root, "m", nil, []Fix{editFix(source.Span{Start: 5, End: 9}, "a")})
	r.Report(LintExcessiveWhitespaceInClassAttribute, SevWarning, root, "m", nil, []Fix{editFix(source.Span{Start: 14, End: 20}, "b")})
	r.Report(LintExcessiveWhitespaceInClassAttribute, SevWarning, root, "m", nil, []Fix{editFix(source.Span{Start: 5, End: 9}, "a")})

	require.Equal(t, 2, bag.Len())
	assert.Equal(t, uint32(5), bag.Items()[0].Fixes[0].Edits[0].Span.Start)
	assert.Equal(t, uint32(14), bag.Items()[1].Fixes[0].Edits[0].Span.Start)
}

func TestBagLimitSortDedup(t *testing.T) {
	bag := NewBag(3)
	root := source.Span{Start: 2, End: 30}
	require.True(t, bag.Add(New(SevWarning, LintExcessiveWhitespaceInClassCallee, root, "later").WithFix(editFix(source.Span{Start: 20, End: 25}, "x"))))
	require.True(t, bag.Add(New(SevWarning, LintExcessiveWhitespaceInClassCallee, root, "later").WithFix(editFix(source.Span{Start: 4, End: 8}, "x"))))
	require.True(t, bag.Add(New(SevError, ParseFailed, source.Span{}, "parse")))
	assert.False(t, bag.Add(New(SevInfo, ObsInfo, source.Span{}, "dropped")))

	bag.Sort()
	items := bag.Items()
	assert.Equal(t, ParseFailed, items[0].Code)
	assert.Equal(t, uint32(4), items[1].Fixes[0].Edits[0].Span.Start)
	assert.Equal(t, uint32(20), items[2].Fixes[0].Edits[0].Span.Start)

	bag.Merge(bag)
	assert.Equal(t, 6, bag.Len())
	bag.Dedup()
	assert.Equal(t, 3, bag.Len())
	assert.True(t, bag.HasErrors())
	assert.True(t, bag.HasWarnings())

	bag.Filter(func(d Diagnostic) bool { return d.Severity < SevError })
	assert.False(t, bag.HasErrors())
	assert.Equal(t, 2, bag.Len())
}

func TestReportBuilderEmitsOnce(t *testing.T) {
	bag := NewBag(0)
	b := NewReportBuilder(BagReporter{Bag: bag}, SevWarning, LintExcessiveWhitespaceInClassCallee, source.Span{Start: 1, End: 2}, "msg").
		WithNote(source.Span{Start: 1, End: 1}, "here").
		WithFix(editFix(source.Span{Start: 1, End: 2}, "y"))
	b.Emit()
	b.Emit()

	require.Equal(t, 1, bag.Len())
	d := bag.Items()[0]
	assert.Len(t, d.Notes, 1)
	assert.True(t, d.HasFix())
	assert.Equal(t, d, b.Diagnostic())
}

func TestCodesRoundTrip(t *testing.T) {
	tests := []struct {
		code Code
		id   string
	}{
		{LintExcessiveWhitespaceInClassAttribute, "excessive-whitespace-in-class-attribute"},
		{LintExcessiveWhitespaceInClassCallee, "excessive-whitespace-in-class-callee"},
		{ParserIntegrationRequired, "parser-integration-required"},
		{IOLoadFileError, "io-load-file-error"},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			assert.Equal(t, tt.id, tt.code.ID())
			got, ok := CodeFromID(tt.id)
			require.True(t, ok)
			assert.Equal(t, tt.code, got)
		})
	}
	assert.Equal(t, "unknown", Code(999).ID())
	_, ok := CodeFromID("nope")
	assert.False(t, ok)
}

func TestParseSeverity(t *testing.T) {
	for in, want := range map[string]Severity{"warn": SevWarning, "WARNING": SevWarning, " error ": SevError, "info": SevInfo} {
		got, err := ParseSeverity(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseSeverity("fatal")
	assert.Error(t, err)
}

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")
	id := fs.Add("/workspace/src/App.vue", []byte("<template>\n  <div class=\" a\" />\n</template>\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     LintExcessiveWhitespaceInClassAttribute,
			Message:  "The `class` attribute should not contain excessive whitespace.",
			Primary:  source.Span{File: id, Start: 16, End: 26},
			Notes:    []Note{{Span: source.Span{File: id, Start: 0, End: 0}, Msg: "first\nline"}},
		},
		{
			Severity: SevError,
			Code:     ParseFailed,
			Message:  "broken",
			Primary:  source.Span{File: id, Start: 0, End: 0},
		},
	}

	want := "error parse-failed src/App.vue:1:1 broken\n" +
		"note excessive-whitespace-in-class-attribute src/App.vue:1:1 first line\n" +
		"warning excessive-whitespace-in-class-attribute src/App.vue:2:6 The `class` attribute should not contain excessive whitespace."
	assert.Equal(t, want, FormatShortDiagnostics(diags, fs, true))
	assert.Equal(t, "", FormatShortDiagnostics(nil, fs, false))
}
