package whitespace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/ast"
	"quibble/internal/diag"
	"quibble/internal/fix"
	"quibble/internal/lint"
	"quibble/internal/parser"
	"quibble/internal/source"
)

type outcome struct {
	diags []diag.Diagnostic
	fixed string
}

func lintSource(t *testing.T, path, content string, opts any, template bool) outcome {
	t.Helper()
	ctx := context.Background()
	fs := source.NewFileSet()
	id := fs.AddVirtual(path, []byte(content))

	src, err := parser.Parse(ctx, fs.Get(id), parser.Options{Template: template})
	require.NoError(t, err)

	bag := diag.NewBag(0)
	rules := []lint.Enabled{{Rule: Rule{}, Severity: diag.SevError, Options: opts}}
	require.NoError(t, lint.Run(ctx, src, rules, diag.BagReporter{Bag: bag}))
	bag.Sort()

	out := outcome{diags: bag.Items(), fixed: content}
	res, err := fix.Plan(fs, out.diags, fix.ApplyOptions{Mode: fix.ApplyModeAll})
	if err == nil {
		out.fixed = string(res.Outputs[id])
	} else {
		require.ErrorIs(t, err, fix.ErrNoFixes)
	}
	return out
}

func TestRuleMeta(t *testing.T) {
	meta := Rule{}.Meta()
	assert.Equal(t, "no-excessive-whitespace", meta.Name)
	assert.Equal(t, "layout", meta.Type)
	assert.Equal(t, "code", meta.Fixable)
	assert.True(t, meta.Recommended)
	assert.Equal(t, "Stylistic Issues", meta.Category)
	assert.Equal(t, lint.DocsURL(Name), meta.URL)
	assert.Equal(t, "The `class` attribute should not contain excessive whitespace.", meta.Messages[MessageAttribute])
	assert.Equal(t, "A class callee definition should not contain excessive whitespace", meta.Messages[MessageCallee])
}

func TestRuleValid(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
	}{
		{"script setup callee", "App.vue", `<script setup>clsx('foo bar baz')</script>`},
		{"static class", "App.vue", `<template><div class="foo bar baz"></div></template>`},
		{"bound object", "App.vue", `<template><div :class="{ foo: true, bar: true }"></div></template>`},
		{"bound array", "App.vue", `<template><div :class="['foo', 'bar']"></div></template>`},
		{"jsx", "test.jsx", `const a = <h1 className="thats an awfully hot coffee pot">Hello</h1>`},
		{"unknown callee", "test.js", `cn('foo  bar')`},
		{"member callee", "test.js", `lib.clsx('foo  bar')`},
		{"short values", "test.js", `clsx(' ', '', 'a')`},
		{"object keys of callee arguments", "test.js", `clsx({ 'foo  bar': true })`},
		{"template literal", "test.js", "clsx(`foo  bar`)"},
		{"identifier", "App.vue", `<template><div :class="classes"></div></template>`},
		{"other attribute", "App.vue", `<template><div id=" a  b "></div></template>`},
		{"html clean", "index.html", `<div class="a b"></div>`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := lintSource(t, tt.path, tt.content, nil, true)
			assert.Empty(t, out.diags)
			assert.Equal(t, tt.content, out.fixed)
		})
	}
}

func TestRuleInvalid(t *testing.T) {
	tests := []struct {
		name    string
		path    string
		content string
		opts    any
		want    string
		errors  int
		message string
	}{
		{
			name:    "script setup callee",
			path:    "App.vue",
			content: `<script setup>clsx('foo  bar baz')</script>`,
			want:    `<script setup>clsx('foo bar baz')</script>`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "custom callee",
			path:    "test.js",
			content: `customCallee('foo  bar')`,
			opts:    Options{Callees: []string{"customCallee"}},
			want:    `customCallee('foo bar')`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "jsx trailing space",
			path:    "test.tsx",
			content: `const a = <h1 className="foo bar baz ">Hello</h1>`,
			want:    `const a = <h1 className="foo bar baz">Hello</h1>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "return callee",
			path:    "test.js",
			content: "function f() {\n  return clsx('foo bar baz ')\n}",
			want:    "function f() {\n  return clsx('foo bar baz')\n}",
			errors:  1, message: MessageCallee,
		},
		{
			name:    "jsx custom attribute",
			path:    "test.jsx",
			content: `const a = <h1 quibble="foo  bar baz">Hello</h1>`,
			opts:    Options{ClassRegex: "^quibble$"},
			want:    `const a = <h1 quibble="foo bar baz">Hello</h1>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "bound callee",
			path:    "App.vue",
			content: `<template><div :class="clsx('foo  bar baz')"></div></template>`,
			want:    `<template><div :class="clsx('foo bar baz')"></div></template>`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "vue custom attribute",
			path:    "App.vue",
			content: `<template><div quibble="foo  bar baz"></div></template>`,
			opts:    &Options{ClassRegex: "^quibble$"},
			want:    `<template><div quibble="foo bar baz"></div></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "trailing",
			path:    "App.vue",
			content: `<template><div class="foo  "></div></template>`,
			want:    `<template><div class="foo"></div></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "leading",
			path:    "App.vue",
			content: `<template><div class=" foo"></div></template>`,
			want:    `<template><div class="foo"></div></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "everywhere",
			path:    "App.vue",
			content: `<template><div class=" foo bar    baz       " /></template>`,
			want:    `<template><div class="foo bar baz" /></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "object keys",
			path:    "App.vue",
			content: `<template><div :class="{ 'foo  bar': true, 'baz  ': false }"></div></template>`,
			want:    `<template><div :class="{ 'foo bar': true, 'baz': false }"></div></template>`,
			errors:  2, message: MessageAttribute,
		},
		{
			name:    "conditional both branches",
			path:    "App.vue",
			content: `<template><div :class="[condition ? 'foo ' : '   baz ']"></div></template>`,
			want:    `<template><div :class="[condition ? 'foo' : 'baz']"></div></template>`,
			errors:  2, message: MessageAttribute,
		},
		{
			name:    "conditional one branch",
			path:    "App.vue",
			content: `<template><div :class="[condition ? 'foo  bar' : 'baz lee']"></div></template>`,
			want:    `<template><div :class="[condition ? 'foo bar' : 'baz lee']"></div></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "computed key in array",
			path:    "App.vue",
			content: `<template><div :class="[{ ['bar  ']: condition }]"></div></template>`,
			want:    `<template><div :class="[{ ['bar']: condition }]"></div></template>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "array first element only",
			path:    "test.js",
			content: `clsx(['foo  bar', 'baz'])`,
			want:    `clsx(['foo bar', 'baz'])`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "callee object values",
			path:    "test.js",
			content: `cva({ base: ' btn  ', 'a  b': 'x' })`,
			want:    `cva({ base: 'btn', 'a  b': 'x' })`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "escaped quote survives",
			path:    "test.js",
			content: `clsx('it\'s  here')`,
			want:    `clsx('it\'s here')`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "escaped whitespace is collapsed",
			path:    "test.js",
			content: `clsx("a\t\tb")`,
			want:    `clsx("a b")`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "mustache callee",
			path:    "App.vue",
			content: `<template><p>{{ clsx('a   b') }}</p></template>`,
			want:    `<template><p>{{ clsx('a b') }}</p></template>`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "html static attribute",
			path:    "index.html",
			content: `<div class=" foo bar    baz       "></div>`,
			want:    `<div class="foo bar baz"></div>`,
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "html inline script",
			path:    "index.html",
			content: `<script>clsx('a  b')</script>`,
			want:    `<script>clsx('a b')</script>`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "unquoted vue value",
			path:    "App.vue",
			content: "<template><div class=\"a\" :class='\" x  y\"'></div></template>",
			want:    "<template><div class=\"a\" :class='\"x y\"'></div></template>",
			errors:  1, message: MessageAttribute,
		},
		{
			name:    "legacy octal escape",
			path:    "test.js",
			content: `clsx('a  b\101')`,
			want:    `clsx('a bA')`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "short octal escape",
			path:    "test.js",
			content: `clsx('a  b\01')`,
			want:    `clsx('a b\x01')`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "lone surrogate escape",
			path:    "test.js",
			content: `clsx('a  b\uD800')`,
			want:    `clsx('a b\uD800')`,
			errors:  1, message: MessageCallee,
		},
		{
			name:    "raw invalid utf-8",
			path:    "test.js",
			content: "clsx('a  b\xff')",
			want:    "clsx('a b\xff')",
			errors:  1, message: MessageCallee,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := lintSource(t, tt.path, tt.content, tt.opts, true)
			require.Len(t, out.diags, tt.errors)
			for _, d := range out.diags {
				assert.Equal(t, tt.message, d.Code.ID())
				assert.Equal(t, diag.SevError, d.Severity)
				require.Len(t, d.Fixes, 1)
				require.Len(t, d.Fixes[0].Edits, 1)
			}
			assert.Equal(t, tt.want, out.fixed)
		})
	}
}

func TestRuleSkipsFixThatChangesValue(t *testing.T) {
	// two lone surrogates split by a line continuation would pair up once re-escaped
	content := "clsx('a  \\uD83D\\\n\\uDE00')"
	out := lintSource(t, "test.js", content, nil, true)
	require.Len(t, out.diags, 1)
	assert.Equal(t, MessageCallee, out.diags[0].Code.ID())
	assert.Empty(t, out.diags[0].Fixes)
	assert.Equal(t, content, out.fixed)
}

func TestRuleReportsOnRoot(t *testing.T) {
	content := `<template><div :class="[c ? 'a ' : ' b']"></div></template>`
	out := lintSource(t, "App.vue", content, nil, true)
	require.Len(t, out.diags, 2)

	root := out.diags[0].Primary
	assert.Equal(t, root, out.diags[1].Primary)
	assert.Equal(t, `:class="[c ? 'a ' : ' b']"`, content[root.Start:root.End])
	assert.NotEqual(t, out.diags[0].Fixes[0].Edits[0].Span, out.diags[1].Fixes[0].Edits[0].Span)
}

func TestRuleDegraded(t *testing.T) {
	content := "<template><div class=\" a  b \"></div></template>\n<script setup>clsx('x  y')</script>\n"
	out := lintSource(t, "App.vue", content, nil, false)

	require.Len(t, out.diags, 1)
	d := out.diags[0]
	assert.Equal(t, diag.ParserIntegrationRequired, d.Code)
	assert.Equal(t, lint.DegradedMessage, d.Message)
	assert.Equal(t, source.Span{Start: 0, End: 0}, d.Primary)
	assert.Empty(t, d.Fixes)
	assert.Equal(t, content, out.fixed)

	// anything but .vue falls back to the script listeners
	js := lintSource(t, "test.js", `clsx('x  y')`, nil, false)
	require.Len(t, js.diags, 1)
	assert.Equal(t, diag.LintExcessiveWhitespaceInClassCallee, js.diags[0].Code)
}

func TestRuleRejectsBadOptions(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("clsx('a')"))
	src := &ast.SourceCode{File: fs.Get(id), Path: "a.js"}

	err := lint.Run(context.Background(), src,
		[]lint.Enabled{{Rule: Rule{}, Options: Options{ClassRegex: "(("}}},
		diag.BagReporter{Bag: diag.NewBag(0)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "class-regex")
}

func TestRuleIdempotentFix(t *testing.T) {
	content := `clsx(' a  b ', [c ? ' d ' : 'e  f'], { g: ' h  i ' })`
	first := lintSource(t, "x.js", content, nil, true)
	require.NotEmpty(t, first.diags)

	second := lintSource(t, "x.js", first.fixed, nil, true)
	assert.Empty(t, second.diags)
	assert.Equal(t, `clsx('a b', [c ? 'd' : 'e f'], { g: 'h i' })`, first.fixed)
}

func TestRuleGolden(t *testing.T) {
	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	for _, name := range []string{"App.vue", "Card.tsx"} {
		t.Run(name, func(t *testing.T) {
			content, err := os.ReadFile(filepath.Join("testdata", "fixtures", name))
			require.NoError(t, err)

			out := lintSource(t, name, string(content), nil, true)
			require.NotEmpty(t, out.diags)
			g.Assert(t, name, []byte(out.fixed))
		})
	}
}
