package driver

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/config"
	"quibble/internal/diag"
	"quibble/internal/fix"
)

func memFs(t *testing.T, files map[string]string) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return fs
}

func codes(diags []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Code)
	}
	return out
}

func TestDiscover(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/src/App.vue":          "<template></template>",
		"/p/src/a.js":             "",
		"/p/src/d.ts":             "",
		"/p/src/nested/e.tsx":     "",
		"/p/node_modules/x/b.js":  "",
		"/p/dist/c.js":            "",
		"/p/readme.md":            "",
		"/p/src/legacy/old.js":    "",
		"/p/public/index.html":    "<div></div>",
		"/p/src/styles/theme.css": "",
	})
	cfg := config.Default()
	cfg.Lint.Ignore = append(cfg.Lint.Ignore, "src/legacy/**")

	files, err := Discover(context.Background(), fs, "/p", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"/p/public/index.html",
		"/p/src/App.vue",
		"/p/src/a.js",
		"/p/src/d.ts",
		"/p/src/nested/e.tsx",
	}, files)
}

func TestDiscoverIncludeNarrows(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/a.vue": "",
		"/p/b.js":  "",
	})
	cfg := config.Default()
	cfg.Lint.Include = []string{"**/*.vue"}

	files, err := Discover(context.Background(), fs, "/p", cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/a.vue"}, files)
}

func TestDiscoverSingleFile(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "", "/p/notes.txt": ""})

	files, err := Discover(context.Background(), fs, "/p/a.js", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"/p/a.js"}, files)

	_, err = Discover(context.Background(), fs, "/p/notes.txt", nil)
	require.Error(t, err)

	_, err = Discover(context.Background(), fs, "/p/missing.js", nil)
	require.Error(t, err)
}

func TestLintFiles(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/a.js":    "clsx('a  b')\n",
		"/p/ok.js":   "clsx('a b')\n",
		"/p/App.vue": "<template><div class=\" x \"></div></template>\n",
		"/p/x.md":    "# hi\n",
	})
	paths := []string{"/p/a.js", "/p/ok.js", "/p/App.vue", "/p/x.md", "/p/missing.js"}

	res, err := LintFiles(context.Background(), Options{Fs: fs, Jobs: 2}, paths)
	require.NoError(t, err)
	require.Len(t, res.Files, len(paths))

	assert.Equal(t, []diag.Code{diag.LintExcessiveWhitespaceInClassCallee}, codes(res.Files[0].Bag.Items()))
	assert.Empty(t, res.Files[1].Bag.Items())
	assert.Equal(t, []diag.Code{diag.LintExcessiveWhitespaceInClassAttribute}, codes(res.Files[2].Bag.Items()))
	assert.Equal(t, []diag.Code{diag.ParseUnsupportedLanguage}, codes(res.Files[3].Bag.Items()))
	assert.Equal(t, []diag.Code{diag.IOLoadFileError}, codes(res.Files[4].Bag.Items()))

	// load failures still resolve to their path
	missing := res.FileSet.Get(res.Files[4].FileID)
	require.NotNil(t, missing)
	assert.Equal(t, "/p/missing.js", missing.Path)

	assert.Equal(t, diag.SevWarning, severityOf(res.Files[0].Bag))
	assert.Equal(t, diag.SevWarning, severityOf(res.Files[2].Bag))
	assert.True(t, res.HasErrors())
	assert.Len(t, res.Diagnostics(), 4)
}

func severityOf(bag *diag.Bag) diag.Severity {
	var sev diag.Severity
	for _, d := range bag.Items() {
		sev = max(sev, d.Severity)
	}
	return sev
}

func TestLintFilesTemplateDisabled(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/App.vue": "<template><div class=\" x \"></div></template>\n"})
	cfg := config.Default()
	cfg.Lint.Template = false

	res, err := LintFiles(context.Background(), Options{Fs: fs, Config: cfg}, []string{"/p/App.vue"})
	require.NoError(t, err)
	assert.Equal(t, []diag.Code{diag.ParserIntegrationRequired}, codes(res.Diagnostics()))
}

func TestLintFilesRuleOff(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "clsx('a  b')\n"})
	cfg := config.Default()
	cfg.Rules.NoExcessiveWhitespace.Severity = config.SeverityOff

	res, err := LintFiles(context.Background(), Options{Fs: fs, Config: cfg}, []string{"/p/a.js"})
	require.NoError(t, err)
	assert.Empty(t, res.Diagnostics())
}

func TestLintFilesCache(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/a.js": "clsx('a  b')\n",
		"/p/b.js": "clsx(' c ')\n",
	})
	cache, err := NewDiskCache(fs, "/cache/quibble")
	require.NoError(t, err)
	opts := Options{Fs: fs, Cache: cache, Version: "test"}
	paths := []string{"/p/a.js", "/p/b.js"}

	first, err := LintFiles(context.Background(), opts, paths)
	require.NoError(t, err)
	for _, f := range first.Files {
		assert.False(t, f.Cached)
	}

	// reversed order gives different file ids; cached spans must follow
	reversed := []string{"/p/b.js", "/p/a.js"}
	second, err := LintFiles(context.Background(), opts, reversed)
	require.NoError(t, err)
	for _, f := range second.Files {
		assert.True(t, f.Cached, f.Path)
		for _, d := range f.Bag.Items() {
			assert.Equal(t, f.FileID, d.Primary.File)
			require.NotEmpty(t, d.Fixes)
			assert.Equal(t, fix.StableID(d.Code, d.Fixes[0].Edits[0].Span), d.Fixes[0].ID)
		}
	}

	plan, err := fix.Plan(second.FileSet, second.Diagnostics(), fix.ApplyOptions{Mode: fix.ApplyModeAll})
	require.NoError(t, err)
	assert.Len(t, plan.Applied, 2)

	// another version misses
	opts.Version = "next"
	third, err := LintFiles(context.Background(), opts, paths)
	require.NoError(t, err)
	assert.False(t, third.Files[0].Cached)

	require.NoError(t, cache.DropAll())
	opts.Version = "test"
	fourth, err := LintFiles(context.Background(), opts, paths)
	require.NoError(t, err)
	assert.False(t, fourth.Files[0].Cached)
}

func TestLintFilesProgressAndTimings(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/a.js": "clsx('a  b')\n",
		"/p/b.js": "x()\n",
	})
	events := make(chan Event, 64)
	opts := Options{Fs: fs, Progress: ChannelSink{Ch: events}, Timings: true}

	res, err := LintFiles(context.Background(), opts, []string{"/p/a.js", "/p/b.js"})
	require.NoError(t, err)
	close(events)

	final := make(map[string]Status)
	queued := 0
	for ev := range events {
		if ev.Status == StatusQueued {
			queued++
		}
		final[ev.File] = ev.Status
	}
	assert.Equal(t, 2, queued)
	assert.Equal(t, StatusDone, final["/p/a.js"])
	assert.Equal(t, StatusDone, final["/p/b.js"])

	found := false
	for _, d := range res.Files[1].Bag.Items() {
		if d.Code == diag.ObsTimings {
			found = true
			require.Len(t, d.Notes, 1)
			assert.Contains(t, d.Notes[0].Msg, `"path":"/p/b.js"`)
		}
	}
	assert.True(t, found)
}

func TestLintFilesCancelled(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "clsx('a  b')\n"})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := LintFiles(ctx, Options{Fs: fs}, []string{"/p/a.js"})
	require.ErrorIs(t, err, context.Canceled)
}

func TestFixFiles(t *testing.T) {
	fs := memFs(t, map[string]string{
		"/p/a.js":    "clsx(' a  b ', { x: c ? ' d ' : 'e' })\r\n",
		"/p/App.vue": "<template><div class=\" x  y \" :class=\"[' z ']\"></div></template>\n",
		"/p/ok.js":   "clsx('ok')\n",
	})
	paths := []string{"/p/a.js", "/p/App.vue", "/p/ok.js"}

	report, err := FixFiles(context.Background(), Options{Fs: fs}, paths, FixOptions{
		Apply: fix.ApplyOptions{Mode: fix.ApplyModeAll},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Passes)
	assert.Len(t, report.Applied, 4)
	assert.Equal(t, []string{"/p/App.vue", "/p/a.js"}, report.Changed)
	require.NotNil(t, report.Remaining)
	assert.Empty(t, report.Remaining.Diagnostics())

	data, err := afero.ReadFile(fs, "/p/a.js")
	require.NoError(t, err)
	assert.Equal(t, "clsx('a b', { x: c ? 'd' : 'e' })\r\n", string(data))

	data, err = afero.ReadFile(fs, "/p/App.vue")
	require.NoError(t, err)
	assert.Equal(t, "<template><div class=\"x y\" :class=\"['z']\"></div></template>\n", string(data))
}

func TestFixFilesDryRun(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "clsx(' a ')\n"})

	report, err := FixFiles(context.Background(), Options{Fs: fs}, []string{"/p/a.js"}, FixOptions{
		Apply:  fix.ApplyOptions{Mode: fix.ApplyModeAll},
		DryRun: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "clsx('a')\n", string(report.Outputs["/p/a.js"]))

	data, err := afero.ReadFile(fs, "/p/a.js")
	require.NoError(t, err)
	assert.Equal(t, "clsx(' a ')\n", string(data))
}

func TestFixFilesOnce(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "clsx(' a ', ' b ')\n"})

	report, err := FixFiles(context.Background(), Options{Fs: fs}, []string{"/p/a.js"}, FixOptions{
		Apply: fix.ApplyOptions{Mode: fix.ApplyModeOnce},
	})
	require.NoError(t, err)
	assert.Len(t, report.Applied, 1)
	assert.Len(t, report.Remaining.Diagnostics(), 1)

	data, err := afero.ReadFile(fs, "/p/a.js")
	require.NoError(t, err)
	assert.Equal(t, "clsx('a', ' b ')\n", string(data))
}

func TestFixFilesNothingToDo(t *testing.T) {
	fs := memFs(t, map[string]string{"/p/a.js": "clsx('a')\n"})

	report, err := FixFiles(context.Background(), Options{Fs: fs}, []string{"/p/a.js"}, FixOptions{})
	require.NoError(t, err)
	assert.Zero(t, report.Passes)
	assert.Empty(t, report.Changed)
}
