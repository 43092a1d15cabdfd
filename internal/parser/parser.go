// Package parser builds internal/ast trees with tree-sitter. Script files use
// the javascript, typescript and tsx grammars; single-file components and
// plain HTML are read with the html grammar and their script parts re-parsed.
package parser

import (
	"context"
	"path/filepath"
	"strings"

	"fortio.org/safecast"
	"github.com/rs/zerolog"
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/ast"
	"quibble/internal/source"
)

// ErrUnsupportedLanguage is returned for files no front end understands.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// Language identifies a front end.
type Language string

const (
	LangJS   Language = "js"
	LangTS   Language = "ts"
	LangTSX  Language = "tsx"
	LangVue  Language = "vue"
	LangHTML Language = "html"
)

// Options tune parsing.
type Options struct {
	// Template enables template traversal for single-file components.
	// When false a .vue file is parsed for its scripts only.
	Template bool
}

// DefaultOptions returns options with template support on.
func DefaultOptions() Options {
	return Options{Template: true}
}

// LanguageOf picks the front end for path by extension.
func LanguageOf(path string) (Language, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJS, nil
	case ".ts", ".mts", ".cts":
		return LangTS, nil
	case ".tsx":
		return LangTSX, nil
	case ".vue":
		return LangVue, nil
	case ".html", ".htm":
		return LangHTML, nil
	}
	return "", errors.Errorf("%w: %s", ErrUnsupportedLanguage, path)
}

// Supported reports whether path has a known extension.
func Supported(path string) bool {
	_, err := LanguageOf(path)
	return err == nil
}

// Parse builds the tree for file.
func Parse(ctx context.Context, file *source.File, opts Options) (*ast.SourceCode, error) {
	if file == nil {
		return nil, errors.New("parser: nil file")
	}
	lang, err := LanguageOf(file.Path)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(ctx).Debug().Str("file", file.Path).Str("lang", string(lang)).Msg("parsing")

	src := &ast.SourceCode{File: file, Path: file.Path}
	switch lang {
	case LangJS, LangTS, LangTSX:
		end, err := safecast.Conv[uint32](len(file.Content))
		if err != nil {
			return nil, errors.Errorf("%s: file too large: %w", file.Path, err)
		}
		prog, err := parseProgram(ctx, file, lang, 0, end)
		if err != nil {
			return nil, err
		}
		src.Programs = []*ast.Program{prog}
	case LangVue:
		if err := parseSFC(ctx, file, opts, src); err != nil {
			return nil, err
		}
	case LangHTML:
		if err := parseHTML(ctx, file, src); err != nil {
			return nil, err
		}
	}
	return src, nil
}

func grammar(lang Language) *sitter.Language {
	switch lang {
	case LangTS:
		return typescript.GetLanguage()
	case LangTSX:
		return tsx.GetLanguage()
	case LangVue, LangHTML:
		return html.GetLanguage()
	default:
		return javascript.GetLanguage()
	}
}

// parseTree runs tree-sitter, checking ctx before and after.
func parseTree(ctx context.Context, lang Language, content []byte) (*sitter.Tree, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p := sitter.NewParser()
	p.SetLanguage(grammar(lang))

	tree, err := p.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, errors.Errorf("tree-sitter parse failed: %w", err)
	}
	if err := ctx.Err(); err != nil {
		tree.Close()
		return nil, errors.Errorf("parse canceled after tree-sitter: %w", err)
	}
	return tree, nil
}

// parseProgram parses file.Content[start:end] as a script body.
func parseProgram(ctx context.Context, file *source.File, lang Language, start, end uint32) (*ast.Program, error) {
	buf := file.Content[start:end]
	tree, err := parseTree(ctx, lang, buf)
	if err != nil {
		return nil, errors.Errorf("%s: %w", file.Path, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		zerolog.Ctx(ctx).Debug().Str("file", file.Path).Str("lang", string(lang)).Msg("syntax errors recovered")
	}
	c := &converter{src: buf, file: file.ID, delta: int64(start)}
	prog := &ast.Program{
		Base: ast.Base{Sp: source.Span{File: file.ID, Start: start, End: end}},
		Lang: string(lang),
		Body: c.children(root),
	}
	return prog, nil
}

// parseExpression parses file.Content[start:end] as a single expression. The
// text is wrapped in parentheses so object literals are not read as blocks.
// It returns nil when the text is not one well-formed expression.
func parseExpression(ctx context.Context, file *source.File, lang Language, start, end uint32) (ast.Node, error) {
	if lang != LangTS {
		lang = LangJS
	}
	buf := make([]byte, 0, end-start+2)
	buf = append(buf, '(')
	buf = append(buf, file.Content[start:end]...)
	buf = append(buf, ')')

	tree, err := parseTree(ctx, lang, buf)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() || root.NamedChildCount() != 1 {
		return nil, nil
	}
	stmt := root.NamedChild(0)
	if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
		return nil, nil
	}
	c := &converter{src: buf, file: file.ID, delta: int64(start) - 1}
	return c.node(stmt.NamedChild(0)), nil
}
