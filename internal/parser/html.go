package parser

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/ast"
	"quibble/internal/source"
)

// parseHTML reads a plain HTML document. Static attributes become
// TextAttributes inside an "html" program; inline scripts become programs of
// their own. HTML has no template capability.
func parseHTML(ctx context.Context, file *source.File, src *ast.SourceCode) error {
	tree, err := parseTree(ctx, LangHTML, file.Content)
	if err != nil {
		return errors.Errorf("%s: %w", file.Path, err)
	}
	defer tree.Close()

	b := &htmlBuilder{ctx: ctx, file: file}
	root := tree.RootNode()
	doc := &ast.Program{
		Base: ast.Base{Sp: nodeSpan(file.ID, root)},
		Lang: string(LangHTML),
		Body: b.nodes(root),
	}
	if b.err != nil {
		return b.err
	}
	src.Programs = append([]*ast.Program{doc}, b.scripts...)
	return nil
}

type htmlBuilder struct {
	ctx     context.Context
	file    *source.File
	scripts []*ast.Program
	err     error
}

func (b *htmlBuilder) nodes(n *sitter.Node) []ast.Node {
	var out []ast.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "element", "script_element", "style_element":
			out = append(out, b.element(child))
		case "ERROR":
			out = append(out, b.nodes(child)...)
		}
	}
	return out
}

func (b *htmlBuilder) element(el *sitter.Node) ast.Node {
	content := b.file.Content
	tag := openTag(el)
	node := &ast.Other{Base: ast.Base{Sp: nodeSpan(b.file.ID, el)}, Type: el.Type()}
	for _, a := range attributes(tag) {
		node.Children = append(node.Children, b.attribute(a))
	}

	switch el.Type() {
	case "script_element":
		if lang, ok := scriptLanguage(content, tag); ok {
			if raw := rawText(el); raw != nil && b.err == nil {
				prog, err := parseProgram(b.ctx, b.file, lang, raw.StartByte(), raw.EndByte())
				if err != nil {
					b.err = err
				} else {
					b.scripts = append(b.scripts, prog)
				}
			}
		}
	case "element":
		node.Children = append(node.Children, b.nodes(el)...)
	}
	return node
}

func (b *htmlBuilder) attribute(a *sitter.Node) *ast.TextAttribute {
	content := b.file.Content
	name, value := attrParts(a)
	attr := &ast.TextAttribute{Base: ast.Base{Sp: nodeSpan(b.file.ID, a)}}
	if name != nil {
		attr.Name = nodeText(content, name)
	}
	if value != nil {
		start, end, _ := valueBounds(value)
		attr.HasValue = true
		attr.Value = string(content[start:end])
		attr.ValueSpan = source.Span{File: b.file.ID, Start: start, End: end}
	}
	return attr
}
