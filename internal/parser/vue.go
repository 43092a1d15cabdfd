package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/ast"
	"quibble/internal/source"
)

// parseSFC reads a single-file component: every <script> block becomes a
// program and, with opts.Template, the first top-level <template> becomes the
// template document.
func parseSFC(ctx context.Context, file *source.File, opts Options, src *ast.SourceCode) error {
	tree, err := parseTree(ctx, LangVue, file.Content)
	if err != nil {
		return errors.Errorf("%s: %w", file.Path, err)
	}
	defer tree.Close()

	b := &sfcBuilder{ctx: ctx, file: file, exprLang: LangJS}
	root := tree.RootNode()

	var template *sitter.Node
	for i := 0; i < int(root.ChildCount()); i++ {
		child := root.Child(i)
		switch child.Type() {
		case "script_element":
			tag := openTag(child)
			lang, ok := scriptLanguage(file.Content, tag)
			if !ok {
				continue
			}
			if lang == LangTS || lang == LangTSX {
				b.exprLang = LangTS
			}
			raw := rawText(child)
			if raw == nil {
				continue
			}
			prog, err := parseProgram(ctx, file, lang, raw.StartByte(), raw.EndByte())
			if err != nil {
				return err
			}
			src.Programs = append(src.Programs, prog)
		case "element":
			if template == nil && tagName(file.Content, openTag(child)) == "template" {
				template = child
			}
		}
	}

	if !opts.Template {
		return nil
	}
	src.HasTemplate = true
	if template != nil {
		el := b.element(template)
		src.Template = &ast.Document{Base: el.Base, Children: []ast.Node{el}}
	}
	return b.err
}

type sfcBuilder struct {
	ctx      context.Context
	file     *source.File
	exprLang Language
	err      error
}

func (b *sfcBuilder) span(start, end uint32) source.Span {
	return source.Span{File: b.file.ID, Start: start, End: end}
}

func (b *sfcBuilder) element(el *sitter.Node) *ast.VElement {
	content := b.file.Content
	v := &ast.VElement{Base: ast.Base{Sp: nodeSpan(b.file.ID, el)}}
	for i := 0; i < int(el.ChildCount()); i++ {
		child := el.Child(i)
		switch child.Type() {
		case "start_tag", "self_closing_tag":
			v.Name = tagName(content, child)
			for _, a := range attributes(child) {
				v.Attributes = append(v.Attributes, b.attribute(a))
			}
		case "element", "script_element", "style_element":
			v.Children = append(v.Children, b.element(child))
		case "text":
			v.Children = append(v.Children, b.mustaches(child)...)
		}
	}
	return v
}

func (b *sfcBuilder) attribute(a *sitter.Node) *ast.VAttribute {
	content := b.file.Content
	nameNode, valueNode := attrParts(a)
	attr := &ast.VAttribute{Base: ast.Base{Sp: nodeSpan(b.file.ID, a)}}
	if nameNode == nil {
		return attr
	}

	name := nodeText(content, nameNode)
	if key := b.directiveKey(nameNode.StartByte(), name); key != nil {
		attr.Directive = true
		attr.Key = key
	} else {
		attr.Key = &ast.VIdentifier{Base: ast.Base{Sp: nodeSpan(b.file.ID, nameNode)}, Name: name, RawName: name}
	}
	if valueNode == nil {
		return attr
	}

	start, end, quoted := valueBounds(valueNode)
	full := ast.Base{Sp: nodeSpan(b.file.ID, valueNode)}
	if attr.Directive {
		attr.Value = &ast.VExpressionContainer{Base: full, Expression: b.expression(start, end)}
	} else {
		attr.Value = &ast.VLiteral{Base: full, Value: string(content[start:end]), Quoted: quoted}
	}
	return attr
}

// expression parses content[start:end] as a template expression; nil when it
// is not a single expression (v-for, statements, empty values).
func (b *sfcBuilder) expression(start, end uint32) ast.Node {
	if b.err != nil || end <= start || strings.TrimSpace(string(b.file.Content[start:end])) == "" {
		return nil
	}
	expr, err := parseExpression(b.ctx, b.file, b.exprLang, start, end)
	if err != nil {
		b.err = err
		return nil
	}
	return expr
}

// mustaches extracts {{ expr }} interpolations from a text node.
func (b *sfcBuilder) mustaches(text *sitter.Node) []ast.Node {
	content := b.file.Content
	var out []ast.Node
	pos := text.StartByte()
	end := text.EndByte()
	for pos < end {
		open := strings.Index(string(content[pos:end]), "{{")
		if open < 0 {
			break
		}
		start := pos + uint32(open)
		closeAt := strings.Index(string(content[start+2:end]), "}}")
		if closeAt < 0 {
			break
		}
		stop := start + 2 + uint32(closeAt)
		out = append(out, &ast.VExpressionContainer{
			Base:       ast.Base{Sp: b.span(start, stop+2)},
			Expression: b.expression(start+2, stop),
		})
		pos = stop + 2
	}
	return out
}

var directivePrefixes = []struct {
	prefix string
	name   string
}{
	{":", "bind"},
	{".", "bind"},
	{"@", "on"},
	{"#", "slot"},
}

// directiveKey parses a directive attribute name starting at offset start:
// v-name:arg.mod, :arg, .arg (bind with the prop modifier), @arg and #arg.
// It returns nil for plain attributes.
func (b *sfcBuilder) directiveKey(start uint32, raw string) *ast.VDirectiveKey {
	if !isDirective(raw) {
		return nil
	}
	key := &ast.VDirectiveKey{Base: ast.Base{Sp: b.span(start, start+uint32(len(raw)))}}
	var rest string
	var restAt uint32
	prop := false

	switch {
	case strings.HasPrefix(raw, "v-") && len(raw) > 2:
		body := raw[2:]
		cut := strings.IndexAny(body, ":.")
		if cut < 0 {
			cut = len(body)
		}
		name := body[:cut]
		key.Name = &ast.VIdentifier{Base: ast.Base{Sp: b.span(start, start+2+uint32(cut))}, Name: name, RawName: "v-" + name}
		rest = body[cut:]
		restAt = start + 2 + uint32(cut)
		if strings.HasPrefix(rest, ":") {
			rest, restAt = rest[1:], restAt+1
		} else {
			// no argument, modifiers only
			key.Modifiers = b.modifiers(rest, restAt)
			return key
		}
	default:
		matched := false
		for _, p := range directivePrefixes {
			if strings.HasPrefix(raw, p.prefix) {
				key.Name = &ast.VIdentifier{Base: ast.Base{Sp: b.span(start, start+1)}, Name: p.name, RawName: p.prefix}
				rest, restAt = raw[1:], start+1
				prop = p.prefix == "."
				matched = true
				break
			}
		}
		if !matched {
			return nil
		}
	}

	var arg string
	if strings.HasPrefix(rest, "[") {
		closeAt := strings.Index(rest, "]")
		if closeAt < 0 {
			closeAt = len(rest) - 1
		}
		arg = rest[:closeAt+1]
		key.Argument = &ast.VExpressionContainer{
			Base:       ast.Base{Sp: b.span(restAt, restAt+uint32(len(arg)))},
			Expression: b.expression(restAt+1, restAt+uint32(closeAt)),
		}
	} else {
		cut := strings.IndexByte(rest, '.')
		if cut < 0 {
			cut = len(rest)
		}
		arg = rest[:cut]
		if arg != "" {
			key.Argument = &ast.VIdentifier{Base: ast.Base{Sp: b.span(restAt, restAt+uint32(cut))}, Name: arg, RawName: arg}
		}
	}
	key.Modifiers = b.modifiers(rest[len(arg):], restAt+uint32(len(arg)))
	if prop {
		key.Modifiers = append(key.Modifiers, &ast.VIdentifier{Base: ast.Base{Sp: b.span(start, start)}, Name: "prop"})
	}
	return key
}

func isDirective(raw string) bool {
	if strings.HasPrefix(raw, "v-") {
		return len(raw) > 2
	}
	return raw != "" && strings.ContainsRune(":.@#", rune(raw[0]))
}

// modifiers splits ".a.b" starting at offset at.
func (b *sfcBuilder) modifiers(s string, at uint32) []*ast.VIdentifier {
	var out []*ast.VIdentifier
	for s != "" {
		if s[0] != '.' {
			break
		}
		s, at = s[1:], at+1
		cut := strings.IndexByte(s, '.')
		if cut < 0 {
			cut = len(s)
		}
		if cut > 0 {
			name := s[:cut]
			out = append(out, &ast.VIdentifier{Base: ast.Base{Sp: b.span(at, at+uint32(cut))}, Name: name, RawName: name})
		}
		s, at = s[cut:], at+uint32(cut)
	}
	return out
}
