package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"

	"quibble/internal/source"
)

// helpers over the html grammar; offsets are file offsets because markup is
// always parsed from the whole file.

func nodeSpan(file source.FileID, n *sitter.Node) source.Span {
	return source.Span{File: file, Start: n.StartByte(), End: n.EndByte()}
}

func nodeText(content []byte, n *sitter.Node) string {
	return string(content[n.StartByte():n.EndByte()])
}

// openTag returns the start_tag or self_closing_tag of an element.
func openTag(el *sitter.Node) *sitter.Node {
	for i := 0; i < int(el.ChildCount()); i++ {
		child := el.Child(i)
		switch child.Type() {
		case "start_tag", "self_closing_tag":
			return child
		}
	}
	return nil
}

func tagName(content []byte, tag *sitter.Node) string {
	if tag == nil {
		return ""
	}
	for i := 0; i < int(tag.ChildCount()); i++ {
		child := tag.Child(i)
		if child.Type() == "tag_name" {
			return strings.ToLower(nodeText(content, child))
		}
	}
	return ""
}

func attributes(tag *sitter.Node) []*sitter.Node {
	if tag == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(tag.ChildCount()); i++ {
		child := tag.Child(i)
		if child.Type() == "attribute" {
			out = append(out, child)
		}
	}
	return out
}

// attrParts splits an attribute node into its name and value nodes. value is
// nil for bare attributes.
func attrParts(attr *sitter.Node) (name, value *sitter.Node) {
	for i := 0; i < int(attr.ChildCount()); i++ {
		child := attr.Child(i)
		switch child.Type() {
		case "attribute_name":
			name = child
		case "attribute_value", "quoted_attribute_value":
			value = child
		}
	}
	return name, value
}

// valueBounds returns the value text range without delimiters.
func valueBounds(value *sitter.Node) (start, end uint32, quoted bool) {
	start, end = value.StartByte(), value.EndByte()
	if value.Type() != "quoted_attribute_value" {
		return start, end, false
	}
	if end-start < 2 {
		return start, end, true
	}
	return start + 1, end - 1, true
}

// attrValue looks up a static attribute value on an opening tag.
func attrValue(content []byte, tag *sitter.Node, want string) (string, bool) {
	for _, a := range attributes(tag) {
		name, value := attrParts(a)
		if name == nil || !strings.EqualFold(nodeText(content, name), want) {
			continue
		}
		if value == nil {
			return "", true
		}
		start, end, _ := valueBounds(value)
		return string(content[start:end]), true
	}
	return "", false
}

func rawText(el *sitter.Node) *sitter.Node {
	for i := 0; i < int(el.ChildCount()); i++ {
		child := el.Child(i)
		if child.Type() == "raw_text" {
			return child
		}
	}
	return nil
}

// scriptLanguage maps a <script> tag to a script front end. ok is false for
// non-script payloads such as JSON or templates.
func scriptLanguage(content []byte, tag *sitter.Node) (Language, bool) {
	if typ, has := attrValue(content, tag, "type"); has {
		switch strings.ToLower(strings.TrimSpace(typ)) {
		case "", "module", "text/javascript", "application/javascript", "text/babel", "text/jsx":
		case "text/typescript", "application/typescript":
			return LangTS, true
		default:
			return "", false
		}
	}
	lang, _ := attrValue(content, tag, "lang")
	switch strings.ToLower(strings.TrimSpace(lang)) {
	case "ts":
		return LangTS, true
	case "tsx":
		return LangTSX, true
	default:
		return LangJS, true
	}
}
