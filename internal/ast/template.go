package ast

import "quibble/internal/source"

// Document is the <template> region of a single-file component.
type Document struct {
	Base
	Children []Node
}

// VElement children are *VElement, *VExpressionContainer (mustaches) or
// *Other for text.
type VElement struct {
	Base
	Name       string
	Attributes []*VAttribute
	Children   []Node
}

// VAttribute key is *VIdentifier for plain attributes and *VDirectiveKey when
// Directive is set. Value is *VLiteral, *VExpressionContainer or nil.
type VAttribute struct {
	Base
	Directive bool
	Key       Node
	Value     Node
}

// VLiteral span covers the delimiters when Quoted.
type VLiteral struct {
	Base
	Value  string
	Quoted bool
}

// VExpressionContainer span covers the attribute quotes or the mustache braces.
// Expression is nil when the text failed to parse.
type VExpressionContainer struct {
	Base
	Expression Node
}

// VDirectiveKey: v-bind:class.prop -> Name "bind", Argument "class",
// Modifiers ["prop"]. Argument is a *VIdentifier, a *VExpressionContainer for
// dynamic arguments, or nil.
type VDirectiveKey struct {
	Base
	Name      *VIdentifier
	Argument  Node
	Modifiers []*VIdentifier
}

type VIdentifier struct {
	Base
	Name    string
	RawName string
}

// TextAttribute is a static attribute of a plain HTML document. ValueSpan
// covers the value without delimiters.
type TextAttribute struct {
	Base
	Name      string
	Value     string
	ValueSpan source.Span
	HasValue  bool
}

func (*Document) Kind() Kind             { return KindDocument }
func (*VElement) Kind() Kind             { return KindVElement }
func (*VAttribute) Kind() Kind           { return KindVAttribute }
func (*VLiteral) Kind() Kind             { return KindVLiteral }
func (*VExpressionContainer) Kind() Kind { return KindVExpressionContainer }
func (*VDirectiveKey) Kind() Kind        { return KindVDirectiveKey }
func (*VIdentifier) Kind() Kind          { return KindVIdentifier }
func (*TextAttribute) Kind() Kind        { return KindTextAttribute }
