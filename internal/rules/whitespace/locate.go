package whitespace

import (
	"unicode/utf8"

	"quibble/internal/ast"
	"quibble/internal/jsstr"
	"quibble/internal/source"
)

// Leaf is a located string: its replaceable range and its value.
type Leaf struct {
	Range source.Span
	Value string
	// Quote is the JS string delimiter the replacement must be escaped for;
	// zero for attribute text, which is written verbatim.
	Quote byte
}

// Replacement renders text for the leaf's range. It reports false when the
// escaped text would not decode back to text.
func (l Leaf) Replacement(text string) (string, bool) {
	if l.Quote == 0 {
		return text, true
	}
	out := jsstr.Quote(text, l.Quote)
	return out, jsstr.Cook(out) == text
}

// Shape is the locator's view of a node.
type Shape uint8

const (
	ShapeUnsupported Shape = iota
	ShapeIdentifier
	ShapeArray
	ShapeConditional
	ShapeObject
	ShapeProperty
	ShapeString
)

func ShapeOf(n ast.Node) Shape {
	switch n := n.(type) {
	case *ast.Identifier:
		return ShapeIdentifier
	case *ast.ArrayExpression:
		return ShapeArray
	case *ast.ConditionalExpression:
		return ShapeConditional
	case *ast.ObjectExpression:
		return ShapeObject
	case *ast.Property:
		return ShapeProperty
	case *ast.Literal:
		if n.IsString() {
			return ShapeString
		}
	}
	return ShapeUnsupported
}

// Locate collects the string leaves of a class root. With a nil expr the
// value is taken from the root attribute itself.
func Locate(root, expr ast.Node) []Leaf {
	if expr != nil {
		return locate(root, expr, nil)
	}
	attr, ok := root.(ast.Attribute)
	if !ok {
		return nil
	}

	var leaves []Leaf
	switch v := ValueOf(attr).(type) {
	case Scalar:
		leaves = appendLeaf(leaves, Leaf{Range: Range(attr), Value: string(v), Quote: rootQuote(attr)})
	case Elements:
		for _, el := range v {
			leaves = locate(root, el, leaves)
		}
	case Props:
		leaves = locateProps(root, v, leaves)
	case Absent:
	}
	return leaves
}

func locate(root, n ast.Node, leaves []Leaf) []Leaf {
	if n == nil {
		return leaves
	}
	switch ShapeOf(n) {
	case ShapeIdentifier, ShapeUnsupported:
		return leaves
	case ShapeArray:
		for _, el := range n.(*ast.ArrayExpression).Elements {
			leaves = locate(root, el, leaves)
		}
	case ShapeConditional:
		cond := n.(*ast.ConditionalExpression)
		leaves = locate(root, cond.Consequent, leaves)
		leaves = locate(root, cond.Alternate, leaves)
	case ShapeObject:
		leaves = locateProps(root, n.(*ast.ObjectExpression).Properties, leaves)
	case ShapeProperty:
		leaves = locate(root, n.(*ast.Property).Key, leaves)
	case ShapeString:
		lit := n.(*ast.Literal)
		leaf := Leaf{Range: lit.Span().Shrink(1), Value: lit.Value}
		if !lit.JSX {
			leaf.Quote = lit.Quote
		}
		leaves = appendLeaf(leaves, leaf)
	}
	return leaves
}

// Directive-bound template objects list class names as keys; elsewhere
// (callee arguments) the values are the class strings.
func locateProps(root ast.Node, props []ast.Node, leaves []Leaf) []Leaf {
	keys := isDirectiveRoot(root)
	for _, p := range props {
		if keys {
			leaves = locate(root, p, leaves)
			continue
		}
		if prop, ok := p.(*ast.Property); ok {
			leaves = locate(root, prop.Value, leaves)
		}
	}
	return leaves
}

func isDirectiveRoot(root ast.Node) bool {
	attr, ok := root.(*ast.VAttribute)
	if !ok {
		return false
	}
	_, ok = attr.DirectiveKey()
	return ok
}

func rootQuote(attr ast.Attribute) byte {
	switch v := attr.AttrValue().(type) {
	case *ast.JSXExpressionContainer:
		if lit, ok := v.Expression.(*ast.Literal); ok {
			return lit.Quote
		}
	case *ast.VExpressionContainer:
		if lit, ok := v.Expression.(*ast.Literal); ok {
			return lit.Quote
		}
	}
	return 0
}

func appendLeaf(leaves []Leaf, leaf Leaf) []Leaf {
	if utf8.RuneCountInString(leaf.Value) <= 1 || leaf.Range.Empty() {
		return leaves
	}
	return append(leaves, leaf)
}
