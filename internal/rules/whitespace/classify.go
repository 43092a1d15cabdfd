package whitespace

import (
	"regexp"
	"strings"

	"quibble/internal/ast"
	"quibble/internal/source"
)

// IsClassAttribute reports whether attr names a class list under pattern.
func IsClassAttribute(attr ast.Attribute, pattern *regexp.Regexp) bool {
	name := attr.AttrName()
	if name == "" {
		return false
	}
	return pattern.MatchString(name)
}

// IsCallee reports whether call invokes one of callees by plain name.
func IsCallee(call *ast.CallExpression, callees map[string]struct{}) bool {
	id, ok := call.Callee.(*ast.Identifier)
	if !ok {
		return false
	}
	_, ok = callees[id.Name]
	return ok
}

// IsLiteralValue reports whether the attribute value is a plain string that
// can be checked without descending into an expression.
func IsLiteralValue(attr ast.Attribute) bool {
	switch v := attr.AttrValue().(type) {
	case *ast.TextAttribute:
		return v.HasValue
	case *ast.VLiteral:
		return true
	case *ast.Literal:
		// "{a ? b : c}" written as a plain string is left alone
		return !v.IsString() || !strings.ContainsAny(v.Value, "{?}")
	case *ast.JSXExpressionContainer:
		_, ok := v.Expression.(*ast.Literal)
		return ok
	}
	return false
}

// Value is what an attribute holds: Scalar, Elements, Props or Absent.
type Value interface {
	isValue()
}

// Scalar is a string value. Non-string literals are Absent.
type Scalar string

// Elements are the items of a bound array.
type Elements []ast.Node

// Props are the properties of a bound object.
type Props []ast.Node

// Absent means there is nothing to check.
type Absent struct{}

func (Scalar) isValue()   {}
func (Elements) isValue() {}
func (Props) isValue()    {}
func (Absent) isValue()   {}

// ValueOf extracts the value of an attribute root.
func ValueOf(attr ast.Attribute) Value {
	switch v := attr.AttrValue().(type) {
	case *ast.TextAttribute:
		return Scalar(v.Value)
	case *ast.VLiteral:
		return Scalar(v.Value)
	case *ast.Literal:
		return literalValue(v)
	case *ast.JSXExpressionContainer:
		return expressionValue(v.Expression)
	case *ast.VExpressionContainer:
		return expressionValue(v.Expression)
	}
	return Absent{}
}

func expressionValue(expr ast.Node) Value {
	switch e := expr.(type) {
	case *ast.Literal:
		return literalValue(e)
	case *ast.ArrayExpression:
		return Elements(e.Elements)
	case *ast.ObjectExpression:
		return Props(e.Properties)
	}
	return Absent{}
}

func literalValue(l *ast.Literal) Value {
	if !l.IsString() {
		return Absent{}
	}
	return Scalar(l.Value)
}

// Range returns the replaceable range of an attribute root's value: the value
// span of a text attribute, the inside of the delimiters otherwise. An empty
// zero span means there is nothing to replace.
func Range(attr ast.Attribute) source.Span {
	switch v := attr.AttrValue().(type) {
	case *ast.TextAttribute:
		return v.ValueSpan
	case *ast.VLiteral:
		if !v.Quoted {
			return v.Span()
		}
		return v.Span().Shrink(1)
	case *ast.Literal:
		return v.Span().Shrink(1)
	case *ast.JSXExpressionContainer:
		if v.Expression != nil {
			return v.Expression.Span().Shrink(1)
		}
	case *ast.VExpressionContainer:
		if v.Expression != nil {
			return v.Expression.Span().Shrink(1)
		}
	}
	return source.Span{}
}
