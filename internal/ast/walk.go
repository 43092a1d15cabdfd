package ast

// Children returns the direct children of n in source order. Nil entries
// (array holes, absent values) are dropped.
func Children(n Node) []Node {
	var out []Node
	add := func(nodes ...Node) {
		for _, c := range nodes {
			if !isNil(c) {
				out = append(out, c)
			}
		}
	}

	switch n := n.(type) {
	case *Program:
		add(n.Body...)
	case *CallExpression:
		add(n.Callee)
		add(n.Arguments...)
	case *TemplateLiteral:
		add(n.Expressions...)
	case *ArrayExpression:
		add(n.Elements...)
	case *ObjectExpression:
		add(n.Properties...)
	case *Property:
		if n.Shorthand {
			add(n.Value)
		} else {
			add(n.Key, n.Value)
		}
	case *SpreadElement:
		add(n.Argument)
	case *ConditionalExpression:
		add(n.Test, n.Consequent, n.Alternate)
	case *MemberExpression:
		add(n.Object, n.Property)
	case *JSXAttribute:
		add(n.Value)
	case *JSXExpressionContainer:
		add(n.Expression)
	case *Other:
		add(n.Children...)
	case *Document:
		add(n.Children...)
	case *VElement:
		for _, a := range n.Attributes {
			add(a)
		}
		add(n.Children...)
	case *VAttribute:
		add(n.Key, n.Value)
	case *VExpressionContainer:
		add(n.Expression)
	case *VDirectiveKey:
		if n.Name != nil {
			add(n.Name)
		}
		add(n.Argument)
		for _, m := range n.Modifiers {
			add(m)
		}
	}
	return out
}

// Inspect traverses the tree rooted at n depth-first in source order. f is
// called with each node; when it returns false the node's children are
// skipped. After the children of a node are visited f is called with nil,
// as go/ast.Inspect does.
func Inspect(n Node, f func(Node) bool) {
	if isNil(n) {
		return
	}
	if !f(n) {
		return
	}
	for _, c := range Children(n) {
		Inspect(c, f)
	}
	f(nil)
}

// Visitor is called by Walk on enter and leave.
type Visitor interface {
	Enter(n Node) bool
	Leave(n Node)
}

// Walk is Inspect with a separate leave callback.
func Walk(v Visitor, n Node) {
	if isNil(n) {
		return
	}
	if !v.Enter(n) {
		return
	}
	for _, c := range Children(n) {
		Walk(v, c)
	}
	v.Leave(n)
}

// isNil catches typed nil pointers stored in interfaces.
func isNil(n Node) bool {
	if n == nil {
		return true
	}
	switch v := n.(type) {
	case *Program:
		return v == nil
	case *CallExpression:
		return v == nil
	case *Literal:
		return v == nil
	case *TemplateLiteral:
		return v == nil
	case *ArrayExpression:
		return v == nil
	case *ObjectExpression:
		return v == nil
	case *Property:
		return v == nil
	case *SpreadElement:
		return v == nil
	case *ConditionalExpression:
		return v == nil
	case *Identifier:
		return v == nil
	case *MemberExpression:
		return v == nil
	case *JSXAttribute:
		return v == nil
	case *JSXExpressionContainer:
		return v == nil
	case *Other:
		return v == nil
	case *Document:
		return v == nil
	case *VElement:
		return v == nil
	case *VAttribute:
		return v == nil
	case *VLiteral:
		return v == nil
	case *VExpressionContainer:
		return v == nil
	case *VDirectiveKey:
		return v == nil
	case *VIdentifier:
		return v == nil
	case *TextAttribute:
		return v == nil
	}
	return false
}
