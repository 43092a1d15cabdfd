package parser

import (
	"strings"

	"fortio.org/safecast"
	sitter "github.com/smacker/go-tree-sitter"

	"quibble/internal/ast"
	"quibble/internal/jsstr"
	"quibble/internal/source"
)

// converter turns a tree-sitter script tree into ast nodes. src is the buffer
// that was parsed; delta maps its offsets back into the file.
type converter struct {
	src   []byte
	file  source.FileID
	delta int64
}

func (c *converter) offset(b uint32) uint32 {
	v, err := safecast.Conv[uint32](int64(b) + c.delta)
	if err != nil {
		return 0
	}
	return v
}

func (c *converter) span(n *sitter.Node) source.Span {
	return source.Span{File: c.file, Start: c.offset(n.StartByte()), End: c.offset(n.EndByte())}
}

func (c *converter) base(n *sitter.Node) ast.Base {
	return ast.Base{Sp: c.span(n)}
}

func (c *converter) text(n *sitter.Node) string {
	return string(c.src[n.StartByte():n.EndByte()])
}

// named returns the named, non-comment children of n.
func named(n *sitter.Node) []*sitter.Node {
	count := int(n.NamedChildCount())
	out := make([]*sitter.Node, 0, count)
	for i := 0; i < count; i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		out = append(out, child)
	}
	return out
}

func (c *converter) children(n *sitter.Node) []ast.Node {
	kids := named(n)
	out := make([]ast.Node, 0, len(kids))
	for _, k := range kids {
		if conv := c.node(k); conv != nil {
			out = append(out, conv)
		}
	}
	return out
}

func (c *converter) field(n *sitter.Node, name string) ast.Node {
	child := n.ChildByFieldName(name)
	if child == nil {
		return nil
	}
	return c.node(child)
}

func (c *converter) node(n *sitter.Node) ast.Node {
	if n == nil {
		return nil
	}
	switch n.Type() {
	case "call_expression":
		call := &ast.CallExpression{Base: c.base(n), Callee: c.field(n, "function")}
		if args := n.ChildByFieldName("arguments"); args != nil {
			if args.Type() == "arguments" {
				call.Arguments = c.children(args)
			} else {
				// tagged template
				call.Arguments = []ast.Node{c.node(args)}
			}
		}
		return call
	case "string":
		return c.stringLiteral(n, false)
	case "number":
		return &ast.Literal{Base: c.base(n), LitKind: ast.LitNumber, Value: c.text(n), Raw: c.text(n)}
	case "true", "false":
		return &ast.Literal{Base: c.base(n), LitKind: ast.LitBool, Value: n.Type(), Raw: n.Type()}
	case "null":
		return &ast.Literal{Base: c.base(n), LitKind: ast.LitNull, Raw: "null"}
	case "regex":
		return &ast.Literal{Base: c.base(n), LitKind: ast.LitRegExp, Value: c.text(n), Raw: c.text(n)}
	case "template_string":
		return c.templateLiteral(n)
	case "array":
		return &ast.ArrayExpression{Base: c.base(n), Elements: c.children(n)}
	case "object":
		return c.object(n)
	case "ternary_expression":
		return &ast.ConditionalExpression{
			Base:       c.base(n),
			Test:       c.field(n, "condition"),
			Consequent: c.field(n, "consequence"),
			Alternate:  c.field(n, "alternative"),
		}
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier", "undefined", "this":
		return &ast.Identifier{Base: c.base(n), Name: c.text(n)}
	case "member_expression":
		return &ast.MemberExpression{Base: c.base(n), Object: c.field(n, "object"), Property: c.field(n, "property")}
	case "subscript_expression":
		return &ast.MemberExpression{Base: c.base(n), Object: c.field(n, "object"), Property: c.field(n, "index"), Computed: true}
	case "parenthesized_expression":
		kids := named(n)
		if len(kids) == 1 {
			return c.node(kids[0])
		}
	case "spread_element":
		var arg ast.Node
		if kids := named(n); len(kids) > 0 {
			arg = c.node(kids[0])
		}
		return &ast.SpreadElement{Base: c.base(n), Argument: arg}
	case "jsx_attribute":
		return c.jsxAttribute(n)
	case "jsx_expression":
		var expr ast.Node
		if kids := named(n); len(kids) > 0 {
			expr = c.node(kids[0])
		}
		return &ast.JSXExpressionContainer{Base: c.base(n), Expression: expr}
	case "comment":
		return nil
	}
	return &ast.Other{Base: c.base(n), Type: n.Type(), Children: c.children(n)}
}

func (c *converter) stringLiteral(n *sitter.Node, jsx bool) *ast.Literal {
	raw := c.text(n)
	lit := &ast.Literal{Base: c.base(n), LitKind: ast.LitString, Raw: raw, JSX: jsx}
	if len(raw) < 2 {
		return lit
	}
	lit.Quote = raw[0]
	inner := raw[1 : len(raw)-1]
	if raw[len(raw)-1] != raw[0] {
		// unterminated: tree-sitter inserted a missing quote
		inner = raw[1:]
	}
	if jsx {
		lit.Value = inner
	} else {
		lit.Value = jsstr.Cook(inner)
	}
	return lit
}

func (c *converter) templateLiteral(n *sitter.Node) *ast.TemplateLiteral {
	tl := &ast.TemplateLiteral{Base: c.base(n)}
	var quasi strings.Builder
	for i := 0; i < int(n.ChildCount()); i++ {
		child := n.Child(i)
		switch child.Type() {
		case "`":
		case "template_substitution":
			tl.Quasis = append(tl.Quasis, quasi.String())
			quasi.Reset()
			if kids := named(child); len(kids) > 0 {
				tl.Expressions = append(tl.Expressions, c.node(kids[0]))
			}
		default:
			quasi.WriteString(c.text(child))
		}
	}
	tl.Quasis = append(tl.Quasis, quasi.String())
	return tl
}

func (c *converter) object(n *sitter.Node) *ast.ObjectExpression {
	obj := &ast.ObjectExpression{Base: c.base(n)}
	for _, child := range named(n) {
		switch child.Type() {
		case "pair":
			prop := &ast.Property{Base: c.base(child), Value: c.field(child, "value")}
			if key := child.ChildByFieldName("key"); key != nil {
				if key.Type() == "computed_property_name" {
					prop.Computed = true
					if kids := named(key); len(kids) > 0 {
						prop.Key = c.node(kids[0])
					}
				} else {
					prop.Key = c.node(key)
				}
			}
			obj.Properties = append(obj.Properties, prop)
		case "shorthand_property_identifier":
			id := &ast.Identifier{Base: c.base(child), Name: c.text(child)}
			obj.Properties = append(obj.Properties, &ast.Property{
				Base: c.base(child), Key: id, Value: id, Shorthand: true,
			})
		default:
			if conv := c.node(child); conv != nil {
				obj.Properties = append(obj.Properties, conv)
			}
		}
	}
	return obj
}

func (c *converter) jsxAttribute(n *sitter.Node) *ast.JSXAttribute {
	attr := &ast.JSXAttribute{Base: c.base(n)}
	kids := named(n)
	if len(kids) == 0 {
		return attr
	}
	name := c.text(kids[0])
	if ns, local, ok := strings.Cut(name, ":"); ok && kids[0].Type() == "jsx_namespace_name" {
		attr.Namespace, attr.Name = ns, local
	} else {
		attr.Name = name
	}
	if len(kids) < 2 {
		return attr
	}
	value := kids[len(kids)-1]
	if value.Type() == "string" {
		attr.Value = c.stringLiteral(value, true)
	} else {
		attr.Value = c.node(value)
	}
	return attr
}
