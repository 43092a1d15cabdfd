// Package whitespace implements no-excessive-whitespace: class lists must not
// carry leading, trailing or repeated whitespace.
package whitespace

import (
	"quibble/internal/ast"
	"quibble/internal/lint"
)

const (
	Name = "no-excessive-whitespace"

	MessageAttribute = "excessive-whitespace-in-class-attribute"
	MessageCallee    = "excessive-whitespace-in-class-callee"

	fixTitle = "Collapse whitespace in class list"
)

// Rule is the no-excessive-whitespace rule. The zero value is ready to use.
type Rule struct{}

var _ lint.Rule = Rule{}

func (Rule) Meta() lint.Meta {
	return lint.Meta{
		Name:        Name,
		Type:        "layout",
		Fixable:     "code",
		Description: "Find excessive whitespace characters in class attribute in Vue templates.",
		Recommended: true,
		Category:    "Stylistic Issues",
		URL:         lint.DocsURL(Name),
		Messages: map[string]string{
			MessageAttribute: "The `class` attribute should not contain excessive whitespace.",
			MessageCallee:    "A class callee definition should not contain excessive whitespace",
		},
	}
}

// Create validates the options and registers the listeners.
func (Rule) Create(ctx *lint.Context) (lint.Setup, error) {
	opts, err := optionsFrom(ctx.Options)
	if err != nil {
		return nil, err
	}
	s, err := opts.compile()
	if err != nil {
		return nil, err
	}
	c := &checker{ctx: ctx, settings: s}

	script := lint.Listener{
		ast.KindCallExpression: c.call,
		ast.KindJSXAttribute:   c.attribute,
		ast.KindTextAttribute:  c.attribute,
	}
	template := lint.Listener{
		ast.KindCallExpression: c.call,
		ast.KindVAttribute:     c.attribute,
	}
	return lint.DefineTemplateBodyVisitor(ctx, template, script), nil
}

type checker struct {
	ctx *lint.Context
	*settings
}

func (c *checker) call(n ast.Node) {
	call, ok := n.(*ast.CallExpression)
	if !ok || !IsCallee(call, c.callees) {
		return
	}
	for _, arg := range call.Arguments {
		c.check(call, arg, MessageCallee)
	}
}

func (c *checker) attribute(n ast.Node) {
	attr, ok := n.(ast.Attribute)
	if !ok || !IsClassAttribute(attr, c.classRe) {
		return
	}
	if IsLiteralValue(attr) {
		c.check(n, nil, MessageAttribute)
		return
	}
	switch v := attr.AttrValue().(type) {
	case *ast.JSXExpressionContainer:
		c.check(n, v.Expression, MessageAttribute)
	case *ast.VExpressionContainer:
		c.check(n, v.Expression, MessageAttribute)
	}
}

func (c *checker) check(root, expr ast.Node, messageID string) {
	for _, leaf := range Locate(root, expr) {
		normalized := Normalize(leaf.Value)
		if normalized == leaf.Value {
			continue
		}
		text, ok := leaf.Replacement(normalized)
		if !ok {
			c.ctx.Logger().Debug().Str("value", leaf.Value).Msg("no fix: replacement does not round-trip")
			c.ctx.Report(root, messageID, nil)
			continue
		}
		c.ctx.Report(root, messageID, &lint.Fix{
			Range: leaf.Range,
			Text:  text,
			Title: fixTitle,
		})
	}
}
