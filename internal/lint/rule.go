// Package lint hosts rules: it creates a context per rule, dispatches tree
// nodes to the listeners rules register and funnels reports into diagnostics.
package lint

import (
	"quibble/internal/ast"
	"quibble/internal/diag"
)

const docsBase = "https://github.com/kamilpula/eslint-plugin-quibble/tree/main/docs/rules/"

// DocsURL returns the documentation page of the named rule.
func DocsURL(name string) string {
	return docsBase + name + ".md"
}

// Meta describes a rule.
type Meta struct {
	Name        string
	Type        string // problem | suggestion | layout
	Fixable     string // "" | code | whitespace
	Description string
	Recommended bool
	Category    string
	URL         string
	// Messages maps message ids (diag code ids) to text.
	Messages map[string]string
}

// Rule is a lint rule. Create is called once per file.
type Rule interface {
	Meta() Meta
	Create(ctx *Context) (Setup, error)
}

// Listener maps node kinds to callbacks.
type Listener map[ast.Kind]func(ast.Node)

// Setup is what Create hands back to the runner: Ready or Degraded.
type Setup interface {
	isSetup()
}

// Ready carries the listeners to register. Template is fired only inside the
// template region; Script on every script node, template expressions included.
type Ready struct {
	Script   Listener
	Template Listener
}

// Degraded means the rule cannot run on this file. The diagnostic explains why.
type Degraded struct {
	Diagnostic diag.Diagnostic
}

func (Ready) isSetup()    {}
func (Degraded) isSetup() {}
