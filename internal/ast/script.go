package ast

// LitKind distinguishes literal payloads.
type LitKind uint8

const (
	LitString LitKind = iota
	LitNumber
	LitBool
	LitNull
	LitRegExp
)

// Program is a script body. Lang is "js", "ts", "tsx" or "html".
type Program struct {
	Base
	Lang string
	Body []Node
}

type CallExpression struct {
	Base
	Callee    Node
	Arguments []Node
}

// Literal is a scalar literal. For strings Value is the cooked text (escapes
// decoded), Raw the source text with delimiters and Quote the delimiter byte.
// JSX attribute strings have JSX set: they carry no escapes.
type Literal struct {
	Base
	LitKind LitKind
	Value   string
	Raw     string
	Quote   byte
	JSX     bool
}

// IsString reports whether the literal holds a string.
func (l *Literal) IsString() bool { return l.LitKind == LitString }

type TemplateLiteral struct {
	Base
	Quasis      []string
	Expressions []Node
}

// ArrayExpression elements may be nil for holes.
type ArrayExpression struct {
	Base
	Elements []Node
}

// ObjectExpression properties are *Property or *SpreadElement.
type ObjectExpression struct {
	Base
	Properties []Node
}

type Property struct {
	Base
	Key       Node
	Value     Node
	Computed  bool
	Shorthand bool
}

type SpreadElement struct {
	Base
	Argument Node
}

type ConditionalExpression struct {
	Base
	Test       Node
	Consequent Node
	Alternate  Node
}

type Identifier struct {
	Base
	Name string
}

type MemberExpression struct {
	Base
	Object   Node
	Property Node
	Computed bool
}

// JSXAttribute value is a *Literal, a *JSXExpressionContainer or nil.
type JSXAttribute struct {
	Base
	Namespace string
	Name      string
	Value     Node
}

type JSXExpressionContainer struct {
	Base
	Expression Node
}

// Other stands for any construct the rules do not look into. Children keeps
// nested nodes reachable for traversal.
type Other struct {
	Base
	Type     string
	Children []Node
}

func (*Program) Kind() Kind                { return KindProgram }
func (*CallExpression) Kind() Kind         { return KindCallExpression }
func (*Literal) Kind() Kind                { return KindLiteral }
func (*TemplateLiteral) Kind() Kind        { return KindTemplateLiteral }
func (*ArrayExpression) Kind() Kind        { return KindArrayExpression }
func (*ObjectExpression) Kind() Kind       { return KindObjectExpression }
func (*Property) Kind() Kind               { return KindProperty }
func (*SpreadElement) Kind() Kind          { return KindSpreadElement }
func (*ConditionalExpression) Kind() Kind  { return KindConditionalExpression }
func (*Identifier) Kind() Kind             { return KindIdentifier }
func (*MemberExpression) Kind() Kind       { return KindMemberExpression }
func (*JSXAttribute) Kind() Kind           { return KindJSXAttribute }
func (*JSXExpressionContainer) Kind() Kind { return KindJSXExpressionContainer }
func (*Other) Kind() Kind                  { return KindOther }
