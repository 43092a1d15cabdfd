package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/source"
)

func sp(start, end uint32) Base {
	return Base{Sp: source.Span{Start: start, End: end}}
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "CallExpression", KindCallExpression.String())
	assert.Equal(t, "TextAttribute", KindTextAttribute.String())
	assert.Equal(t, "Invalid", Kind(200).String())
	assert.Equal(t, KindVDirectiveKey, (&VDirectiveKey{}).Kind())
}

func TestAttrName(t *testing.T) {
	tests := []struct {
		name string
		attr Attribute
		want string
	}{
		{"jsx", &JSXAttribute{Name: "className"}, "className"},
		{"jsx namespaced", &JSXAttribute{Namespace: "svg", Name: "class"}, "svg:class"},
		{"vue static", &VAttribute{Key: &VIdentifier{Name: "class"}}, "class"},
		{"vue bind", &VAttribute{Directive: true, Key: &VDirectiveKey{
			Name: &VIdentifier{Name: "bind"}, Argument: &VIdentifier{Name: "class"},
		}}, "class"},
		{"vue on", &VAttribute{Directive: true, Key: &VDirectiveKey{
			Name: &VIdentifier{Name: "on"}, Argument: &VIdentifier{Name: "class"},
		}}, ""},
		{"vue dynamic arg", &VAttribute{Directive: true, Key: &VDirectiveKey{
			Name: &VIdentifier{Name: "bind"}, Argument: &VExpressionContainer{},
		}}, ""},
		{"html", &TextAttribute{Name: "class", HasValue: true}, "class"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.attr.AttrName())
		})
	}
}

func TestAttrValue(t *testing.T) {
	text := &TextAttribute{Name: "class", Value: "a", HasValue: true}
	assert.Same(t, text, text.AttrValue())
	assert.Nil(t, (&TextAttribute{Name: "hidden"}).AttrValue())

	lit := &Literal{Value: "a"}
	assert.Same(t, lit, (&JSXAttribute{Value: lit}).AttrValue())
}

func TestInspectOrderAndSkip(t *testing.T) {
	// clsx(['a', c ? 'b' : 'd'], { x: 'y' })
	lit := func(v string, s uint32) *Literal {
		return &Literal{Base: sp(s, s+3), LitKind: LitString, Value: v, Quote: '\''}
	}
	arr := &ArrayExpression{Base: sp(5, 25), Elements: []Node{
		lit("a", 6),
		nil,
		&ConditionalExpression{
			Base:       sp(11, 24),
			Test:       &Identifier{Base: sp(11, 12), Name: "c"},
			Consequent: lit("b", 15),
			Alternate:  lit("d", 21),
		},
	}}
	obj := &ObjectExpression{Base: sp(27, 37), Properties: []Node{
		&Property{Base: sp(29, 35), Key: &Identifier{Base: sp(29, 30), Name: "x"}, Value: lit("y", 32)},
	}}
	call := &CallExpression{
		Base:      sp(0, 38),
		Callee:    &Identifier{Base: sp(0, 4), Name: "clsx"},
		Arguments: []Node{arr, obj},
	}
	prog := &Program{Base: sp(0, 38), Body: []Node{call}}

	var kinds []string
	Inspect(prog, func(n Node) bool {
		if n == nil {
			return true
		}
		kinds = append(kinds, n.Kind().String())
		return n.Kind() != KindObjectExpression
	})

	require.Equal(t, []string{
		"Program", "CallExpression", "Identifier",
		"ArrayExpression", "Literal",
		"ConditionalExpression", "Identifier", "Literal", "Literal",
		"ObjectExpression",
	}, kinds)
}

type countingVisitor struct {
	enter, leave int
}

func (v *countingVisitor) Enter(Node) bool { v.enter++; return true }
func (v *countingVisitor) Leave(Node)      { v.leave++ }

func TestWalkTemplate(t *testing.T) {
	var nilLiteral *VLiteral
	doc := &Document{Children: []Node{
		&VElement{
			Name: "div",
			Attributes: []*VAttribute{
				{Key: &VIdentifier{Name: "class"}, Value: &VLiteral{Value: "a", Quoted: true}},
				{Key: &VIdentifier{Name: "hidden"}, Value: nilLiteral},
			},
		},
	}}

	v := &countingVisitor{}
	Walk(v, doc)
	// Document, VElement, 2 attributes, 2 keys, 1 literal
	assert.Equal(t, 7, v.enter)
	assert.Equal(t, v.enter, v.leave)
}

func TestSourceCodeText(t *testing.T) {
	fs := source.NewFileSet()
	id := fs.AddVirtual("a.js", []byte("clsx('a')"))
	src := &SourceCode{File: fs.Get(id)}

	assert.Equal(t, "'a'", src.Text(source.Span{File: id, Start: 5, End: 8}))
	assert.Empty(t, src.Text(source.Span{File: id, Start: 5, End: 80}))
	assert.Empty(t, (*SourceCode)(nil).Text(source.Span{}))
}
