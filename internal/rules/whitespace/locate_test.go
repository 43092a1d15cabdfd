package whitespace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quibble/internal/ast"
	"quibble/internal/source"
)

func span(start, end uint32) ast.Base {
	return ast.Base{Sp: source.Span{Start: start, End: end}}
}

// str builds a quoted string literal at start from raw, delimiters included.
func str(start uint32, raw string) *ast.Literal {
	return &ast.Literal{
		Base:    span(start, start+uint32(len(raw))),
		LitKind: ast.LitString,
		Value:   raw[1 : len(raw)-1],
		Raw:     raw,
		Quote:   raw[0],
	}
}

func ident(start uint32, name string) *ast.Identifier {
	return &ast.Identifier{Base: span(start, start+uint32(len(name))), Name: name}
}

func bindClass(value ast.Node) *ast.VAttribute {
	return &ast.VAttribute{
		Directive: true,
		Key: &ast.VDirectiveKey{
			Name:     &ast.VIdentifier{Name: "bind"},
			Argument: &ast.VIdentifier{Name: "class"},
		},
		Value: &ast.VExpressionContainer{Expression: value},
	}
}

func TestShapeOf(t *testing.T) {
	assert.Equal(t, ShapeString, ShapeOf(str(0, "'a'")))
	assert.Equal(t, ShapeUnsupported, ShapeOf(&ast.Literal{LitKind: ast.LitNumber}))
	assert.Equal(t, ShapeUnsupported, ShapeOf(&ast.TemplateLiteral{}))
	assert.Equal(t, ShapeIdentifier, ShapeOf(ident(0, "x")))
	assert.Equal(t, ShapeArray, ShapeOf(&ast.ArrayExpression{}))
	assert.Equal(t, ShapeObject, ShapeOf(&ast.ObjectExpression{}))
	assert.Equal(t, ShapeProperty, ShapeOf(&ast.Property{}))
	assert.Equal(t, ShapeConditional, ShapeOf(&ast.ConditionalExpression{}))
	assert.Equal(t, ShapeUnsupported, ShapeOf(&ast.CallExpression{}))
}

func TestLocateArray(t *testing.T) {
	// ['foo  bar', 'baz']
	arr := &ast.ArrayExpression{Elements: []ast.Node{str(1, "'foo  bar'"), nil, str(13, "'baz'")}}
	call := &ast.CallExpression{Callee: ident(0, "clsx")}

	leaves := Locate(call, arr)
	require.Len(t, leaves, 2)
	assert.Equal(t, source.Span{Start: 2, End: 10}, leaves[0].Range)
	assert.Equal(t, "foo  bar", leaves[0].Value)
	assert.Equal(t, byte('\''), leaves[0].Quote)
}

func TestLocateConditionalSkipsTest(t *testing.T) {
	cond := &ast.ConditionalExpression{
		Test:       str(0, "'x  y'"),
		Consequent: str(9, "'foo '"),
		Alternate:  str(17, "'   baz '"),
	}
	leaves := Locate(&ast.CallExpression{}, cond)
	require.Len(t, leaves, 2)
	assert.Equal(t, "foo ", leaves[0].Value)
	assert.Equal(t, "   baz ", leaves[1].Value)
}

func TestLocateObjectKeysVersusValues(t *testing.T) {
	obj := func() *ast.ObjectExpression {
		return &ast.ObjectExpression{Properties: []ast.Node{
			&ast.Property{Key: str(2, "'a  b'"), Value: str(10, "'c  d'")},
			&ast.Property{Key: ident(18, "e"), Value: ident(21, "f"), Shorthand: false},
			&ast.SpreadElement{Argument: ident(27, "rest")},
		}}
	}

	directive := Locate(bindClass(nil), obj())
	require.Len(t, directive, 1)
	assert.Equal(t, "a  b", directive[0].Value)

	callee := Locate(&ast.CallExpression{}, obj())
	require.Len(t, callee, 1)
	assert.Equal(t, "c  d", callee[0].Value)

	plain := &ast.VAttribute{Key: &ast.VIdentifier{Name: "class"}}
	assert.Equal(t, "c  d", Locate(plain, obj())[0].Value)
}

func TestLocateGuard(t *testing.T) {
	root := &ast.CallExpression{}
	assert.Empty(t, Locate(root, str(0, "''")))
	assert.Empty(t, Locate(root, str(0, "' '")))
	assert.Empty(t, Locate(root, ident(0, "cls")))
	assert.Empty(t, Locate(root, &ast.Literal{LitKind: ast.LitNumber, Raw: "12"}))
	assert.Len(t, Locate(root, str(0, "'  '")), 1)
}

func TestLocateRootDirect(t *testing.T) {
	t.Run("text attribute uses the full value span", func(t *testing.T) {
		attr := &ast.TextAttribute{Name: "class", Value: " a ", HasValue: true, ValueSpan: source.Span{Start: 12, End: 15}}
		leaves := Locate(attr, nil)
		require.Len(t, leaves, 1)
		assert.Equal(t, source.Span{Start: 12, End: 15}, leaves[0].Range)
		assert.Zero(t, leaves[0].Quote)
	})

	t.Run("quoted vue literal drops delimiters", func(t *testing.T) {
		attr := &ast.VAttribute{
			Key:   &ast.VIdentifier{Name: "class"},
			Value: &ast.VLiteral{Base: span(11, 18), Value: " foo ", Quoted: true},
		}
		leaves := Locate(attr, nil)
		require.Len(t, leaves, 1)
		assert.Equal(t, source.Span{Start: 12, End: 17}, leaves[0].Range)
	})

	t.Run("unquoted vue literal keeps its span", func(t *testing.T) {
		attr := &ast.VAttribute{
			Key:   &ast.VIdentifier{Name: "class"},
			Value: &ast.VLiteral{Base: span(11, 14), Value: "a\tb"},
		}
		assert.Equal(t, source.Span{Start: 11, End: 14}, Locate(attr, nil)[0].Range)
	})

	t.Run("jsx container literal is escaped", func(t *testing.T) {
		attr := &ast.JSXAttribute{
			Name:  "className",
			Value: &ast.JSXExpressionContainer{Expression: str(11, `"a  b"`)},
		}
		leaves := Locate(attr, nil)
		require.Len(t, leaves, 1)
		assert.Equal(t, byte('"'), leaves[0].Quote)
		assert.Equal(t, source.Span{Start: 12, End: 16}, leaves[0].Range)
	})

	t.Run("missing value", func(t *testing.T) {
		assert.Empty(t, Locate(&ast.JSXAttribute{Name: "className"}, nil))
		assert.Empty(t, Locate(&ast.CallExpression{}, nil))
	})
}

func TestLeafReplacement(t *testing.T) {
	tests := []struct {
		name string
		leaf Leaf
		text string
		want string
		ok   bool
	}{
		{"quote escaped", Leaf{Quote: '\''}, `it's a`, `it\'s a`, true},
		{"other quote kept", Leaf{Quote: '\''}, `a "b" c`, `a "b" c`, true},
		{"backslash", Leaf{Quote: '"'}, `a\b c`, `a\\b c`, true},
		{"control", Leaf{Quote: '"'}, "a\x00b", `a\x00b`, true},
		{"lone surrogate", Leaf{Quote: '\''}, "a \xed\xa0\x80", `a \uD800`, true},
		{"raw invalid byte", Leaf{Quote: '\''}, "a \xff", "a \xff", true},
		{"surrogates pair up", Leaf{Quote: '\''}, "a \xed\xa0\xbd\xed\xb8\x80", `a \uD83D\uDE00`, false},
		{"attribute text", Leaf{}, `it's`, `it's`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tt.leaf.Replacement(tt.text)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestClassifiers(t *testing.T) {
	s, err := Defaults().compile()
	require.NoError(t, err)

	assert.True(t, IsClassAttribute(&ast.JSXAttribute{Name: "className"}, s.classRe))
	assert.True(t, IsClassAttribute(bindClass(nil), s.classRe))
	assert.False(t, IsClassAttribute(&ast.JSXAttribute{Name: "style"}, s.classRe))
	assert.False(t, IsClassAttribute(&ast.JSXAttribute{Namespace: "x", Name: "class"}, s.classRe))

	assert.True(t, IsCallee(&ast.CallExpression{Callee: ident(0, "clsx")}, s.callees))
	assert.False(t, IsCallee(&ast.CallExpression{Callee: ident(0, "cn")}, s.callees))
	assert.False(t, IsCallee(&ast.CallExpression{Callee: &ast.MemberExpression{Object: ident(0, "x"), Property: ident(2, "clsx")}}, s.callees))

	jsx := func(v ast.Node) *ast.JSXAttribute { return &ast.JSXAttribute{Name: "className", Value: v} }
	assert.True(t, IsLiteralValue(jsx(&ast.Literal{LitKind: ast.LitString, Value: "a b", JSX: true})))
	assert.False(t, IsLiteralValue(jsx(&ast.Literal{LitKind: ast.LitString, Value: "{a ? b : c}", JSX: true})))
	assert.True(t, IsLiteralValue(jsx(&ast.JSXExpressionContainer{Expression: str(0, "'a'")})))
	assert.False(t, IsLiteralValue(jsx(&ast.JSXExpressionContainer{Expression: ident(0, "a")})))
	assert.False(t, IsLiteralValue(bindClass(&ast.ArrayExpression{})))
	assert.True(t, IsLiteralValue(&ast.TextAttribute{Name: "class", HasValue: true}))
	assert.False(t, IsLiteralValue(&ast.TextAttribute{Name: "class"}))

	assert.Equal(t, Elements(nil), ValueOf(bindClass(&ast.ArrayExpression{})))
	assert.Equal(t, Absent{}, ValueOf(jsx(&ast.JSXExpressionContainer{Expression: &ast.Literal{LitKind: ast.LitNumber}})))
	assert.Equal(t, source.Span{}, Range(jsx(nil)))
}

func TestOptions(t *testing.T) {
	require.NoError(t, Options{}.Validate())
	require.NoError(t, Defaults().Validate())
	require.Error(t, Options{ClassRegex: "("}.Validate())
	require.Error(t, Options{Callees: []string{"clsx", "clsx"}}.Validate())

	s, err := Options{Callees: []string{}}.compile()
	require.NoError(t, err)
	assert.Empty(t, s.callees)

	_, err = optionsFrom(42)
	require.Error(t, err)
	o, err := optionsFrom(&Options{ClassRegex: "^x$"})
	require.NoError(t, err)
	assert.Equal(t, "^x$", o.ClassRegex)
}
