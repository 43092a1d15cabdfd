package ast

// Attribute is the dialect-neutral view of an element attribute.
type Attribute interface {
	Node
	// AttrName is the name a class pattern is matched against: "ns:name" for
	// namespaced JSX, the bind argument for v-bind directives, the plain name
	// otherwise. Directives other than bind have no name.
	AttrName() string
	// AttrValue returns the value node, or nil when the attribute has none.
	// A TextAttribute is its own value.
	AttrValue() Node
}

var (
	_ Attribute = (*JSXAttribute)(nil)
	_ Attribute = (*VAttribute)(nil)
	_ Attribute = (*TextAttribute)(nil)
)

func (a *JSXAttribute) AttrName() string {
	if a.Namespace != "" {
		return a.Namespace + ":" + a.Name
	}
	return a.Name
}

func (a *JSXAttribute) AttrValue() Node { return a.Value }

func (a *VAttribute) AttrName() string {
	switch key := a.Key.(type) {
	case *VIdentifier:
		return key.Name
	case *VDirectiveKey:
		if key.Name == nil || key.Name.Name != "bind" {
			return ""
		}
		if arg, ok := key.Argument.(*VIdentifier); ok {
			return arg.Name
		}
	}
	return ""
}

func (a *VAttribute) AttrValue() Node { return a.Value }

// DirectiveKey returns the key when the attribute is a directive.
func (a *VAttribute) DirectiveKey() (*VDirectiveKey, bool) {
	key, ok := a.Key.(*VDirectiveKey)
	return key, ok
}

func (a *TextAttribute) AttrName() string { return a.Name }

func (a *TextAttribute) AttrValue() Node {
	if !a.HasValue {
		return nil
	}
	return a
}
