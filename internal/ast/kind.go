package ast

// Kind tags every node so listeners can be keyed without reflection.
type Kind uint8

const (
	KindInvalid Kind = iota

	// script dialect
	KindProgram
	KindCallExpression
	KindLiteral
	KindTemplateLiteral
	KindArrayExpression
	KindObjectExpression
	KindProperty
	KindSpreadElement
	KindConditionalExpression
	KindIdentifier
	KindMemberExpression
	KindJSXAttribute
	KindJSXExpressionContainer
	KindOther

	// template dialect
	KindDocument
	KindVElement
	KindVAttribute
	KindVLiteral
	KindVExpressionContainer
	KindVDirectiveKey
	KindVIdentifier
	KindTextAttribute
)

var kindNames = [...]string{
	KindInvalid:                "Invalid",
	KindProgram:                "Program",
	KindCallExpression:         "CallExpression",
	KindLiteral:                "Literal",
	KindTemplateLiteral:        "TemplateLiteral",
	KindArrayExpression:        "ArrayExpression",
	KindObjectExpression:       "ObjectExpression",
	KindProperty:               "Property",
	KindSpreadElement:          "SpreadElement",
	KindConditionalExpression:  "ConditionalExpression",
	KindIdentifier:             "Identifier",
	KindMemberExpression:       "MemberExpression",
	KindJSXAttribute:           "JSXAttribute",
	KindJSXExpressionContainer: "JSXExpressionContainer",
	KindOther:                  "Other",
	KindDocument:               "Document",
	KindVElement:               "VElement",
	KindVAttribute:             "VAttribute",
	KindVLiteral:               "VLiteral",
	KindVExpressionContainer:   "VExpressionContainer",
	KindVDirectiveKey:          "VDirectiveKey",
	KindVIdentifier:            "VIdentifier",
	KindTextAttribute:          "TextAttribute",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Invalid"
}

// IsTemplate reports whether k is one of the template dialect kinds.
func (k Kind) IsTemplate() bool {
	return k >= KindDocument
}
