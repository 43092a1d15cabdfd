// Package rules lists the built-in rules.
package rules

import (
	"quibble/internal/lint"
	"quibble/internal/rules/whitespace"
)

// Builtin returns every rule shipped with quibble.
func Builtin() []lint.Rule {
	return []lint.Rule{
		whitespace.Rule{},
	}
}

// Registry returns a registry of the built-in rules.
func Registry() *lint.Registry {
	reg, err := lint.NewRegistry(Builtin()...)
	if err != nil {
		panic(err)
	}
	return reg
}
