package lint

import (
	"sort"

	"gitlab.com/tozd/go/errors"
)

// ErrUnknownRule is returned by Lookup for names that are not registered.
var ErrUnknownRule = errors.New("unknown rule")

// Registry indexes rules by name.
type Registry struct {
	rules map[string]Rule
}

// NewRegistry registers rules; duplicate names are an error.
func NewRegistry(rules ...Rule) (*Registry, error) {
	r := &Registry{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		name := rule.Meta().Name
		if name == "" {
			return nil, errors.New("rule without a name")
		}
		if _, dup := r.rules[name]; dup {
			return nil, errors.Errorf("rule %q registered twice", name)
		}
		r.rules[name] = rule
	}
	return r, nil
}

func (r *Registry) Lookup(name string) (Rule, error) {
	rule, ok := r.rules[name]
	if !ok {
		return nil, errors.Errorf("%w: %s", ErrUnknownRule, name)
	}
	return rule, nil
}

// All returns the registered rules sorted by name.
func (r *Registry) All() []Rule {
	out := make([]Rule, 0, len(r.rules))
	for _, rule := range r.rules {
		out = append(out, rule)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Meta().Name < out[j].Meta().Name
	})
	return out
}
