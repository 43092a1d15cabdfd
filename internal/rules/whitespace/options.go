package whitespace

import (
	"regexp"
	"slices"

	"gitlab.com/tozd/go/errors"
)

const DefaultClassRegex = "^class(Name)?$"

// DefaultCallees are the class utility functions checked out of the box.
var DefaultCallees = []string{"classnames", "clsx", "ctl", "cva", "tv"}

// Options configures the rule. Zero fields take the defaults.
type Options struct {
	Callees    []string `toml:"callees" yaml:"callees" json:"callees,omitempty"`
	ClassRegex string   `toml:"class-regex" yaml:"class-regex" json:"classRegex,omitempty"`
}

// Defaults returns the options used when nothing is configured.
func Defaults() Options {
	return Options{
		Callees:    slices.Clone(DefaultCallees),
		ClassRegex: DefaultClassRegex,
	}
}

type settings struct {
	callees map[string]struct{}
	classRe *regexp.Regexp
}

// Validate checks the options without building matchers.
func (o Options) Validate() error {
	_, err := o.compile()
	return err
}

func (o Options) compile() (*settings, error) {
	callees := o.Callees
	if callees == nil {
		callees = DefaultCallees
	}
	pattern := o.ClassRegex
	if pattern == "" {
		pattern = DefaultClassRegex
	}

	s := &settings{callees: make(map[string]struct{}, len(callees))}
	for _, name := range callees {
		if _, dup := s.callees[name]; dup {
			return nil, errors.Errorf("callees: %q listed twice", name)
		}
		s.callees[name] = struct{}{}
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, errors.Errorf("class-regex %q: %w", pattern, err)
	}
	s.classRe = re
	return s, nil
}

func optionsFrom(v any) (Options, error) {
	switch o := v.(type) {
	case nil:
		return Options{}, nil
	case Options:
		return o, nil
	case *Options:
		if o == nil {
			return Options{}, nil
		}
		return *o, nil
	default:
		return Options{}, errors.Errorf("unexpected options type %T", v)
	}
}
