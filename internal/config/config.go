// Package config loads quibble.toml (or .quibble.yaml) and turns it into
// the set of enabled rules.
package config

import (
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"

	"quibble/internal/diag"
	"quibble/internal/lint"
	"quibble/internal/rules/whitespace"
)

// SeverityOff disables a rule.
const SeverityOff = "off"

var (
	DefaultInclude = []string{"**/*.{js,jsx,mjs,cjs,ts,tsx,mts,cts,vue,html,htm}"}
	DefaultIgnore  = []string{"**/node_modules/**", "**/dist/**"}
)

// Config is the project configuration.
type Config struct {
	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`

	Lint  LintConfig  `toml:"lint" yaml:"lint"`
	Rules RulesConfig `toml:"rules" yaml:"rules"`
}

type LintConfig struct {
	Include []string `toml:"include" yaml:"include"`
	Ignore  []string `toml:"ignore" yaml:"ignore"`
	// Template=false parses .vue files without template support.
	Template bool `toml:"template" yaml:"template"`
}

type RulesConfig struct {
	NoExcessiveWhitespace WhitespaceRule `toml:"no-excessive-whitespace" yaml:"no-excessive-whitespace"`
}

// WhitespaceRule configures no-excessive-whitespace.
type WhitespaceRule struct {
	Severity           string `toml:"severity" yaml:"severity"`
	whitespace.Options `yaml:",inline"`
}

// Default returns the configuration used when no file is found.
func Default() *Config {
	return &Config{
		Lint: LintConfig{
			Include:  slices.Clone(DefaultInclude),
			Ignore:   slices.Clone(DefaultIgnore),
			Template: true,
		},
		Rules: RulesConfig{
			NoExcessiveWhitespace: WhitespaceRule{
				Severity: "warn",
				Options:  whitespace.Defaults(),
			},
		},
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	if len(c.Lint.Include) == 0 {
		result = multierror.Append(result, errors.New("lint.include: at least one pattern is required"))
	}
	for _, p := range c.Lint.Include {
		if !doublestar.ValidatePattern(p) {
			result = multierror.Append(result, errors.Errorf("lint.include: invalid pattern %q", p))
		}
	}
	for _, p := range c.Lint.Ignore {
		if !doublestar.ValidatePattern(p) {
			result = multierror.Append(result, errors.Errorf("lint.ignore: invalid pattern %q", p))
		}
	}

	ws := c.Rules.NoExcessiveWhitespace
	if _, _, err := parseSeverity(ws.Severity); err != nil {
		result = multierror.Append(result, errors.Errorf("rules.%s.severity: %w", whitespace.Name, err))
	}
	if err := ws.Validate(); err != nil {
		result = multierror.Append(result, errors.Errorf("rules.%s: %w", whitespace.Name, err))
	}
	return result.ErrorOrNil()
}

// parseSeverity returns enabled=false for "off".
func parseSeverity(value string) (sev diag.Severity, enabled bool, err error) {
	if strings.EqualFold(strings.TrimSpace(value), SeverityOff) {
		return diag.SevInfo, false, nil
	}
	sev, err = diag.ParseSeverity(value)
	if err != nil {
		return sev, false, err
	}
	return sev, true, nil
}

// EnabledRules lists the rules to run with their severity and options.
func (c *Config) EnabledRules() ([]lint.Enabled, error) {
	ws := c.Rules.NoExcessiveWhitespace
	sev, on, err := parseSeverity(ws.Severity)
	if err != nil {
		return nil, errors.Errorf("rules.%s.severity: %w", whitespace.Name, err)
	}
	if !on {
		return nil, nil
	}
	return []lint.Enabled{{
		Rule:     whitespace.Rule{},
		Severity: sev,
		Options:  ws.Options,
	}}, nil
}
