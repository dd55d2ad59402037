package lint

import "github.com/leapstack-labs/xmirlint/pkg/core"

// Config controls which rules run, their severity and their options.
// A nil *Config runs every rule with its defaults.
type Config struct {
	// DisabledRules contains rule names to skip
	DisabledRules map[string]bool

	// OnlyRules, when non-empty, restricts the run to these rule names
	OnlyRules map[string]bool

	// SeverityOverrides changes the default severity of rules
	SeverityOverrides map[string]core.Severity

	// RuleOptions holds rule-specific options keyed by rule name
	RuleOptions map[string]map[string]any
}

// NewConfig creates a default configuration with all rules enabled.
// The zero Config is equally usable; its maps are created on first write.
func NewConfig() *Config {
	return &Config{
		DisabledRules:     make(map[string]bool),
		OnlyRules:         make(map[string]bool),
		SeverityOverrides: make(map[string]core.Severity),
		RuleOptions:       make(map[string]map[string]any),
	}
}

// IsDisabled returns true if the rule should be skipped.
func (c *Config) IsDisabled(name string) bool {
	if c == nil {
		return false
	}
	if len(c.OnlyRules) > 0 && !c.OnlyRules[name] {
		return true
	}
	return c.DisabledRules[name]
}

// GetSeverity returns the severity for a rule, applying any override.
func (c *Config) GetSeverity(name string, defaultSeverity core.Severity) core.Severity {
	if c != nil {
		if sev, ok := c.SeverityOverrides[name]; ok {
			return sev
		}
	}
	return defaultSeverity
}

// GetRuleOptions returns the options configured for a rule, or nil.
func (c *Config) GetRuleOptions(name string) map[string]any {
	if c == nil {
		return nil
	}
	return c.RuleOptions[name]
}

// Disable disables rules by name.
func (c *Config) Disable(names ...string) *Config {
	if c.DisabledRules == nil {
		c.DisabledRules = make(map[string]bool, len(names))
	}
	for _, name := range names {
		c.DisabledRules[name] = true
	}
	return c
}

// Only restricts the run to the named rules.
func (c *Config) Only(names ...string) *Config {
	if c.OnlyRules == nil {
		c.OnlyRules = make(map[string]bool, len(names))
	}
	for _, name := range names {
		c.OnlyRules[name] = true
	}
	return c
}

// SetSeverity overrides the severity for a rule.
func (c *Config) SetSeverity(name string, severity core.Severity) *Config {
	if c.SeverityOverrides == nil {
		c.SeverityOverrides = make(map[string]core.Severity)
	}
	c.SeverityOverrides[name] = severity
	return c
}

// SetRuleOptions merges options for a rule.
func (c *Config) SetRuleOptions(name string, opts map[string]any) *Config {
	if c.RuleOptions == nil {
		c.RuleOptions = make(map[string]map[string]any)
	}
	existing := c.RuleOptions[name]
	if existing == nil {
		existing = make(map[string]any, len(opts))
		c.RuleOptions[name] = existing
	}
	for k, v := range opts {
		existing[k] = v
	}
	return c
}
