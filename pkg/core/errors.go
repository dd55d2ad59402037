package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration marks fatal setup problems: a malformed or missing rule
	// resource, a rule without motive, an empty catalog. Runs abort on it.
	ErrConfiguration = errors.New("configuration error")

	// ErrEmptyCatalog is returned when catalog construction yields no rules.
	ErrEmptyCatalog = fmt.Errorf("%w: rule catalog is empty", ErrConfiguration)

	// ErrCollaborator marks failures of an external capability a rule relies
	// on (pattern runtime, tagger). They are never reported as "no defects".
	ErrCollaborator = errors.New("collaborator failure")
)

// ConfigError is a configuration error attributed to one rule or resource.
type ConfigError struct {
	Rule string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("rule %q: %v", e.Rule, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Is makes every ConfigError match ErrConfiguration.
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfiguration
}

// NewConfigError wraps err as a configuration error of the given rule.
func NewConfigError(rule string, err error) error {
	return &ConfigError{Rule: rule, Err: err}
}
