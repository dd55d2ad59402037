package config

import (
	"errors"
	"fmt"
	"slices"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// Outputs lists the accepted output modes.
var Outputs = []string{"auto", "text", "markdown", "json"}

// Validate checks the configuration. Errors wrap core.ErrConfiguration.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(Outputs, c.Output) {
		errs = append(errs, fmt.Errorf("output must be one of %v, got %q", Outputs, c.Output))
	}
	if _, ok := core.ParseSeverity(c.Severity); !ok {
		errs = append(errs, fmt.Errorf("unknown severity %q", c.Severity))
	}
	for rule, sev := range c.Lint.Severity {
		if _, ok := core.ParseSeverity(sev); !ok {
			errs = append(errs, fmt.Errorf("lint.severity.%s: unknown severity %q", rule, sev))
		}
	}
	if c.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative, got %s", c.Timeout))
	}
	switch c.Tagger.Kind {
	case "lexicon":
	case "http":
		if c.Tagger.URL == "" {
			errs = append(errs, errors.New("tagger.url is required when tagger.kind is http"))
		}
	default:
		errs = append(errs, fmt.Errorf("tagger.kind must be lexicon or http, got %q", c.Tagger.Kind))
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port out of range: %d", c.Server.Port))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", core.ErrConfiguration, errors.Join(errs...))
	}
	return nil
}

// SeverityThreshold returns the parsed minimum severity to report.
func (c *Config) SeverityThreshold() core.Severity {
	sev, ok := core.ParseSeverity(c.Severity)
	if !ok {
		return core.SeverityInfo
	}
	return sev
}
