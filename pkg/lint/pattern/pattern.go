// Package pattern implements rules whose matching logic lives in a script
// executed by an external runtime.
//
// Scripts are loaded from a resource tree:
//
//	patterns/<group>/<name>.star   the script, compiled by a Runtime
//	motives/<group>/<name>.md      the rule motive, required
//
// A script may start with header comments:
//
//	# severity: error
//	# options: max_parts
//
// The rule passes the program in, collects matches out and wraps each match
// into a defect carrying the rule name and severity.
package pattern

import (
	"context"
	"fmt"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// Match is one location found by a script.
type Match struct {
	Line int
	Text string
	// Severity overrides the rule severity when non-empty
	Severity string
}

// Matcher runs a compiled pattern against a program.
type Matcher interface {
	Match(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]Match, error)
}

// Runtime compiles pattern sources.
type Runtime interface {
	Compile(name string, src []byte) (Matcher, error)
}

// MatcherFunc adapts a function to the Matcher interface.
type MatcherFunc func(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]Match, error)

// Match calls f.
func (f MatcherFunc) Match(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]Match, error) {
	return f(ctx, prog, opts)
}

// Rule is a lint rule backed by a Matcher.
type Rule struct {
	name       string
	group      string
	severity   core.Severity
	motive     string
	configKeys []string
	matcher    Matcher
}

var _ lint.ConfigurableRule = (*Rule)(nil)

// NewRule creates a pattern rule.
func NewRule(name, group string, severity core.Severity, motive string, matcher Matcher, configKeys ...string) *Rule {
	return &Rule{
		name:       name,
		group:      group,
		severity:   severity,
		motive:     motive,
		configKeys: configKeys,
		matcher:    matcher,
	}
}

func (r *Rule) Name() string                   { return r.name }
func (r *Rule) Group() string                  { return r.group }
func (r *Rule) DefaultSeverity() core.Severity { return r.severity }
func (r *Rule) ConfigKeys() []string           { return r.configKeys }
func (r *Rule) Type() string                   { return lint.TypePattern }

// Motive returns the markdown loaded next to the script.
func (r *Rule) Motive() (string, error) {
	if r.motive == "" {
		return "", fmt.Errorf("pattern %s has no motive", r.name)
	}
	return r.motive, nil
}

// Defects runs the pattern with no options.
func (r *Rule) Defects(ctx context.Context, prog *xmir.Program) ([]core.Defect, error) {
	return r.Check(ctx, prog, nil)
}

// Check runs the pattern. Runtime failures are returned wrapped in
// core.ErrCollaborator.
func (r *Rule) Check(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]core.Defect, error) {
	matches, err := r.matcher.Match(ctx, prog, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: pattern %s: %w", core.ErrCollaborator, r.name, err)
	}

	defects := make([]core.Defect, 0, len(matches))
	for _, m := range matches {
		sev := r.severity
		if m.Severity != "" {
			parsed, ok := core.ParseSeverity(m.Severity)
			if !ok {
				return nil, fmt.Errorf("%w: pattern %s: unknown severity %q at line %d",
					core.ErrCollaborator, r.name, m.Severity, m.Line)
			}
			sev = parsed
		}
		defects = append(defects, core.NewDefect(r.name, sev, m.Line, m.Text))
	}
	return defects, nil
}
