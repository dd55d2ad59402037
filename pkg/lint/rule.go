package lint

import (
	"context"
	"errors"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// Rule types reported in RuleInfo.
const (
	TypePattern    = "pattern"
	TypeProcedural = "procedural"
)

// Rule is the interface all lint rules implement, whatever their internals.
type Rule interface {
	// Name returns the unique identifier, e.g. "ascii-only"
	Name() string

	// Group returns the category, e.g. "comments", "critical", "misc"
	Group() string

	// DefaultSeverity returns the severity defects get unless configured otherwise
	DefaultSeverity() core.Severity

	// Motive returns markdown explaining why the rule exists. An empty motive
	// is a configuration error.
	Motive() (string, error)

	// Defects checks the program and returns findings in source order.
	Defects(ctx context.Context, prog *xmir.Program) ([]core.Defect, error)
}

// ConfigurableRule is a rule that accepts options from configuration.
type ConfigurableRule interface {
	Rule

	// ConfigKeys returns the option keys this rule understands
	ConfigKeys() []string

	// Check is Defects with rule-specific options applied.
	Check(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]core.Defect, error)
}

// Typed is implemented by rules that report their variant.
// Rules that do not implement it are procedural.
type Typed interface {
	Type() string
}

// RuleDef is a data-driven procedural rule definition.
// Rules are stateless; dependencies are captured by the Check closure.
type RuleDef struct {
	Name       string        // Unique identifier, e.g. "ascii-only"
	Group      string        // Category, e.g. "comments"
	Severity   core.Severity // Default severity
	Motive     string        // Markdown rationale
	ConfigKeys []string      // Options this rule accepts
	Check      CheckFunc     // The check function
}

// CheckFunc analyzes a program and returns defects.
// The opts parameter contains rule-specific options from configuration.
type CheckFunc func(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]core.Defect, error)

// errNoMotive is returned by rules declared without a motive.
var errNoMotive = errors.New("rule has no motive")

// GetRuleInfo extracts metadata from a Rule for documentation/tooling.
// A motive that cannot be read is left empty.
func GetRuleInfo(r Rule) core.RuleInfo {
	info := core.RuleInfo{
		Name:            r.Name(),
		Group:           r.Group(),
		DefaultSeverity: r.DefaultSeverity(),
		Type:            TypeProcedural,
	}
	if motive, err := r.Motive(); err == nil {
		info.Motive = motive
	}
	if cr, ok := r.(ConfigurableRule); ok {
		info.ConfigKeys = cr.ConfigKeys()
	}
	if tr, ok := r.(Typed); ok {
		info.Type = tr.Type()
	}
	return info
}

// wrappedRuleDef adapts a RuleDef to ConfigurableRule.
type wrappedRuleDef struct {
	def RuleDef
}

// WrapRuleDef adapts a RuleDef to the Rule interface.
func WrapRuleDef(def RuleDef) ConfigurableRule {
	return &wrappedRuleDef{def: def}
}

func (w *wrappedRuleDef) Name() string                   { return w.def.Name }
func (w *wrappedRuleDef) Group() string                  { return w.def.Group }
func (w *wrappedRuleDef) DefaultSeverity() core.Severity { return w.def.Severity }
func (w *wrappedRuleDef) ConfigKeys() []string           { return w.def.ConfigKeys }
func (w *wrappedRuleDef) Type() string                   { return TypeProcedural }

func (w *wrappedRuleDef) Motive() (string, error) {
	if w.def.Motive == "" {
		return "", errNoMotive
	}
	return w.def.Motive, nil
}

func (w *wrappedRuleDef) Defects(ctx context.Context, prog *xmir.Program) ([]core.Defect, error) {
	return w.Check(ctx, prog, nil)
}

func (w *wrappedRuleDef) Check(ctx context.Context, prog *xmir.Program, opts map[string]any) ([]core.Defect, error) {
	if w.def.Check == nil {
		return nil, nil
	}
	return w.def.Check(ctx, prog, opts)
}

// Unwrap returns the underlying RuleDef.
func (w *wrappedRuleDef) Unwrap() RuleDef {
	return w.def
}
