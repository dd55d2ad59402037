package lint_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

const program = `<program name="app">
  <objects>
    <o name="first" line="2" pos="0"/>
    <o name="second" line="5" pos="0"/>
  </objects>
</program>`

func parse(t *testing.T, src string) *xmir.Program {
	t.Helper()
	p, err := xmir.ParseString(src)
	require.NoError(t, err)
	return p
}

// objectRule reports one defect per top-level object.
func objectRule(name string, sev core.Severity) lint.Rule {
	return lint.WrapRuleDef(lint.RuleDef{
		Name:     name,
		Group:    "test",
		Severity: sev,
		Motive:   "Reports every object.",
		Check: func(_ context.Context, prog *xmir.Program, _ map[string]any) ([]core.Defect, error) {
			var out []core.Defect
			for _, o := range prog.Objects() {
				out = append(out, core.NewDefect(name, sev, o.Line, "object "+o.Name))
			}
			return out, nil
		},
	})
}

func ruleFunc(name string, check lint.CheckFunc) lint.Rule {
	return lint.WrapRuleDef(lint.RuleDef{
		Name:     name,
		Group:    "test",
		Severity: core.SeverityWarning,
		Motive:   "Test rule.",
		Check:    check,
	})
}
