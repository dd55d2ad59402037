package pattern_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/lint/pattern"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// fakeRuntime compiles any source except "broken" into a matcher that
// reports one match per top-level object.
type fakeRuntime struct {
	compiled []string
}

func (f *fakeRuntime) Compile(name string, src []byte) (pattern.Matcher, error) {
	if string(src) == "broken" {
		return nil, errors.New("syntax error")
	}
	f.compiled = append(f.compiled, name)
	return pattern.MatcherFunc(func(_ context.Context, prog *xmir.Program, _ map[string]any) ([]pattern.Match, error) {
		var out []pattern.Match
		for _, o := range prog.Objects() {
			out = append(out, pattern.Match{Line: o.Line, Text: "found " + o.Name})
		}
		return out, nil
	}), nil
}

const prog = `<program name="p"><objects>
  <o name="a" line="3" pos="0"/>
  <o name="b" line="7" pos="0"/>
</objects></program>`

func TestParseHeader(t *testing.T) {
	h, err := pattern.ParseHeader([]byte("# severity: error\n# options: max_parts, min\n\n# note\ndef check(program, options):\n    # severity: info\n    return []\n"))
	require.NoError(t, err)
	assert.Equal(t, core.SeverityError, h.Severity)
	assert.Equal(t, []string{"max_parts", "min"}, h.Options)

	h, err = pattern.ParseHeader([]byte("def check(program, options):\n    return []\n"))
	require.NoError(t, err)
	assert.Equal(t, core.SeverityWarning, h.Severity)

	_, err = pattern.ParseHeader([]byte("# severity: fatal\n"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	fsys := fstest.MapFS{
		"patterns/errors/alias-too-long.star":   {Data: []byte("# severity: error\n# options: max_parts\n")},
		"motives/errors/alias-too-long.md":      {Data: []byte("# Alias too long\n")},
		"patterns/critical/duplicate-names.star": {Data: []byte("# severity: critical\n")},
		"motives/critical/duplicate-names.md":    {Data: []byte("# Duplicate names\n")},
		"patterns/README.txt":                    {Data: []byte("ignored")},
	}

	rt := &fakeRuntime{}
	rules, err := pattern.Load(fsys, rt)
	require.NoError(t, err)
	require.Len(t, rules, 2)

	dup := rules[0]
	assert.Equal(t, "duplicate-names", dup.Name())
	assert.Equal(t, "critical", dup.Group())
	assert.Equal(t, core.SeverityCritical, dup.DefaultSeverity())

	alias := rules[1]
	assert.Equal(t, "alias-too-long", alias.Name())
	info := lint.GetRuleInfo(alias)
	assert.Equal(t, lint.TypePattern, info.Type)
	assert.Equal(t, []string{"max_parts"}, info.ConfigKeys)
	assert.Equal(t, "# Alias too long\n", info.Motive)

	assert.Len(t, rt.compiled, 2)

	p, err := xmir.ParseString(prog)
	require.NoError(t, err)
	defects, err := alias.Defects(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, defects, 2)
	assert.Equal(t, "[alias-too-long ERROR]:3 found a", defects[0].String())
	assert.Equal(t, "[alias-too-long ERROR]:7 found b", defects[1].String())
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
		want string
	}{
		{
			name: "missing motive",
			fsys: fstest.MapFS{
				"patterns/errors/x.star": {Data: []byte("")},
			},
			want: "missing motive",
		},
		{
			name: "empty motive",
			fsys: fstest.MapFS{
				"patterns/errors/x.star": {Data: []byte("")},
				"motives/errors/x.md":    {Data: []byte("  \n")},
			},
			want: "empty motive",
		},
		{
			name: "bad severity",
			fsys: fstest.MapFS{
				"patterns/errors/x.star": {Data: []byte("# severity: loud\n")},
				"motives/errors/x.md":    {Data: []byte("m")},
			},
			want: "unknown severity",
		},
		{
			name: "compile failure",
			fsys: fstest.MapFS{
				"patterns/errors/x.star": {Data: []byte("broken")},
				"motives/errors/x.md":    {Data: []byte("m")},
			},
			want: "syntax error",
		},
		{
			name: "duplicate name",
			fsys: fstest.MapFS{
				"patterns/a/x.star": {Data: []byte("")},
				"motives/a/x.md":    {Data: []byte("m")},
				"patterns/b/x.star": {Data: []byte("")},
				"motives/b/x.md":    {Data: []byte("m")},
			},
			want: "defined by both",
		},
		{
			name: "wrong depth",
			fsys: fstest.MapFS{
				"patterns/x.star": {Data: []byte("")},
			},
			want: "patterns/<group>/<name>",
		},
		{
			name: "no patterns directory",
			fsys: fstest.MapFS{},
			want: "loading patterns",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := pattern.Load(tt.fsys, &fakeRuntime{})
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrConfiguration)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRule_Check(t *testing.T) {
	p, err := xmir.ParseString(prog)
	require.NoError(t, err)

	var gotOpts map[string]any
	rule := pattern.NewRule("r", "g", core.SeverityWarning, "motive",
		pattern.MatcherFunc(func(_ context.Context, _ *xmir.Program, opts map[string]any) ([]pattern.Match, error) {
			gotOpts = opts
			return []pattern.Match{
				{Line: 1, Text: "plain"},
				{Line: 2, Text: "escalated", Severity: "critical"},
			}, nil
		}))

	defects, err := rule.Check(context.Background(), p, map[string]any{"k": 1})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"k": 1}, gotOpts)
	require.Len(t, defects, 2)
	assert.Equal(t, core.SeverityWarning, defects[0].Severity)
	assert.Equal(t, core.SeverityCritical, defects[1].Severity)
	assert.Empty(t, defects[1].Version)
}

func TestRule_RuntimeErrorsAreCollaboratorFailures(t *testing.T) {
	p, err := xmir.ParseString(prog)
	require.NoError(t, err)

	boom := errors.New("runtime exploded")
	rule := pattern.NewRule("r", "g", core.SeverityWarning, "motive",
		pattern.MatcherFunc(func(context.Context, *xmir.Program, map[string]any) ([]pattern.Match, error) {
			return nil, boom
		}))
	_, err = rule.Defects(context.Background(), p)
	assert.ErrorIs(t, err, core.ErrCollaborator)
	assert.ErrorIs(t, err, boom)

	bad := pattern.NewRule("r", "g", core.SeverityWarning, "motive",
		pattern.MatcherFunc(func(context.Context, *xmir.Program, map[string]any) ([]pattern.Match, error) {
			return []pattern.Match{{Line: 1, Text: "t", Severity: "loud"}}, nil
		}))
	_, err = bad.Defects(context.Background(), p)
	assert.ErrorIs(t, err, core.ErrCollaborator)
}

func TestRule_NoMotive(t *testing.T) {
	rule := pattern.NewRule("r", "g", core.SeverityWarning, "", nil)
	_, err := rule.Motive()
	assert.Error(t, err)
}
