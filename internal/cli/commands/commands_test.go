package commands

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	clitest "github.com/leapstack-labs/xmirlint/internal/cli/testutil"
	"github.com/leapstack-labs/xmirlint/internal/cli/config"
	"github.com/leapstack-labs/xmirlint/internal/testutil"
	"github.com/leapstack-labs/xmirlint/pkg/core"
)

func TestMain(m *testing.M) {
	for _, kv := range os.Environ() {
		if k, _, _ := strings.Cut(kv, "="); strings.HasPrefix(k, config.EnvPrefix) {
			_ = os.Unsetenv(k)
		}
	}
	os.Exit(m.Run())
}

// run executes sub under a bare root carrying the global flags, inside a
// fresh working directory.
func run(t *testing.T, sub *cobra.Command, args ...string) clitest.Result {
	t.Helper()
	root := &cobra.Command{Use: "xmirlint", SilenceUsage: true, SilenceErrors: true}
	AddGlobalFlags(root)
	root.AddCommand(sub)
	return clitest.Execute(t, root, append([]string{sub.Name()}, args...)...)
}

// project writes the fixtures into a fresh working directory.
func project(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	testutil.WriteFile(t, dir, "src/suite.xmir", testutil.TestsProgram)
	testutil.WriteFile(t, dir, "src/sum.xmir", testutil.CleanProgram)
	return dir
}

func TestCommandMetadata(t *testing.T) {
	tests := []struct {
		cmd   *cobra.Command
		use   string
		flags []string
	}{
		{NewLintCommand(), "lint [path...]", []string{"format", "disable", "severity", "rule", "watch", "concurrency"}},
		{NewRulesCommand(), "rules [rule-name]", []string{"group", "type", "format"}},
		{NewHistoryCommand(), "history [run-id]", []string{"limit", "format"}},
		{NewServeCommand(), "serve [path...]", []string{"port"}},
		{NewVersionCommand("1.0.0"), "version", nil},
	}
	for _, tt := range tests {
		t.Run(tt.use, func(t *testing.T) {
			assert.Equal(t, tt.use, tt.cmd.Use)
			assert.NotEmpty(t, tt.cmd.Short, "Short should not be empty")
			assert.NotEmpty(t, tt.cmd.Long, "Long should not be empty")
			for _, flag := range tt.flags {
				assert.NotNil(t, tt.cmd.Flags().Lookup(flag), "flag %q should exist", flag)
			}
		})
	}
}

func TestVersionCommand(t *testing.T) {
	res := run(t, NewVersionCommand("1.2.3"))
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "xmirlint v1.2.3")
}

func TestLint_Defects(t *testing.T) {
	project(t)

	res := run(t, NewLintCommand(), "src/suite.xmir")
	require.ErrorIs(t, res.Err, ErrDefectsFound)

	clitest.AssertNoANSI(t, res.Out)
	clitest.AssertValidMarkdown(t, res.Out)
	assert.Contains(t, res.Out, "### src/suite.xmir")
	for _, d := range testutil.TestsProgramDefects {
		assert.Contains(t, res.Out, "- "+d+"\n")
	}
	assert.Contains(t, res.Out, "**Summary:** 4 defects, 1 critical, 3 warning in 1 files")
}

func TestLint_Clean(t *testing.T) {
	project(t)

	res := run(t, NewLintCommand(), "src/sum.xmir")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "✓ No defects found in 1 files")
}

func TestLint_Directory(t *testing.T) {
	project(t)

	res := run(t, NewLintCommand(), "--format", "json")
	require.ErrorIs(t, res.Err, ErrDefectsFound)

	var got lintJSON
	require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
	assert.Equal(t, 2, got.Summary.Files)
	assert.Equal(t, 4, got.Summary.Defects)
	assert.Equal(t, map[string]int{"critical": 1, "warning": 3}, got.Summary.BySeverity)
	require.Len(t, got.Files, 2)
	assert.Equal(t, filepath.Join("src", "suite.xmir"), got.Files[0].Path)
	assert.Len(t, got.Files[0].Defects, 4)
	assert.Equal(t, Version, got.Files[0].Defects[0].Version)
	assert.Empty(t, got.Files[1].Defects)
}

func TestLint_Filters(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
		err  error
	}{
		{
			name: "severity threshold",
			args: []string{"--severity", "critical"},
			want: []string{testutil.TestsProgramDefects[1]},
			err:  ErrDefectsFound,
		},
		{
			name: "only one rule",
			args: []string{"--rule", "ascii-only"},
			want: []string{testutil.TestsProgramDefects[0]},
			err:  ErrDefectsFound,
		},
		{
			name: "disabled rules",
			args: []string{"--disable", "ascii-only,duplicate-names,test-object-is-verb-in-singular"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			project(t)
			res := run(t, NewLintCommand(), append(tt.args, "--format", "json", "src/suite.xmir")...)
			if tt.err != nil {
				require.ErrorIs(t, res.Err, tt.err)
			} else {
				require.NoError(t, res.Err)
			}

			var got lintJSON
			require.NoError(t, json.Unmarshal([]byte(res.Out), &got))
			require.Len(t, got.Files, 1)
			texts := make([]string, 0, len(got.Files[0].Defects))
			for _, d := range got.Files[0].Defects {
				texts = append(texts, d.String())
			}
			if tt.want == nil {
				tt.want = []string{}
			}
			assert.Equal(t, tt.want, texts)
		})
	}
}

func TestLint_ProjectConfig(t *testing.T) {
	dir := project(t)
	testutil.WriteFile(t, dir, "src/alias.xmir", testutil.AliasProgram)

	res := run(t, NewLintCommand(), "--format", "json", "src/alias.xmir")
	require.ErrorIs(t, res.Err, ErrDefectsFound)
	assert.Contains(t, res.Out, "The alias has too many parts")

	testutil.WriteFile(t, dir, config.DefaultConfigFile, `
lint:
  rules:
    alias-too-long:
      max_parts: 3
`)
	res = run(t, NewLintCommand(), "src/alias.xmir")
	require.NoError(t, res.Err)

	testutil.WriteFile(t, dir, config.DefaultConfigFile, `
lint:
  severity:
    alias-too-long: critical
`)
	res = run(t, NewLintCommand(), "src/alias.xmir")
	require.ErrorIs(t, res.Err, ErrDefectsFound)
	assert.Contains(t, res.Out, "[alias-too-long CRITICAL]:5 The alias has too many parts")
}

func TestLint_ConfigurationErrorsPrintNothing(t *testing.T) {
	tests := []struct {
		name   string
		config string
		args   []string
	}{
		{name: "unknown disabled rule", args: []string{"--disable", "no-such-rule"}},
		{name: "unknown only rule", args: []string{"--rule", "no-such-rule"}},
		{name: "unknown configured rule", config: "lint:\n  severity:\n    no-such-rule: error\n"},
		{name: "bad severity flag", args: []string{"--severity", "loud"}},
		{name: "broken patterns dir", args: []string{"--patterns", "rules"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := project(t)
			testutil.WriteFile(t, dir, "rules/patterns/custom/no-motive.star", "def check(program, options):\n    return []\n")
			if tt.config != "" {
				testutil.WriteFile(t, dir, config.DefaultConfigFile, tt.config)
			}

			res := run(t, NewLintCommand(), append(tt.args, "src")...)
			require.ErrorIs(t, res.Err, core.ErrConfiguration)
			assert.Empty(t, res.Out)
		})
	}
}

func TestLint_BrokenFile(t *testing.T) {
	dir := project(t)
	testutil.WriteFile(t, dir, "src/broken.xmir", testutil.BrokenXMIR)

	res := run(t, NewLintCommand(), "src")
	require.ErrorIs(t, res.Err, ErrAnalysisFailed)
	assert.Contains(t, res.Out, "### src/broken.xmir")
	assert.Contains(t, res.Out, "- error: ")
	assert.Contains(t, res.Out, "1 could not be analyzed")
}

func TestLint_TextMode(t *testing.T) {
	project(t)

	res := run(t, NewLintCommand(), "--format", "text", "src/suite.xmir")
	require.ErrorIs(t, res.Err, ErrDefectsFound)
	clitest.AssertNoANSI(t, res.Out)
	assert.Contains(t, res.Out, "src/suite.xmir\n")
	assert.Contains(t, res.Out, "CRITICAL  duplicate-names")
	assert.Contains(t, res.Out, "Summary: 4 defects")
}

func TestRules_List(t *testing.T) {
	project(t)

	res := run(t, NewRulesCommand())
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "## Lint Rules")
	assert.Contains(t, res.Out, "| alias-too-long | errors | pattern | ERROR | max_parts |")
	assert.Contains(t, res.Out, "8 rules")
}

func TestRules_Filter(t *testing.T) {
	project(t)

	res := run(t, NewRulesCommand(), "--group", "metas", "--format", "json")
	require.NoError(t, res.Err)

	var rules []core.RuleInfo
	require.NoError(t, json.Unmarshal([]byte(res.Out), &rules))
	require.Len(t, rules, 3)
	for _, r := range rules {
		assert.Equal(t, "metas", r.Group)
	}

	res = run(t, NewRulesCommand(), "--type", "procedural", "--format", "json")
	require.NoError(t, res.Err)
	require.NoError(t, json.Unmarshal([]byte(res.Out), &rules))
	assert.Len(t, rules, 2)
}

func TestRules_Show(t *testing.T) {
	project(t)

	res := run(t, NewRulesCommand(), "duplicate-names")
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "## duplicate-names")
	assert.Contains(t, res.Out, "CRITICAL")

	res = run(t, NewRulesCommand(), "no-such-rule")
	require.Error(t, res.Err)
}

func TestHistory(t *testing.T) {
	project(t)

	res := run(t, NewHistoryCommand())
	require.Error(t, res.Err)
	assert.Contains(t, res.Err.Error(), "--state")

	state := filepath.Join(".xmirlint", "state.db")
	res = run(t, NewLintCommand(), "--state", state, "src/suite.xmir")
	require.ErrorIs(t, res.Err, ErrDefectsFound)

	res = run(t, NewHistoryCommand(), "--state", state, "--format", "json")
	require.NoError(t, res.Err)
	var runs []*core.Run
	require.NoError(t, json.Unmarshal([]byte(res.Out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, core.RunStatusDefects, runs[0].Status)
	assert.Equal(t, 4, runs[0].DefectCount)

	res = run(t, NewHistoryCommand(), "--state", state)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "## Lint Runs")
	assert.Contains(t, res.Out, runs[0].ID)

	res = run(t, NewHistoryCommand(), "--state", state, runs[0].ID)
	require.NoError(t, res.Err)
	assert.Contains(t, res.Out, "| duplicate-names |")
}
