package engine

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/internal/testutil"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

func newTestEngine(t *testing.T, cfg Config) *Engine {
	t.Helper()
	if cfg.Version == "" {
		cfg.Version = "0.1.0"
	}
	cfg.Logger = testutil.NewTestLogger(t)
	e, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func texts(defects []core.Defect) []string {
	out := make([]string, len(defects))
	for i, d := range defects {
		out[i] = d.String()
	}
	return out
}

func TestEngine_Rules(t *testing.T) {
	e := newTestEngine(t, Config{})

	infos, err := e.Rules(context.Background())
	require.NoError(t, err)

	var names []string
	for _, info := range infos {
		names = append(names, info.Name)
		assert.NotEmpty(t, info.Motive, info.Name)
	}
	assert.Equal(t, []string{
		"alias-too-long",
		"ascii-only",
		"comment-too-short",
		"duplicate-names",
		"incorrect-architect",
		"incorrect-home",
		"incorrect-version",
		"test-object-is-verb-in-singular",
	}, names)

	info, err := e.Rule(context.Background(), "duplicate-names")
	require.NoError(t, err)
	assert.Equal(t, lint.TypePattern, info.Type)
	assert.Equal(t, core.SeverityCritical, info.DefaultSeverity)

	info, err = e.Rule(context.Background(), "ascii-only")
	require.NoError(t, err)
	assert.Equal(t, lint.TypeProcedural, info.Type)

	_, err = e.Rule(context.Background(), "nope")
	require.ErrorIs(t, err, lint.ErrRuleNotFound)
}

func TestEngine_LintProgramMergesRuleKinds(t *testing.T) {
	e := newTestEngine(t, Config{Version: "1.2.3"})

	prog, err := xmir.ParseString(testutil.TestsProgram)
	require.NoError(t, err)

	report, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	assert.Empty(t, report.Failures)
	assert.Equal(t, testutil.TestsProgramDefects, texts(report.Defects))
	for _, d := range report.Defects {
		assert.Equal(t, "1.2.3", d.Version)
	}
}

func TestEngine_LintProgramIsIdempotent(t *testing.T) {
	e := newTestEngine(t, Config{})

	prog, err := xmir.ParseString(testutil.TestsProgram)
	require.NoError(t, err)

	first, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	second, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	assert.Equal(t, first.Defects, second.Defects)
	assert.Equal(t, 1, e.Catalog().Builds())
}

func TestEngine_AliasTooLong(t *testing.T) {
	e := newTestEngine(t, Config{})

	prog, err := xmir.ParseString(testutil.AliasProgram)
	require.NoError(t, err)

	report, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"[alias-too-long ERROR]:5 The alias has too many parts"}, texts(report.Defects))
}

func TestEngine_LintConfig(t *testing.T) {
	cfg := lint.NewConfig().
		Disable("ascii-only", "duplicate-names").
		SetSeverity("test-object-is-verb-in-singular", core.SeverityError)
	e := newTestEngine(t, Config{Lint: cfg})

	prog, err := xmir.ParseString(testutil.TestsProgram)
	require.NoError(t, err)

	report, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	require.Len(t, report.Defects, 2)
	for _, d := range report.Defects {
		assert.Equal(t, "test-object-is-verb-in-singular", d.Rule)
		assert.Equal(t, core.SeverityError, d.Severity)
	}
}

func TestEngine_LintFilesWithHistory(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "a/suite.xmir", testutil.TestsProgram)
	testutil.WriteFile(t, dir, "b/clean.xmir", testutil.CleanProgram)
	testutil.WriteFile(t, dir, "c/broken.xmir", testutil.BrokenXMIR)
	testutil.WriteFile(t, dir, "notes.txt", "not xmir")

	e := newTestEngine(t, Config{StatePath: filepath.Join(dir, "state.db")})

	reports, err := e.Lint(context.Background(), []string{dir})
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, filepath.Join(dir, "a/suite.xmir"), reports[0].Path)
	require.NoError(t, reports[0].Err)
	assert.Equal(t, testutil.TestsProgramDefects, texts(reports[0].Report.Defects))

	require.NoError(t, reports[1].Err)
	assert.True(t, reports[1].Report.Clean())

	require.Error(t, reports[2].Err)
	assert.Nil(t, reports[2].Report)

	runs, err := e.History(0)
	require.NoError(t, err)
	require.Len(t, runs, 3)

	byProgram := make(map[string]*core.Run)
	for _, r := range runs {
		byProgram[r.Program] = r
		assert.Equal(t, "0.1.0", r.Version)
	}

	suite := byProgram[reports[0].Path]
	require.NotNil(t, suite)
	assert.Equal(t, core.RunStatusDefects, suite.Status)
	assert.Equal(t, 4, suite.DefectCount)

	_, defects, err := e.RunDefects(suite.ID)
	require.NoError(t, err)
	assert.Equal(t, testutil.TestsProgramDefects, texts(defects))

	assert.Equal(t, core.RunStatusClean, byProgram[reports[1].Path].Status)
	broken := byProgram[reports[2].Path]
	assert.Equal(t, core.RunStatusFailed, broken.Status)
	assert.NotEmpty(t, broken.Error)
}

func TestEngine_NoHistory(t *testing.T) {
	e := newTestEngine(t, Config{})

	_, err := e.History(10)
	require.ErrorIs(t, err, ErrNoHistory)
	_, _, err = e.RunDefects("x")
	require.ErrorIs(t, err, ErrNoHistory)
}

func TestEngine_PatternsDir(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "patterns/custom/no-app.star", `# severity: error

def check(program, options):
    return [match(o.line, "Objects must not be called app") for o in program.objects if o.name == "app"]
`)
	testutil.WriteFile(t, dir, "motives/custom/no-app.md", "# No App\n\nName objects by what they do.\n")

	e := newTestEngine(t, Config{PatternsDir: dir, Lint: lint.NewConfig().Only("no-app")})

	prog, err := xmir.ParseString(testutil.AliasProgram)
	require.NoError(t, err)

	report, err := e.LintProgram(context.Background(), prog)
	require.NoError(t, err)
	assert.Equal(t, []string{"[no-app ERROR]:7 Objects must not be called app"}, texts(report.Defects))
}

func TestEngine_BrokenPatternsDirIsFatal(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "patterns/custom/no-motive.star", "def check(program, options):\n    return []\n")
	file := testutil.WriteFile(t, dir, "suite.xmir", testutil.TestsProgram)

	e := newTestEngine(t, Config{PatternsDir: dir})

	reports, err := e.Lint(context.Background(), []string{file})
	require.ErrorIs(t, err, core.ErrConfiguration)
	assert.Nil(t, reports)

	_, err = e.Rules(context.Background())
	require.ErrorIs(t, err, core.ErrConfiguration)
}

func TestEngine_ScriptStepLimit(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteFile(t, dir, "patterns/custom/spin.star", `def check(program, options):
    n = 0
    while True:
        n += 1
`)
	testutil.WriteFile(t, dir, "motives/custom/spin.md", "# Spin\n\nNever ends.\n")

	e := newTestEngine(t, Config{PatternsDir: dir, MaxSteps: 10_000})

	prog, err := xmir.ParseString(testutil.CleanProgram)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	report, err := e.LintProgram(ctx, prog)
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "spin", report.Failures[0].Rule)
	require.ErrorIs(t, report.Failures[0].Err, core.ErrCollaborator)
	assert.Empty(t, report.Defects)
}
