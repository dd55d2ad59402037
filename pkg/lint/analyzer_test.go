package lint_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/xmirlint/internal/testutil"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

func newAnalyzer(t *testing.T, cfg *lint.Config, rules ...lint.Rule) *lint.Analyzer {
	t.Helper()
	catalog := lint.NewCatalog(lint.Sources(lint.Static(rules...)))
	return lint.NewAnalyzer(catalog, lint.AnalyzerOptions{
		Config:  cfg,
		Version: "1.2.3",
		Logger:  testutil.NewTestLogger(t),
	})
}

func TestAnalyzer_MergesByRuleName(t *testing.T) {
	a := newAnalyzer(t, nil,
		objectRule("zeta", core.SeverityInfo),
		objectRule("alpha", core.SeverityError),
	)

	report, err := a.Analyze(context.Background(), parse(t, program))
	require.NoError(t, err)

	want := []string{
		"[alpha ERROR]:2 object first",
		"[alpha ERROR]:5 object second",
		"[zeta INFO]:2 object first",
		"[zeta INFO]:5 object second",
	}
	got := make([]string, len(report.Defects))
	for i, d := range report.Defects {
		got[i] = d.String()
		assert.Equal(t, "1.2.3", d.Version)
	}
	assert.Equal(t, want, got)
	assert.Equal(t, "app", report.Program)
	assert.Equal(t, "1.2.3", report.Version)
	assert.False(t, report.Clean())
	assert.False(t, report.Failed())
	assert.NoError(t, report.Err())
}

func TestAnalyzer_PartialFailureIsolation(t *testing.T) {
	failing := ruleFunc("broken", func(context.Context, *xmir.Program, map[string]any) ([]core.Defect, error) {
		return nil, errors.New("transform engine crashed")
	})
	panicking := ruleFunc("panicky", func(context.Context, *xmir.Program, map[string]any) ([]core.Defect, error) {
		panic("index out of range")
	})
	invalid := ruleFunc("sloppy", func(context.Context, *xmir.Program, map[string]any) ([]core.Defect, error) {
		return []core.Defect{core.NewDefect("sloppy", core.SeverityInfo, 1, "")}, nil
	})

	a := newAnalyzer(t, nil, failing, objectRule("healthy", core.SeverityWarning), panicking, invalid)
	report, err := a.Analyze(context.Background(), parse(t, program))
	require.NoError(t, err)

	require.Len(t, report.Defects, 2)
	for _, d := range report.Defects {
		assert.Equal(t, "healthy", d.Rule)
	}

	require.Len(t, report.Failures, 3)
	assert.Equal(t, "broken", report.Failures[0].Rule)
	assert.Equal(t, "panicky", report.Failures[1].Rule)
	assert.ErrorIs(t, report.Failures[1], core.ErrCollaborator)
	assert.Contains(t, report.Failures[1].Error(), "index out of range")
	assert.Equal(t, "sloppy", report.Failures[2].Rule)

	assert.True(t, report.Failed())
	assert.False(t, report.Clean())
	assert.ErrorContains(t, report.Err(), "transform engine crashed")
}

func TestAnalyzer_UnknownSeverityIsFailure(t *testing.T) {
	odd := ruleFunc("odd", func(context.Context, *xmir.Program, map[string]any) ([]core.Defect, error) {
		return []core.Defect{core.NewDefect("odd", core.Severity(7), 2, "strange")}, nil
	})

	a := newAnalyzer(t, nil, odd, objectRule("healthy", core.SeverityInfo))
	report, err := a.Analyze(context.Background(), parse(t, program))
	require.NoError(t, err)

	assert.Len(t, report.Defects, 2)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, "odd", report.Failures[0].Rule)
	assert.ErrorContains(t, report.Failures[0], "severity 7 is unknown")
}

func TestAnalyzer_Idempotent(t *testing.T) {
	a := newAnalyzer(t, nil, objectRule("a", core.SeverityInfo), objectRule("b", core.SeverityError))
	prog := parse(t, program)

	first, err := a.Analyze(context.Background(), prog)
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), prog)
	require.NoError(t, err)

	assert.Equal(t, first.Defects, second.Defects)
}

func TestAnalyzer_Config(t *testing.T) {
	var gotOpts map[string]any
	withOpts := ruleFunc("opts", func(_ context.Context, _ *xmir.Program, opts map[string]any) ([]core.Defect, error) {
		gotOpts = opts
		return nil, nil
	})

	cfg := lint.NewConfig().
		Disable("quiet").
		SetSeverity("loud", core.SeverityCritical).
		SetRuleOptions("opts", map[string]any{"max_parts": 3})

	a := newAnalyzer(t, cfg,
		objectRule("quiet", core.SeverityInfo),
		objectRule("loud", core.SeverityInfo),
		withOpts,
	)
	report, err := a.Analyze(context.Background(), parse(t, program))
	require.NoError(t, err)

	require.Len(t, report.Defects, 2)
	for _, d := range report.Defects {
		assert.Equal(t, "loud", d.Rule)
		assert.Equal(t, core.SeverityCritical, d.Severity)
	}
	assert.Equal(t, map[string]any{"max_parts": 3}, gotOpts)
	assert.Equal(t, 2, report.Count(core.SeverityError))
	assert.Empty(t, report.Filter(core.SeverityCritical+1).Defects)
}

func TestAnalyzer_CatalogErrorIsFatal(t *testing.T) {
	a := newAnalyzer(t, nil)
	report, err := a.Analyze(context.Background(), parse(t, program))
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrConfiguration)
	assert.Nil(t, report)
}

func TestAnalyzer_Cancelled(t *testing.T) {
	a := newAnalyzer(t, nil, objectRule("a", core.SeverityInfo))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Analyze(ctx, parse(t, program))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzer_CleanProgram(t *testing.T) {
	a := newAnalyzer(t, nil, objectRule("a", core.SeverityInfo))
	report, err := a.Analyze(context.Background(), parse(t, `<program name="empty"/>`))
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.NotNil(t, report.Defects)
	assert.Equal(t, 0, report.Count(core.SeverityInfo))
}

func TestAnalyzer_AnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		return path
	}
	paths := []string{
		write("one.xmir", `<program name="one"><objects><o name="x" line="1" pos="0"/></objects></program>`),
		write("broken.xmir", `<program><objects>`),
		write("two.xmir", program),
	}

	a := newAnalyzer(t, nil, objectRule("a", core.SeverityInfo))
	results, err := a.AnalyzeFiles(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, paths[0], results[0].Path)
	require.NotNil(t, results[0].Report)
	assert.Len(t, results[0].Report.Defects, 1)

	assert.Equal(t, paths[1], results[1].Path)
	assert.Error(t, results[1].Err)
	assert.Nil(t, results[1].Report)

	assert.Equal(t, paths[2], results[2].Path)
	require.NotNil(t, results[2].Report)
	assert.Equal(t, "app", results[2].Report.Program)
	assert.Len(t, results[2].Report.Defects, 2)
}

func TestAnalyzer_AnalyzeFilesMalformedMeta(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meta.xmir")
	require.NoError(t, os.WriteFile(path,
		[]byte(`<program><metas><meta line="1"><tail>x</tail></meta></metas></program>`), 0o600))

	a := newAnalyzer(t, nil, objectRule("a", core.SeverityInfo))
	results, err := a.AnalyzeFiles(context.Background(), []string{path})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.ErrorContains(t, results[0].Err, "has no <head>")
	assert.Nil(t, results[0].Report)
}

func TestAnalyzer_AnalyzeFilesCatalogError(t *testing.T) {
	a := newAnalyzer(t, nil)
	_, err := a.AnalyzeFiles(context.Background(), []string{"missing.xmir"})
	assert.ErrorIs(t, err, core.ErrEmptyCatalog)
}
