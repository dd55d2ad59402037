package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

// Lint discovers XMIR files under paths and analyzes them concurrently.
// Reports keep discovery order. When history is enabled every file is
// recorded as a run; recording failures are logged, not returned.
func (e *Engine) Lint(ctx context.Context, paths []string) ([]lint.FileReport, error) {
	files, err := Discover(paths)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("linting", slog.Int("files", len(files)))

	reports, err := e.analyzer.AnalyzeFiles(ctx, files)
	if err != nil {
		return nil, err
	}
	for _, fr := range reports {
		e.record(fr.Path, fr.Report, fr.Err)
	}
	return reports, nil
}

// LintProgram analyzes one already parsed program.
func (e *Engine) LintProgram(ctx context.Context, prog *xmir.Program) (*lint.Report, error) {
	report, err := e.analyzer.Analyze(ctx, prog)
	if err != nil {
		return nil, err
	}
	e.record(prog.Name(), report, nil)
	return report, nil
}

// record stores one run. parseErr marks files that could not be analyzed.
func (e *Engine) record(program string, report *lint.Report, parseErr error) {
	if e.store == nil {
		return
	}
	if err := e.saveRun(program, report, parseErr); err != nil {
		e.logger.Warn("failed to record run",
			slog.String("program", program),
			slog.String("error", err.Error()))
	}
}

func (e *Engine) saveRun(program string, report *lint.Report, parseErr error) error {
	run, err := e.store.CreateRun(program, e.version)
	if err != nil {
		return err
	}

	status, msg := core.RunStatusClean, ""
	switch {
	case parseErr != nil:
		status, msg = core.RunStatusFailed, parseErr.Error()
	case report.Failed():
		status, msg = core.RunStatusFailed, report.Err().Error()
	case len(report.Defects) > 0:
		status = core.RunStatusDefects
	}

	if report != nil {
		if err := e.store.SaveDefects(run.ID, report.Defects); err != nil {
			return err
		}
	}
	return e.store.CompleteRun(run.ID, status, msg)
}

// History returns the most recent runs, newest first.
func (e *Engine) History(limit int) ([]*core.Run, error) {
	if e.store == nil {
		return nil, ErrNoHistory
	}
	return e.store.ListRuns(limit)
}

// RunDefects returns the defects recorded for a run.
func (e *Engine) RunDefects(id string) (*core.Run, []core.Defect, error) {
	if e.store == nil {
		return nil, nil, ErrNoHistory
	}
	run, err := e.store.GetRun(id)
	if err != nil {
		return nil, nil, err
	}
	defects, err := e.store.GetDefects(id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load defects of run %s: %w", id, err)
	}
	return run, defects, nil
}
