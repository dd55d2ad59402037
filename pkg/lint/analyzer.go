package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/xmir"
)

var errNilProgram = errors.New("nil program")

// AnalyzerOptions configures an Analyzer.
type AnalyzerOptions struct {
	// Config selects rules and overrides severities; nil runs everything
	Config *Config

	// Version is attached to every defect
	Version string

	// Logger receives rule failures and timings; nil discards
	Logger *slog.Logger

	// Concurrency bounds AnalyzeFiles; zero means GOMAXPROCS
	Concurrency int
}

// Analyzer runs every rule of a catalog against programs.
// It is safe for concurrent use.
type Analyzer struct {
	catalog     *Catalog
	config      *Config
	version     string
	logger      *slog.Logger
	concurrency int
}

// NewAnalyzer creates an analyzer over a shared catalog.
func NewAnalyzer(catalog *Catalog, opts AnalyzerOptions) *Analyzer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.GOMAXPROCS(0)
	}
	return &Analyzer{
		catalog:     catalog,
		config:      opts.Config,
		version:     opts.Version,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Analyze runs the catalog against one program.
//
// The returned error is non-nil only when no trustworthy report can be
// produced: the catalog failed to build or ctx was cancelled. Individual
// rule errors and panics are recorded in Report.Failures.
func (a *Analyzer) Analyze(ctx context.Context, prog *xmir.Program) (*Report, error) {
	if prog == nil {
		return nil, errNilProgram
	}
	rules, err := a.catalog.Rules(ctx)
	if err != nil {
		return nil, err
	}

	report := &Report{
		Program: prog.Name(),
		Version: a.version,
		Defects: []core.Defect{},
	}

	for _, rule := range rules {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		name := rule.Name()
		if a.config.IsDisabled(name) {
			continue
		}

		start := time.Now()
		defects, err := a.runRule(ctx, rule, prog)
		if err == nil {
			err = validateDefects(defects)
		}
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			a.logger.Warn("rule failed",
				slog.String("rule", name),
				slog.String("program", report.Program),
				slog.String("error", err.Error()))
			report.Failures = append(report.Failures, RuleFailure{Rule: name, Err: err})
			continue
		}

		a.logger.Debug("rule finished",
			slog.String("rule", name),
			slog.Int("defects", len(defects)),
			slog.Duration("elapsed", time.Since(start)))

		for _, d := range defects {
			d.Severity = a.config.GetSeverity(name, d.Severity)
			report.Defects = append(report.Defects, d.WithVersion(a.version))
		}
	}

	return report, nil
}

// runRule invokes one rule, turning a panic into an error.
func (a *Analyzer) runRule(ctx context.Context, rule Rule, prog *xmir.Program) (defects []core.Defect, err error) {
	defer func() {
		if r := recover(); r != nil {
			defects = nil
			err = fmt.Errorf("%w: panic: %v", core.ErrCollaborator, r)
		}
	}()
	if cr, ok := rule.(ConfigurableRule); ok {
		return cr.Check(ctx, prog, a.config.GetRuleOptions(rule.Name()))
	}
	return rule.Defects(ctx, prog)
}

func validateDefects(defects []core.Defect) error {
	for _, d := range defects {
		if err := d.Validate(); err != nil {
			return fmt.Errorf("invalid defect %s: %w", d, err)
		}
	}
	return nil
}

// FileReport is the outcome of analyzing one file.
// Err is set when the file could not be read or parsed.
type FileReport struct {
	Path   string  `json:"path"`
	Report *Report `json:"report,omitempty"`
	Err    error   `json:"-"`
}

// AnalyzeFiles parses and analyzes files concurrently against the shared
// catalog. Results keep the order of paths. Parse errors are reported per
// file; catalog errors and cancellation abort the whole call.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) ([]FileReport, error) {
	// Fail fast on a broken catalog before touching any file.
	if _, err := a.catalog.Rules(ctx); err != nil {
		return nil, err
	}

	results := make([]FileReport, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			prog, err := xmir.ParseFile(path)
			if err != nil {
				results[i].Err = err
				return nil
			}
			report, err := a.Analyze(gctx, prog)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			results[i].Report = report
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
