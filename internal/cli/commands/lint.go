package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmirlint/internal/cli/output"
	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/internal/watch"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
)

var (
	// ErrDefectsFound is returned by lint when at least one defect is reported.
	ErrDefectsFound = errors.New("lint issues found")

	// ErrAnalysisFailed is returned by lint when a file or rule could not be analyzed.
	ErrAnalysisFailed = errors.New("analysis incomplete")
)

// LintOptions holds options for the lint command.
type LintOptions struct {
	Paths   []string // Files or directories
	Format  string   // Output format: text, markdown, json
	Disable []string // Rule names to disable
	Rules   []string // Run only specific rules
	Watch   bool     // Re-lint on change
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}
	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Find defects in XMIR programs",
		Long: `Analyze XMIR programs for defects.

Every rule of the catalog runs against every program: embedded pattern
rules, procedural rules and the part-of-speech rule for test objects.
Directories are searched recursively for *.xmir files.

Output adapts to environment:
  - Terminal: Styled output with colors
  - Piped/Scripted: Markdown format
  - JSON: Machine-readable format

Exit status is 0 when clean, 1 when defects are found and 2 on any error.`,
		Example: `  # Lint every program under the current directory
  xmirlint lint

  # Lint specific files
  xmirlint lint target/app.xmir target/test.xmir

  # Output as JSON
  xmirlint lint --format json

  # Disable specific rules
  xmirlint lint --disable ascii-only,comment-too-short

  # Only report errors and worse
  xmirlint lint --severity error

  # Re-lint on every change
  xmirlint lint --watch ./target`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.Paths = args
			if len(opts.Paths) == 0 {
				opts.Paths = []string{"."}
			}
			return runLint(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")
	cmd.Flags().StringSliceVar(&opts.Disable, "disable", nil, "Rule names to disable")
	cmd.Flags().String("severity", "info", "Minimum severity: info, warning, error, critical")
	cmd.Flags().StringSliceVar(&opts.Rules, "rule", nil, "Run only specific rules")
	cmd.Flags().BoolVarP(&opts.Watch, "watch", "w", false, "Re-lint changed files until interrupted")
	cmd.Flags().IntP("concurrency", "j", 0, "Files analyzed in parallel (default GOMAXPROCS)")

	_ = cmd.RegisterFlagCompletionFunc("severity", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"info", "warning", "error", "critical"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func runLint(cmd *cobra.Command, opts *LintOptions) error {
	cfg, err := getConfig(cmd)
	if err != nil {
		return err
	}
	lintCfg, err := buildLintConfig(cfg, opts.Disable, opts.Rules)
	if err != nil {
		return err
	}

	cmdCtx, cleanup, err := NewCommandContext(cmd, lintCfg)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	// Override renderer if format flag is set
	if opts.Format != "" {
		r = newRenderer(cmd, opts.Format)
	}

	// Configuration errors surface before any defect is printed.
	if err := checkRuleNames(cmd, cmdCtx.Engine, lintCfg); err != nil {
		return err
	}

	minimum := cmdCtx.Cfg.SeverityThreshold()
	reports, err := cmdCtx.Engine.Lint(cmd.Context(), opts.Paths)
	if err != nil {
		return err
	}
	result := renderLintResults(r, filterBySeverity(reports, minimum))

	if !opts.Watch {
		return result
	}

	w, err := watch.New(watch.Options{
		Roots:  opts.Paths,
		Exts:   []string{engine.Ext},
		Logger: cmdCtx.Logger,
	})
	if err != nil {
		return err
	}
	r.Println(r.Styles().Muted.Render("Watching for changes, press Ctrl+C to stop"))
	return w.Run(cmd.Context(), func(ctx context.Context, changed []string) {
		reports, err := cmdCtx.Engine.Lint(ctx, changed)
		if err != nil {
			r.Error(err.Error())
			return
		}
		_ = renderLintResults(r, filterBySeverity(reports, minimum))
	})
}

// filterBySeverity drops defects below minimum. Failed files are kept.
func filterBySeverity(reports []lint.FileReport, minimum core.Severity) []lint.FileReport {
	out := make([]lint.FileReport, len(reports))
	for i, fr := range reports {
		out[i] = fr
		if fr.Report != nil {
			out[i].Report = fr.Report.Filter(minimum)
		}
	}
	return out
}

// lintSummary counts the outcome of a lint run.
type lintSummary struct {
	Files      int            `json:"files"`
	Defects    int            `json:"defects"`
	BySeverity map[string]int `json:"by_severity,omitempty"`
	Failed     int            `json:"failed"`
}

type lintFileJSON struct {
	Path     string             `json:"path"`
	Defects  []core.Defect      `json:"defects"`
	Failures []lint.RuleFailure `json:"failures,omitempty"`
	Error    string             `json:"error,omitempty"`
}

type lintJSON struct {
	Summary lintSummary    `json:"summary"`
	Files   []lintFileJSON `json:"files"`
}

func summarize(reports []lint.FileReport) lintSummary {
	s := lintSummary{Files: len(reports), BySeverity: make(map[string]int)}
	for _, fr := range reports {
		if fr.Err != nil || fr.Report.Failed() {
			s.Failed++
		}
		if fr.Report == nil {
			continue
		}
		s.Defects += len(fr.Report.Defects)
		for _, d := range fr.Report.Defects {
			s.BySeverity[strings.ToLower(d.Severity.String())]++
		}
	}
	return s
}

// renderLintResults prints the reports and returns the error the command
// exits with: ErrAnalysisFailed, ErrDefectsFound or nil.
func renderLintResults(r *output.Renderer, reports []lint.FileReport) error {
	summary := summarize(reports)

	switch r.EffectiveMode() {
	case output.ModeJSON:
		out := lintJSON{Summary: summary, Files: make([]lintFileJSON, 0, len(reports))}
		for _, fr := range reports {
			f := lintFileJSON{Path: fr.Path, Defects: []core.Defect{}}
			if fr.Err != nil {
				f.Error = fr.Err.Error()
			}
			if fr.Report != nil {
				f.Defects = fr.Report.Defects
				f.Failures = fr.Report.Failures
			}
			out.Files = append(out.Files, f)
		}
		if err := r.JSON(out); err != nil {
			return err
		}
	case output.ModeMarkdown:
		renderLintMarkdown(r, reports, summary)
	default:
		renderLintText(r, reports, summary)
	}

	switch {
	case summary.Failed > 0:
		return fmt.Errorf("%w: %d of %d files", ErrAnalysisFailed, summary.Failed, summary.Files)
	case summary.Defects > 0:
		return ErrDefectsFound
	default:
		return nil
	}
}

func renderLintText(r *output.Renderer, reports []lint.FileReport, summary lintSummary) {
	st := r.Styles()
	for _, fr := range reports {
		if fr.Err == nil && fr.Report.Clean() {
			continue
		}
		r.Println(st.Path.Render(fr.Path))
		if fr.Err != nil {
			r.Printf("  %s\n", st.Error.Render(fr.Err.Error()))
		}
		if fr.Report != nil {
			for _, d := range fr.Report.Defects {
				r.Printf("  %s  %s  %s  %s\n",
					st.Muted.Render(fmt.Sprintf("%5d", d.Line)),
					st.Severity(d.Severity).Render(fmt.Sprintf("%-8s", d.Severity)),
					st.Bold.Render(d.Rule),
					d.Text,
				)
			}
			for _, f := range fr.Report.Failures {
				r.Printf("  %s\n", st.Error.Render(f.Error()))
			}
		}
		r.Println()
	}
	if summary.Defects == 0 && summary.Failed == 0 {
		r.Success(fmt.Sprintf("No defects found in %d files", summary.Files))
		return
	}
	r.Printf("Summary: %s\n", summaryLine(summary))
}

func renderLintMarkdown(r *output.Renderer, reports []lint.FileReport, summary lintSummary) {
	for _, fr := range reports {
		if fr.Err == nil && fr.Report.Clean() {
			continue
		}
		r.Printf("### %s\n\n", fr.Path)
		if fr.Err != nil {
			r.Printf("- error: %s\n", fr.Err)
		}
		if fr.Report != nil {
			for _, d := range fr.Report.Defects {
				r.Printf("- %s\n", d)
			}
			for _, f := range fr.Report.Failures {
				r.Printf("- error: %s\n", f.Error())
			}
		}
		r.Println()
	}
	if summary.Defects == 0 && summary.Failed == 0 {
		r.Success(fmt.Sprintf("No defects found in %d files", summary.Files))
		return
	}
	r.Printf("**Summary:** %s\n", summaryLine(summary))
}

func summaryLine(s lintSummary) string {
	parts := []string{fmt.Sprintf("%d defects", s.Defects)}
	for _, sev := range []core.Severity{core.SeverityCritical, core.SeverityError, core.SeverityWarning, core.SeverityInfo} {
		name := strings.ToLower(sev.String())
		if n := s.BySeverity[name]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, name))
		}
	}
	line := strings.Join(parts, ", ") + fmt.Sprintf(" in %d files", s.Files)
	if s.Failed > 0 {
		line += fmt.Sprintf(", %d could not be analyzed", s.Failed)
	}
	return line
}
