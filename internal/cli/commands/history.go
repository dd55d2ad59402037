package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmirlint/internal/cli/output"
	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// HistoryOptions holds options for the history command.
type HistoryOptions struct {
	Limit  int
	Format string
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand() *cobra.Command {
	opts := &HistoryOptions{}
	cmd := &cobra.Command{
		Use:   "history [run-id]",
		Short: "Show recorded lint runs",
		Long: `List recent lint runs recorded in the state database, or show the
defects of one run. History is recorded only when state_path (or --state)
is set.`,
		Example: `  # List the last 20 runs
  xmirlint history --state .xmirlint/state.db

  # Show the defects of one run
  xmirlint history 3f2c9a4e-...`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRun(cmd, args[0], opts)
			}
			return listRuns(cmd, opts)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func historyError(err error) error {
	if errors.Is(err, engine.ErrNoHistory) {
		return fmt.Errorf("%w: set state_path in xmirlint.yaml or pass --state", err)
	}
	return err
}

func listRuns(cmd *cobra.Command, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = newRenderer(cmd, opts.Format)
	}

	runs, err := cmdCtx.Engine.History(opts.Limit)
	if err != nil {
		return historyError(err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		if runs == nil {
			runs = []*core.Run{}
		}
		return r.JSON(runs)
	}
	if len(runs) == 0 {
		r.Println("No runs recorded")
		return nil
	}

	r.Header("Lint Runs")
	rows := make([][]string, len(runs))
	for i, run := range runs {
		rows[i] = []string{
			run.ID,
			run.Program,
			string(run.Status),
			strconv.Itoa(run.DefectCount),
			humanize.Time(run.StartedAt),
		}
	}
	r.Table([]string{"ID", "Program", "Status", "Defects", "Started"}, rows)
	return nil
}

type runJSON struct {
	Run     *core.Run     `json:"run"`
	Defects []core.Defect `json:"defects"`
}

func showRun(cmd *cobra.Command, id string, opts *HistoryOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = newRenderer(cmd, opts.Format)
	}

	run, defects, err := cmdCtx.Engine.RunDefects(id)
	if err != nil {
		return historyError(err)
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(runJSON{Run: run, Defects: defects})
	}

	st := r.Styles()
	r.Header(run.Program)
	r.Printf("%s %s\n", st.Muted.Render("Run:    "), run.ID)
	r.Printf("%s %s\n", st.Muted.Render("Status: "), run.Status)
	r.Printf("%s %s (%s)\n", st.Muted.Render("Started:"), run.StartedAt.Format("2006-01-02 15:04:05"), humanize.Time(run.StartedAt))
	if run.Version != "" {
		r.Printf("%s %s\n", st.Muted.Render("Version:"), run.Version)
	}
	if run.Error != "" {
		r.Printf("%s %s\n", st.Muted.Render("Error:  "), st.Error.Render(run.Error))
	}
	r.Println()

	if len(defects) == 0 {
		r.Println("No defects")
		return nil
	}
	rows := make([][]string, len(defects))
	for i, d := range defects {
		rows[i] = []string{strconv.Itoa(d.Line), d.Severity.String(), d.Rule, d.Text}
	}
	r.Table([]string{"Line", "Severity", "Rule", "Text"}, rows)
	return nil
}
