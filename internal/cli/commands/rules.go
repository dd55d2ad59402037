package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmirlint/internal/cli/output"
	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// RulesOptions holds options for the rules command.
type RulesOptions struct {
	Group  string // Filter by group
	Type   string // Filter by type: pattern, procedural
	Format string // Output format
}

// NewRulesCommand creates the rules command.
func NewRulesCommand() *cobra.Command {
	opts := &RulesOptions{}
	cmd := &cobra.Command{
		Use:   "rules [rule-name]",
		Short: "List available lint rules",
		Long: `List every rule of the catalog, or show one rule with its motive.

Rules are organized by type (pattern or procedural) and group
(e.g. critical, metas, comments). Pattern rules from --patterns are
listed alongside the built-in ones.`,
		Example: `  # List all rules
  xmirlint rules

  # Show the motive of a rule
  xmirlint rules alias-too-long

  # List rules in the metas group
  xmirlint rules --group metas

  # Output as JSON
  xmirlint rules --format json`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: ruleNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return showRule(cmd, args[0], opts)
			}
			return listRules(cmd, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Group, "group", "g", "", "Filter by group")
	cmd.Flags().StringVar(&opts.Type, "type", "", "Filter by type: pattern, procedural")
	cmd.Flags().StringVarP(&opts.Format, "format", "f", "", "Output format: text, markdown, json")

	return cmd
}

func listRules(cmd *cobra.Command, opts *RulesOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = newRenderer(cmd, opts.Format)
	}

	rules, err := cmdCtx.Engine.Rules(cmd.Context())
	if err != nil {
		return err
	}
	rules = filterRulesByOptions(rules, opts)

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rules)
	}

	r.Header("Lint Rules")
	rows := make([][]string, len(rules))
	for i, ri := range rules {
		rows[i] = []string{
			ri.Name,
			ri.Group,
			ri.Type,
			ri.DefaultSeverity.String(),
			strings.Join(ri.ConfigKeys, ", "),
		}
	}
	r.Table([]string{"Name", "Group", "Type", "Severity", "Options"}, rows)
	r.Printf("%d rules\n", len(rules))
	return nil
}

func filterRulesByOptions(rules []core.RuleInfo, opts *RulesOptions) []core.RuleInfo {
	if opts.Group == "" && opts.Type == "" {
		return rules
	}

	filtered := make([]core.RuleInfo, 0, len(rules))
	for _, r := range rules {
		if opts.Group != "" && r.Group != opts.Group {
			continue
		}
		if opts.Type != "" && r.Type != opts.Type {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

func showRule(cmd *cobra.Command, name string, opts *RulesOptions) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return err
	}
	defer cleanup()

	r := cmdCtx.Renderer
	if opts.Format != "" {
		r = newRenderer(cmd, opts.Format)
	}

	rule, err := cmdCtx.Engine.Rule(cmd.Context(), name)
	if err != nil {
		return err
	}

	if r.EffectiveMode() == output.ModeJSON {
		return r.JSON(rule)
	}

	st := r.Styles()
	r.Header(rule.Name)
	r.Printf("%s %s\n", st.Muted.Render("Group:   "), rule.Group)
	r.Printf("%s %s\n", st.Muted.Render("Type:    "), rule.Type)
	r.Printf("%s %s\n", st.Muted.Render("Severity:"), st.Severity(rule.DefaultSeverity).Render(rule.DefaultSeverity.String()))
	if len(rule.ConfigKeys) > 0 {
		r.Printf("%s %s\n", st.Muted.Render("Options: "), strings.Join(rule.ConfigKeys, ", "))
	}
	r.Println()
	r.Println(strings.TrimSpace(rule.Motive))
	return nil
}

// ruleNamesCompletion completes rule names from the catalog.
func ruleNamesCompletion(cmd *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	cmdCtx, cleanup, err := NewCommandContext(cmd, nil)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer cleanup()

	rules, err := cmdCtx.Engine.Rules(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	var names []string
	for _, ri := range rules {
		if strings.HasPrefix(ri.Name, toComplete) {
			names = append(names, fmt.Sprintf("%s\t%s", ri.Name, ri.Group))
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
