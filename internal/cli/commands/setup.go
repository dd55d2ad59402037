// Package commands implements the xmirlint subcommands.
package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xmirlint/internal/cli/config"
	"github.com/leapstack-labs/xmirlint/internal/cli/output"
	"github.com/leapstack-labs/xmirlint/internal/engine"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
)

// Version is stamped on defects and runs; set by the root command.
var Version = "dev"

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Engine   *engine.Engine
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with engine and renderer.
// lintCfg selects rules; nil runs everything.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command, lintCfg *lint.Config) (*CommandContext, func(), error) {
	cfg, err := getConfig(cmd)
	if err != nil {
		return nil, nil, err
	}
	logger := config.GetLogger(cmd.Context())

	eng, err := createEngine(cfg, lintCfg, logger)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		_ = eng.Close()
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Engine:   eng,
		Renderer: newRenderer(cmd, cfg.Output),
	}, cleanup, nil
}

// getConfig returns the configuration loaded by the root command, or loads
// it from defaults, environment and the command's flags.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if cfg := config.FromContext(cmd.Context()); cfg != nil {
		return cfg, nil
	}
	return config.Load("", cmd.Flags())
}

// newRenderer creates a renderer; a non-empty format overrides the
// configured output mode.
func newRenderer(cmd *cobra.Command, format string) *output.Renderer {
	return output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(format))
}

func createEngine(cfg *config.Config, lintCfg *lint.Config, logger *slog.Logger) (*engine.Engine, error) {
	// Ensure state directory exists
	if cfg.StatePath != "" {
		stateDir := filepath.Dir(cfg.StatePath)
		if stateDir != "." && stateDir != "" {
			if err := os.MkdirAll(stateDir, 0o750); err != nil {
				return nil, fmt.Errorf("failed to create state directory: %w", err)
			}
		}
	}

	return engine.New(engine.Config{
		Version:     Version,
		StatePath:   cfg.StatePath,
		PatternsDir: cfg.PatternsDir,
		Lint:        lintCfg,
		Tagger: engine.TaggerConfig{
			Kind:    cfg.Tagger.Kind,
			URL:     cfg.Tagger.URL,
			Timeout: cfg.Tagger.Timeout,
			Lexicon: cfg.Tagger.Lexicon,
		},
		Concurrency: cfg.Concurrency,
		MaxSteps:    cfg.MaxSteps,
		Logger:      logger,
	})
}

// buildLintConfig applies the project configuration, then the CLI overrides.
// Every failure wraps core.ErrConfiguration.
func buildLintConfig(cfg *config.Config, disable, only []string) (*lint.Config, error) {
	lintCfg := lint.NewConfig()

	// Apply project config first (lower precedence)
	if cfg != nil {
		for _, name := range cfg.Lint.Disabled {
			lintCfg.Disable(strings.TrimSpace(name))
		}
		for name, sev := range cfg.Lint.Severity {
			s, ok := core.ParseSeverity(sev)
			if !ok {
				return nil, core.NewConfigError(name, fmt.Errorf("unknown severity %q", sev))
			}
			lintCfg.SetSeverity(name, s)
		}
		for name, opts := range cfg.Lint.Rules {
			lintCfg.SetRuleOptions(name, opts)
		}
	}

	// Apply CLI overrides (higher precedence)
	for _, name := range disable {
		lintCfg.Disable(strings.TrimSpace(name))
	}
	// If --rule specified, disable all others
	for _, name := range only {
		lintCfg.Only(strings.TrimSpace(name))
	}

	return lintCfg, nil
}

// ruleNames returns every rule name the lint configuration mentions.
func ruleNames(lintCfg *lint.Config) []string {
	var names []string
	for name := range lintCfg.DisabledRules {
		names = append(names, name)
	}
	for name := range lintCfg.OnlyRules {
		names = append(names, name)
	}
	for name := range lintCfg.SeverityOverrides {
		names = append(names, name)
	}
	for name := range lintCfg.RuleOptions {
		names = append(names, name)
	}
	return names
}

// checkRuleNames fails when the configuration names a rule the catalog
// does not have.
func checkRuleNames(cmd *cobra.Command, eng *engine.Engine, lintCfg *lint.Config) error {
	if _, err := eng.Rules(cmd.Context()); err != nil {
		return err
	}
	names := ruleNames(lintCfg)
	slices.Sort(names)
	for _, name := range names {
		if _, err := eng.Rule(cmd.Context(), name); err != nil {
			return core.NewConfigError(name, err)
		}
	}
	return nil
}

// AddGlobalFlags registers the persistent flags shared by every command.
func AddGlobalFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./xmirlint.yaml)")
	pf.String("state", "", "Path to the run history database (empty disables history)")
	pf.String("patterns", "", "Directory of additional pattern rules")
	pf.String("tagger", "", "Part-of-speech tagger: lexicon, http")
	pf.String("tagger-url", "", "Endpoint of the http tagger")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|markdown|json)")

	_ = cmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "markdown", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = cmd.RegisterFlagCompletionFunc("tagger", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{engine.TaggerLexicon, engine.TaggerHTTP}, cobra.ShellCompDirectiveNoFileComp
	})
}
