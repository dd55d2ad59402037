// Package engine assembles the lint pipeline: rule catalog, collaborators,
// analyzer and optional run history.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/leapstack-labs/xmirlint/internal/resources"
	"github.com/leapstack-labs/xmirlint/internal/starlark"
	"github.com/leapstack-labs/xmirlint/internal/state"
	"github.com/leapstack-labs/xmirlint/pkg/core"
	"github.com/leapstack-labs/xmirlint/pkg/lint"
	"github.com/leapstack-labs/xmirlint/pkg/lint/pattern"
	"github.com/leapstack-labs/xmirlint/pkg/lint/rules/misc"
	"github.com/leapstack-labs/xmirlint/pkg/postag"

	// Register procedural rules
	_ "github.com/leapstack-labs/xmirlint/pkg/lint/rules"
)

// ErrNoHistory is returned by history queries when no state store is configured.
var ErrNoHistory = errors.New("run history is not enabled")

// Config holds engine configuration.
type Config struct {
	// Version is attached to every defect and run
	Version string
	// StatePath is the SQLite run history database; empty disables history
	StatePath string
	// PatternsDir holds additional pattern rules laid out as
	// patterns/<group>/<name>.star and motives/<group>/<name>.md (optional)
	PatternsDir string
	// Lint selects rules, severities and rule options
	Lint *lint.Config
	// Tagger configures the part-of-speech tagger
	Tagger TaggerConfig
	// Concurrency bounds multi-file analysis; zero means GOMAXPROCS
	Concurrency int
	// MaxSteps bounds every pattern script call; zero keeps the runtime default
	MaxSteps uint64
	// Logger is the structured logger (optional, uses discard if nil)
	Logger *slog.Logger
}

// Engine owns one shared catalog and analyzer.
type Engine struct {
	logger   *slog.Logger
	version  string
	catalog  *lint.Catalog
	analyzer *lint.Analyzer
	store    core.Store
}

// New creates an engine. The catalog is built lazily on first use, so
// configuration errors in rule resources surface from Lint or Rules.
func New(cfg Config) (*Engine, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	logger.Debug("initializing engine",
		slog.String("version", cfg.Version),
		slog.String("tagger", cfg.Tagger.Kind),
		slog.String("state_path", cfg.StatePath))

	tagger, err := NewTagger(cfg.Tagger, logger)
	if err != nil {
		return nil, err
	}

	catalog := NewCatalog(CatalogConfig{
		Tagger:      tagger,
		PatternsDir: cfg.PatternsDir,
		MaxSteps:    cfg.MaxSteps,
		Logger:      logger,
	})

	e := &Engine{
		logger:  logger,
		version: cfg.Version,
		catalog: catalog,
		analyzer: lint.NewAnalyzer(catalog, lint.AnalyzerOptions{
			Config:      cfg.Lint,
			Version:     cfg.Version,
			Logger:      logger,
			Concurrency: cfg.Concurrency,
		}),
	}

	if cfg.StatePath != "" {
		store := state.NewSQLiteStore(logger)
		if err := store.Open(cfg.StatePath); err != nil {
			return nil, fmt.Errorf("failed to open state store: %w", err)
		}
		if err := store.Migrate(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("failed to initialize state schema: %w", err)
		}
		e.store = store
	}

	return e, nil
}

// CatalogConfig configures NewCatalog.
type CatalogConfig struct {
	Tagger      postag.Tagger
	PatternsDir string
	MaxSteps    uint64
	Logger      *slog.Logger
}

// NewCatalog builds the default catalog: embedded pattern rules, registered
// procedural rules, the verb rule bound to cfg.Tagger and, when set, the
// pattern rules of cfg.PatternsDir.
func NewCatalog(cfg CatalogConfig) *lint.Catalog {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	opts := []starlark.Option{starlark.WithLogger(logger)}
	if cfg.MaxSteps > 0 {
		opts = append(opts, starlark.WithMaxSteps(cfg.MaxSteps))
	}
	rt := starlark.NewRuntime(opts...)

	sources := []lint.Source{
		pattern.Source(resources.FS(), rt),
		lint.RegisteredRules,
		lint.Static(misc.NewVerbInSingular(cfg.Tagger)),
	}
	if cfg.PatternsDir != "" {
		sources = append(sources, pattern.Source(os.DirFS(cfg.PatternsDir), rt))
	}

	return lint.NewCatalog(lint.Sources(sources...), lint.WithCatalogLogger(logger))
}

// Catalog returns the shared rule catalog.
func (e *Engine) Catalog() *lint.Catalog {
	return e.catalog
}

// Analyzer returns the shared analyzer.
func (e *Engine) Analyzer() *lint.Analyzer {
	return e.analyzer
}

// Version returns the version stamped on defects.
func (e *Engine) Version() string {
	return e.version
}

// Rules returns documentation for every rule, sorted by name.
func (e *Engine) Rules(ctx context.Context) ([]core.RuleInfo, error) {
	rules, err := e.catalog.Rules(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]core.RuleInfo, len(rules))
	for i, r := range rules {
		infos[i] = lint.GetRuleInfo(r)
	}
	return infos, nil
}

// Rule returns documentation for one rule.
func (e *Engine) Rule(ctx context.Context, name string) (core.RuleInfo, error) {
	r, err := e.catalog.Rule(ctx, name)
	if err != nil {
		return core.RuleInfo{}, err
	}
	return lint.GetRuleInfo(r), nil
}

// Close releases all resources.
func (e *Engine) Close() error {
	e.logger.Debug("closing engine")
	if e.store != nil {
		return e.store.Close()
	}
	return nil
}
