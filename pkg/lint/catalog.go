package lint

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leapstack-labs/xmirlint/pkg/core"
)

// ErrRuleNotFound is returned by Catalog.Rule for unknown names.
var ErrRuleNotFound = errors.New("rule not found")

// Source produces rules for a catalog.
type Source func(ctx context.Context) ([]Rule, error)

// BuildFunc produces the complete rule set of a catalog.
type BuildFunc func(ctx context.Context) ([]Rule, error)

// Sources concatenates rule sources in order. The first failing source
// aborts the build.
func Sources(sources ...Source) BuildFunc {
	return func(ctx context.Context) ([]Rule, error) {
		var all []Rule
		for _, src := range sources {
			rules, err := src(ctx)
			if err != nil {
				return nil, err
			}
			all = append(all, rules...)
		}
		return all, nil
	}
}

// Static is a source returning the given rules.
func Static(rules ...Rule) Source {
	return func(context.Context) ([]Rule, error) {
		return rules, nil
	}
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the logger used for build diagnostics.
func WithCatalogLogger(l *slog.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// Catalog is the lazily built, de-duplicated set of rules shared by every
// analysis in the process.
//
// The first call to Rules or Rule builds the catalog; concurrent first
// callers wait for that single build and share its result. A successful
// build is cached for the lifetime of the Catalog. A failed build is NOT
// cached: all callers waiting on it get the same error, and the next call
// starts a new build.
type Catalog struct {
	build  BuildFunc
	logger *slog.Logger
	flight singleflight.Group
	builds atomic.Int64

	mu     sync.RWMutex
	rules  []Rule
	byName map[string]Rule
}

// NewCatalog creates a catalog that builds its rules with build on first use.
func NewCatalog(build BuildFunc, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		build:  build,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Rules returns every rule sorted by name. The returned slice may be
// modified by the caller; the rules themselves are shared.
func (c *Catalog) Rules(ctx context.Context) ([]Rule, error) {
	if rules := c.cached(); rules != nil {
		return slices.Clone(rules), nil
	}

	ch := c.flight.DoChan("catalog", func() (any, error) {
		if rules := c.cached(); rules != nil {
			return rules, nil
		}
		// The build is shared, so one caller's cancellation must not fail it.
		return c.load(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Rule)), nil
	}
}

// Rule returns one rule by name.
func (c *Catalog) Rule(ctx context.Context, name string) (Rule, error) {
	if _, err := c.Rules(ctx); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	rule, ok := c.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRuleNotFound, name)
	}
	return rule, nil
}

// Builds returns how many times the build function has run.
func (c *Catalog) Builds() int {
	return int(c.builds.Load())
}

func (c *Catalog) cached() []Rule {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules
}

func (c *Catalog) load(ctx context.Context) ([]Rule, error) {
	c.builds.Add(1)
	start := time.Now()

	if c.build == nil {
		return nil, core.ErrEmptyCatalog
	}
	rules, err := c.build(ctx)
	if err != nil {
		c.logger.Debug("catalog build failed", slog.String("error", err.Error()))
		if errors.Is(err, core.ErrConfiguration) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrConfiguration, err)
	}

	byName, err := validateRules(rules)
	if err != nil {
		c.logger.Debug("catalog build failed", slog.String("error", err.Error()))
		return nil, err
	}

	sorted := slices.Clone(rules)
	slices.SortFunc(sorted, func(a, b Rule) int { return strings.Compare(a.Name(), b.Name()) })

	c.mu.Lock()
	c.rules = sorted
	c.byName = byName
	c.mu.Unlock()

	c.logger.Debug("catalog built",
		slog.Int("rules", len(sorted)),
		slog.Duration("elapsed", time.Since(start)))
	return sorted, nil
}

// validateRules checks the catalog invariants: at least one rule, unique
// non-empty names and a non-empty motive for every rule.
func validateRules(rules []Rule) (map[string]Rule, error) {
	if len(rules) == 0 {
		return nil, core.ErrEmptyCatalog
	}
	byName := make(map[string]Rule, len(rules))
	for _, rule := range rules {
		if rule == nil {
			return nil, fmt.Errorf("%w: nil rule in catalog", core.ErrConfiguration)
		}
		name := rule.Name()
		if name == "" {
			return nil, core.NewConfigError(name, errors.New("rule has no name"))
		}
		if _, dup := byName[name]; dup {
			return nil, core.NewConfigError(name, errors.New("duplicate rule name"))
		}
		motive, err := rule.Motive()
		if err != nil {
			return nil, core.NewConfigError(name, err)
		}
		if strings.TrimSpace(motive) == "" {
			return nil, core.NewConfigError(name, errNoMotive)
		}
		byName[name] = rule
	}
	return byName, nil
}
