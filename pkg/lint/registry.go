package lint

import (
	"context"
	"slices"
	"strings"
	"sync"
)

// globalRegistry holds procedural rules registered from init() functions.
var globalRegistry = NewRegistry()

// Registry stores procedural rules for discovery.
// Rules sharing a name are all kept; the catalog rejects the clash.
type Registry struct {
	mu    sync.RWMutex
	rules []Rule // in registration order
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a rule.
func (r *Registry) Register(rule Rule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

// All returns the registered rules sorted by name. Rules sharing a name
// keep their registration order.
func (r *Registry) All() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rules := slices.Clone(r.rules)
	slices.SortStableFunc(rules, func(a, b Rule) int { return strings.Compare(a.Name(), b.Name()) })
	return rules
}

// Get returns the first rule registered under name.
func (r *Registry) Get(name string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.Name() == name {
			return rule, true
		}
	}
	return nil, false
}

// ByGroup returns the rules of one group sorted by name.
func (r *Registry) ByGroup(group string) []Rule {
	var rules []Rule
	for _, rule := range r.All() {
		if rule.Group() == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registrations.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// Source exposes the registry contents as a catalog source.
func (r *Registry) Source() Source {
	return func(context.Context) ([]Rule, error) {
		return r.All(), nil
	}
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule Rule) {
	globalRegistry.Register(rule)
}

// GetAll returns all globally registered rules.
func GetAll() []Rule {
	return globalRegistry.All()
}

// GetByName returns a globally registered rule by name.
func GetByName(name string) (Rule, bool) {
	return globalRegistry.Get(name)
}

// RegisteredRules is a catalog source over the global registry.
func RegisteredRules(ctx context.Context) ([]Rule, error) {
	return globalRegistry.Source()(ctx)
}
