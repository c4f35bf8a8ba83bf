package cleanup

import (
	"slices"
	"sync"
)

// SettingPrefix prefixes the settings key that enables or disables a rule.
const SettingPrefix = "cleanup."

// SettingKey returns the settings key for rule id (e.g., "cleanup.js.var-to-let").
func SettingKey(id string) string {
	return SettingPrefix + id
}

// Factory builds a rule from a flat settings map. It returns nil when the
// settings disable the rule.
type Factory func(settings Options) Rule

// EnabledBy returns a Factory that yields rule unless settings turn it off.
// enabledByDefault applies when the setting is absent.
func EnabledBy(rule Rule, enabledByDefault bool) Factory {
	return func(settings Options) Rule {
		if !settings.Bool(SettingKey(rule.ID()), enabledByDefault) {
			return nil
		}
		return rule
	}
}

type entry struct {
	rule    Rule
	factory Factory
}

// Registry holds all registered clean up rules in registration order.
// Registration order is rule priority on conflict.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]entry
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]entry),
	}
}

// Register adds a rule to the registry. The rule is the prototype used for
// listings; factory builds the instance for a run. A nil factory enables
// the rule by default.
// If a rule with the same ID already exists, it is replaced in place.
func (r *Registry) Register(rule Rule, factory Factory) {
	if factory == nil {
		factory = EnabledBy(rule, true)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[rule.ID()]; !ok {
		r.order = append(r.order, rule.ID())
	}
	r.byID[rule.ID()] = entry{rule: rule, factory: factory}
}

// Get retrieves a rule prototype by ID.
func (r *Registry) Get(id string) (Rule, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.byID[id]
	return e.rule, ok
}

// Rules returns all registered rule prototypes in registration order.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		result = append(result, r.byID[id].rule)
	}
	return result
}

// IDs returns all registered rule IDs in registration order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Build constructs the ordered rule list for a run from settings.
func (r *Registry) Build(settings Options) []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]Rule, 0, len(r.order))
	for _, id := range r.order {
		if rule := r.byID[id].factory(settings); rule != nil {
			result = append(result, rule)
		}
	}
	return result
}

// DefaultRegistry is the global registry for built-in rules.
//
//nolint:gochecknoglobals // Global registry is intentional for rule registration
var DefaultRegistry = NewRegistry()
