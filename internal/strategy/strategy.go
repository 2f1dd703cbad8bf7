// Package strategy defines the Strategy interface for trading strategies and
// provides a Registry for managing multiple strategy implementations.
package strategy

import (
	"sort"

	"simtrader/internal/domain"
)

// Strategy is the signal-generation contract every trading strategy
// satisfies. Implementations must be pure functions of the visible history:
// OnBar receives the bars up to and including the current one and may not
// retain or mutate the slice. The engine never exposes future bars, which
// structurally rules out look-ahead.
type Strategy interface {
	// Name returns the unique identifier for this strategy.
	Name() string

	// WarmupPeriod returns the number of bars required before the strategy
	// can emit a non-hold signal.
	WarmupPeriod() int

	// OnBar returns the trading signal for the latest bar in history. When
	// history is shorter than WarmupPeriod the strategy emits a hold signal
	// rather than an error.
	OnBar(history []domain.Bar) (domain.Signal, error)
}

// Registry holds a named collection of strategies for lookup and enumeration.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry creates an empty strategy Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// Register adds a strategy to the registry, keyed by its Name().
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. The second return value indicates
// whether the strategy was found.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// List returns a sorted slice of all registered strategy names.
func (r *Registry) List() []string {
	names := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
