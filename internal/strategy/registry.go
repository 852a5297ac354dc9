package strategy

import (
	"fmt"
	"sort"
	"sync"

	"github.com/quantfall/stockbot/internal/domain"
)

// Registry manages a named collection of strategies that can be looked up
// at runtime. It is safe for concurrent use.
type Registry struct {
	strategies map[string]Strategy
	mu         sync.RWMutex
}

// NewRegistry returns an empty, ready-to-use Registry.
func NewRegistry() *Registry {
	return &Registry{
		strategies: make(map[string]Strategy),
	}
}

// NewDefaultRegistry returns a Registry with all built-in strategies
// registered.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(NewSMACrossover())
	r.Register(NewRSI())
	r.Register(NewMACD())
	r.Register(NewBollingerBands())
	return r
}

// Register adds a strategy to the registry under its name. If a strategy
// with the same name already exists it will be replaced.
func (r *Registry) Register(s Strategy) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.strategies[s.Name()] = s
}

// Get retrieves a strategy by name. It returns domain.ErrUnknownStrategy
// when the name is not registered.
func (r *Registry) Get(name string) (Strategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.strategies[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q: %w", name, domain.ErrUnknownStrategy)
	}
	return s, nil
}

// Has reports whether a strategy name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.strategies[name]
	return ok
}

// List returns the names of all registered strategies in sorted order.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ListInfo returns descriptions of all registered strategies, ordered by
// registry key.
func (r *Registry) ListInfo() []domain.StrategyInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.strategies))
	for n := range r.strategies {
		names = append(names, n)
	}
	sort.Strings(names)

	infos := make([]domain.StrategyInfo, 0, len(names))
	for _, n := range names {
		infos = append(infos, r.strategies[n].Info())
	}
	return infos
}
