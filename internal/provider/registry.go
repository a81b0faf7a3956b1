package provider

import (
	"sort"

	"github.com/amityadav/newsagg/internal/news"
)

// Registry holds all registered adapters in merge order
type Registry struct {
	adapters []Adapter
}

// NewRegistry creates a new adapter registry
func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register adds an adapter, keeping the fixed source order regardless of
// registration order
func (r *Registry) Register(adapter Adapter) {
	r.adapters = append(r.adapters, adapter)
	sort.SliceStable(r.adapters, func(i, j int) bool {
		return r.adapters[i].Source().Rank() < r.adapters[j].Source().Rank()
	})
}

// GetAll returns all registered adapters
func (r *Registry) GetAll() []Adapter {
	out := make([]Adapter, len(r.adapters))
	copy(out, r.adapters)
	return out
}

// Select returns the adapters serving source, or all of them when source is empty
func (r *Registry) Select(source news.Source) []Adapter {
	if source == "" {
		return r.GetAll()
	}
	var out []Adapter
	for _, a := range r.adapters {
		if a.Source() == source {
			out = append(out, a)
		}
	}
	return out
}

// Count returns the number of registered adapters
func (r *Registry) Count() int {
	return len(r.adapters)
}
