package patient

import (
	"slices"
	"sync"
	"time"
)

// Registry is the insertion-ordered, append-only patient list of one
// session. The zero value is ready to use.
type Registry struct {
	mu      sync.Mutex
	records []Record
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends r. Names are not unique; every call adds a distinct patient.
func (g *Registry) Add(r Record) {
	g.mu.Lock()
	g.records = append(g.records, r)
	g.mu.Unlock()
}

// All returns a copy of the current sequence.
func (g *Registry) All() []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	return slices.Clone(g.records)
}

func (g *Registry) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// Prioritize reorders the stored sequence by SortByPriority and returns a
// copy of the result. The new order replaces insertion order.
func (g *Registry) Prioritize(today time.Time) []Record {
	g.mu.Lock()
	defer g.mu.Unlock()
	SortByPriority(g.records, today)
	return slices.Clone(g.records)
}
