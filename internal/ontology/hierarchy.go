// Package ontology holds the is-a type hierarchy queried by the type mergers.
package ontology

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Hierarchy is a directed acyclic is-a graph of type names. A type may have
// several parents.
type Hierarchy struct {
	mu      sync.RWMutex
	parents map[string][]string
}

// New returns an empty hierarchy.
func New() *Hierarchy {
	return &Hierarchy{parents: make(map[string][]string)}
}

// Add declares child with the given parents. Unknown parents are declared as
// roots. A parent that would close a cycle is a ConfigError.
func (h *Hierarchy) Add(child string, parents ...string) error {
	if child == "" {
		return gwerrors.NewConfigError("ontology", "type name cannot be empty", nil)
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.parents[child]; !ok {
		h.parents[child] = nil
	}
	for _, p := range parents {
		if p == "" {
			return gwerrors.NewConfigError("ontology", fmt.Sprintf("empty parent for `%s`", child), nil)
		}
		if _, isAncestor := h.distances(p)[child]; isAncestor {
			return gwerrors.NewConfigError("ontology", fmt.Sprintf("`%s` is-a `%s` closes a cycle", child, p), nil)
		}
		if _, ok := h.parents[p]; !ok {
			h.parents[p] = nil
		}
		if !slices.Contains(h.parents[child], p) {
			h.parents[child] = append(h.parents[child], p)
		}
	}
	return nil
}

// Has reports whether name is declared.
func (h *Hierarchy) Has(name string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.parents[name]
	return ok
}

// Types lists every declared type, sorted.
func (h *Hierarchy) Types() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Sorted(maps.Keys(h.parents))
}

// Parents returns the direct parents of name.
func (h *Hierarchy) Parents(name string) []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return slices.Clone(h.parents[name])
}

// distances maps name and each of its ancestors to its is-a distance from name.
// Callers hold the lock.
func (h *Hierarchy) distances(name string) map[string]int {
	dist := map[string]int{name: 0}
	queue := []string{name}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, p := range h.parents[u] {
			if _, seen := dist[p]; !seen {
				dist[p] = dist[u] + 1
				queue = append(queue, p)
			}
		}
	}
	return dist
}

// IsAncestor reports whether ancestor is a strict ancestor of descendant.
func (h *Hierarchy) IsAncestor(ancestor, descendant string) bool {
	if ancestor == descendant {
		return false
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.distances(descendant)[ancestor]
	return ok
}

// LowestCommonAncestor returns the common ancestor of a and b closest to both
// (a type is its own ancestor). Ties go to the lexicographically smallest name.
func (h *Hierarchy) LowestCommonAncestor(a, b string) (string, bool) {
	if a == b {
		return a, true
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.parents[a]; !ok {
		return "", false
	}
	if _, ok := h.parents[b]; !ok {
		return "", false
	}

	da, db := h.distances(a), h.distances(b)
	best, bestDist := "", -1
	for name, d := range da {
		e, ok := db[name]
		if !ok {
			continue
		}
		if bestDist < 0 || d+e < bestDist || (d+e == bestDist && name < best) {
			best, bestDist = name, d+e
		}
	}
	return best, bestDist >= 0
}

// Pairs lists every child, parent pair, sorted by child then parent.
func (h *Hierarchy) Pairs() [][2]string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out [][2]string
	for _, child := range slices.Sorted(maps.Keys(h.parents)) {
		parents := slices.Sorted(slices.Values(h.parents[child]))
		for _, p := range parents {
			out = append(out, [2]string{child, p})
		}
	}
	return out
}
