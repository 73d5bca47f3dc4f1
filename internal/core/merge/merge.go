// Package merge holds the per-field strategies used to collapse a group of
// duplicates into one value. A merger accumulates state over the pairs of one
// group, is read with Get, and is Reset before the next group.
package merge

import (
	"slices"
	"strings"
)

// Merger reduces the values of one field across a duplicate group.
type Merger[T any] interface {
	Merge(key string, lhs, rhs T) error
	Get() T
	Reset()
}

// Hierarchy answers the is-a queries the type mergers need.
type Hierarchy interface {
	LowestCommonAncestor(a, b string) (string, bool)
	IsAncestor(ancestor, descendant string) bool
}

// splitSet appends the non-empty parts of value not already in set.
func splitSet(set []string, value, sep string) []string {
	parts := []string{value}
	if sep != "" {
		parts = strings.Split(value, sep)
	}
	for _, p := range parts {
		if p != "" && !slices.Contains(set, p) {
			set = append(set, p)
		}
	}
	return set
}
