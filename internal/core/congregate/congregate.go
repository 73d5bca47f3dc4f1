// Package congregate groups elements that share a duplicate key.
package congregate

import (
	"iter"

	"github.com/agenthands/graphweave/internal/core/model"
	"github.com/agenthands/graphweave/internal/core/serialize"
)

// Groups maps duplicate keys to their members. Keys keep the order in which they
// were first seen, members keep the order in which they were added.
type Groups[E model.Entity] struct {
	keys    []string
	members map[string][]E
}

// Congregate groups items by their key under s.
func Congregate[E model.Entity](items []E, s serialize.Serializer) *Groups[E] {
	g := &Groups[E]{members: make(map[string][]E)}
	for _, item := range items {
		g.Add(serialize.Key(s, item), item)
	}
	return g
}

// Add appends item to the group of key.
func (g *Groups[E]) Add(key string, item E) {
	if _, ok := g.members[key]; !ok {
		g.keys = append(g.keys, key)
	}
	g.members[key] = append(g.members[key], item)
}

// Len returns the number of groups.
func (g *Groups[E]) Len() int { return len(g.keys) }

// Keys returns the group keys in first-seen order.
func (g *Groups[E]) Keys() []string { return g.keys }

// Members returns the elements sharing key.
func (g *Groups[E]) Members(key string) []E { return g.members[key] }

// All yields every group in first-seen order.
func (g *Groups[E]) All() iter.Seq2[string, []E] {
	return func(yield func(string, []E) bool) {
		for _, key := range g.keys {
			if !yield(key, g.members[key]) {
				return
			}
		}
	}
}

// Duplicates counts the groups holding more than one element.
func (g *Groups[E]) Duplicates() int {
	n := 0
	for _, key := range g.keys {
		if len(g.members[key]) > 1 {
			n++
		}
	}
	return n
}
