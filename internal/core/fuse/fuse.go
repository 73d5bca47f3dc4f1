// Package fuse collapses duplicate groups into single elements, field by field.
package fuse

import (
	"fmt"

	"github.com/agenthands/graphweave/internal/core/congregate"
	"github.com/agenthands/graphweave/internal/core/merge"
	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// IDMapping maps identifiers folded away by fusion to the id that replaced them.
type IDMapping map[string]string

// Resolve returns the id that replaced id, or id itself.
func (m IDMapping) Resolve(id string) string {
	if to, ok := m[id]; ok {
		return to
	}
	return id
}

// Nodes fuses node groups.
type Nodes struct {
	ID         merge.Merger[string]
	Label      merge.Merger[string]
	Properties merge.Merger[model.Properties]
}

func (f *Nodes) Merge(key string, lhs, rhs model.Node) error {
	if err := f.ID.Merge(key, lhs.ID, rhs.ID); err != nil {
		return fmt.Errorf("failed to merge node id: %w", err)
	}
	if err := f.Label.Merge(key, lhs.Label, rhs.Label); err != nil {
		return fmt.Errorf("failed to merge node label: %w", err)
	}
	if err := f.Properties.Merge(key, lhs.Properties, rhs.Properties); err != nil {
		return fmt.Errorf("failed to merge node properties: %w", err)
	}
	return nil
}

func (f *Nodes) Get() model.Node {
	return model.Node{ID: f.ID.Get(), Label: f.Label.Get(), Properties: f.Properties.Get()}
}

func (f *Nodes) Reset() {
	f.ID.Reset()
	f.Label.Reset()
	f.Properties.Reset()
}

// Edges fuses edge groups.
type Edges struct {
	ID         merge.Merger[string]
	Label      merge.Merger[string]
	Properties merge.Merger[model.Properties]
	Source     merge.Merger[string]
	Target     merge.Merger[string]
}

func (f *Edges) Merge(key string, lhs, rhs model.Edge) error {
	if err := f.ID.Merge(key, lhs.ID, rhs.ID); err != nil {
		return fmt.Errorf("failed to merge edge id: %w", err)
	}
	if err := f.Label.Merge(key, lhs.Label, rhs.Label); err != nil {
		return fmt.Errorf("failed to merge edge label: %w", err)
	}
	if err := f.Properties.Merge(key, lhs.Properties, rhs.Properties); err != nil {
		return fmt.Errorf("failed to merge edge properties: %w", err)
	}
	if err := f.Source.Merge(key, lhs.SourceID, rhs.SourceID); err != nil {
		return fmt.Errorf("failed to merge edge source: %w", err)
	}
	if err := f.Target.Merge(key, lhs.TargetID, rhs.TargetID); err != nil {
		return fmt.Errorf("failed to merge edge target: %w", err)
	}
	return nil
}

func (f *Edges) Get() model.Edge {
	return model.Edge{
		ID:         f.ID.Get(),
		SourceID:   f.Source.Get(),
		TargetID:   f.Target.Get(),
		Label:      f.Label.Get(),
		Properties: f.Properties.Get(),
	}
}

func (f *Edges) Reset() {
	f.ID.Reset()
	f.Label.Reset()
	f.Properties.Reset()
	f.Source.Reset()
	f.Target.Reset()
}

// Reduce fuses every group into one element, in group order. The first member
// is merged with itself, then with each following member. Every member id that
// differs from its fused id is recorded in the returned mapping. An id fused
// into two different elements is a MergeError.
func Reduce[E model.Entity](groups *congregate.Groups[E], f merge.Merger[E]) ([]E, IDMapping, error) {
	out := make([]E, 0, groups.Len())
	mapping := IDMapping{}
	for key, members := range groups.All() {
		if len(members) == 0 {
			continue
		}
		f.Reset()
		first := members[0]
		if err := f.Merge(key, first, first); err != nil {
			return nil, nil, err
		}
		for _, rhs := range members[1:] {
			if err := f.Merge(key, first, rhs); err != nil {
				return nil, nil, err
			}
		}
		fused := f.Get()
		for _, m := range members {
			id := m.EntityID()
			if id == fused.EntityID() {
				continue
			}
			if prev, ok := mapping[id]; ok && prev != fused.EntityID() {
				return nil, nil, gwerrors.NewMergeError("Reduce", key, []string{prev, fused.EntityID()},
					fmt.Errorf("id %q was fused into two different elements", id))
			}
			mapping[id] = fused.EntityID()
		}
		out = append(out, fused)
	}
	return out, mapping, nil
}
