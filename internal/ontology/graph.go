package ontology

import (
	"context"
	"fmt"

	"github.com/agenthands/graphweave/internal/driver"
	"github.com/agenthands/graphweave/internal/logging"
)

// LoadFromGraph reads the (:Type)-[:IS_A]->(:Type) hierarchy stored in a graph
// database.
func LoadFromGraph(ctx context.Context, d driver.GraphDriver) (*Hierarchy, error) {
	res, err := d.ExecuteQuery(ctx, driver.LoadTypeHierarchyQuery, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load type hierarchy: %w", err)
	}

	h := New()
	for _, rec := range res.Records {
		child, _ := rec.Get("child")
		parent, _ := rec.Get("parent")
		name, ok := child.(string)
		if !ok {
			return nil, fmt.Errorf("failed to load type hierarchy: unexpected type name %v", child)
		}
		var parents []string
		if p, ok := parent.(string); ok && p != "" {
			parents = append(parents, p)
		}
		if err := h.Add(name, parents...); err != nil {
			return nil, err
		}
	}

	logger := logging.FromContext(ctx)
	logger.Debug().Int("types", len(h.Types())).Msg("loaded type hierarchy")
	return h, nil
}

// SaveToGraph writes h to a graph database. Existing types and links are kept.
func SaveToGraph(ctx context.Context, d driver.GraphDriver, h *Hierarchy) error {
	for _, name := range h.Types() {
		if _, err := d.ExecuteQuery(ctx, driver.SaveTypeQuery, map[string]interface{}{"name": name}); err != nil {
			return fmt.Errorf("failed to save type %s: %w", name, err)
		}
	}
	for _, pair := range h.Pairs() {
		params := map[string]interface{}{"child": pair[0], "parent": pair[1]}
		if _, err := d.ExecuteQuery(ctx, driver.SaveIsAQuery, params); err != nil {
			return fmt.Errorf("failed to save %s is-a %s: %w", pair[0], pair[1], err)
		}
	}
	return nil
}
