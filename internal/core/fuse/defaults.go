package fuse

import (
	"github.com/agenthands/graphweave/internal/core/merge"
)

// NodeMergers names the merger of each node field.
type NodeMergers struct {
	ID         string `toml:"id" json:"id"`
	Label      string `toml:"label" json:"label"`
	Properties string `toml:"properties" json:"properties"`
}

// EdgeMergers names the merger of each edge field.
type EdgeMergers struct {
	ID         string `toml:"id" json:"id"`
	Label      string `toml:"label" json:"label"`
	Properties string `toml:"properties" json:"properties"`
	Source     string `toml:"source" json:"source"`
	Target     string `toml:"target" json:"target"`
}

// DefaultNodeMergers keeps the key as id, gathers labels and appends properties.
func DefaultNodeMergers() NodeMergers {
	return NodeMergers{ID: "use_key", Label: "ordered_set", Properties: "append"}
}

// DefaultEdgeMergers gathers ids, keeps the first label and the last endpoints.
func DefaultEdgeMergers() EdgeMergers {
	return EdgeMergers{ID: "ordered_set", Label: "use_first", Properties: "append", Source: "use_last", Target: "use_last"}
}

// NewNodes builds a node fuser from merger names. Empty names take the default.
func NewNodes(names NodeMergers, opts merge.Options) (*Nodes, error) {
	def := DefaultNodeMergers()
	f := &Nodes{}
	var err error
	if f.ID, err = merge.StringByName(or(names.ID, def.ID), opts); err != nil {
		return nil, err
	}
	if f.Label, err = merge.StringByName(or(names.Label, def.Label), opts); err != nil {
		return nil, err
	}
	if f.Properties, err = merge.PropertiesByName(or(names.Properties, def.Properties), opts); err != nil {
		return nil, err
	}
	return f, nil
}

// NewEdges builds an edge fuser from merger names. Empty names take the default.
func NewEdges(names EdgeMergers, opts merge.Options) (*Edges, error) {
	def := DefaultEdgeMergers()
	f := &Edges{}
	var err error
	if f.ID, err = merge.StringByName(or(names.ID, def.ID), opts); err != nil {
		return nil, err
	}
	if f.Label, err = merge.StringByName(or(names.Label, def.Label), opts); err != nil {
		return nil, err
	}
	if f.Properties, err = merge.PropertiesByName(or(names.Properties, def.Properties), opts); err != nil {
		return nil, err
	}
	if f.Source, err = merge.StringByName(or(names.Source, def.Source), opts); err != nil {
		return nil, err
	}
	if f.Target, err = merge.StringByName(or(names.Target, def.Target), opts); err != nil {
		return nil, err
	}
	return f, nil
}

func or(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
