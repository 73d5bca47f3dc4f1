// Package serialize derives the duplicate key of nodes and edges. Two elements
// with the same key are considered the same real-world entity.
package serialize

import (
	"fmt"
	"strings"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Serializer computes duplicate keys.
type Serializer interface {
	Node(n model.Node) string
	Edge(e model.Edge) string
}

// Key dispatches to the method of s matching the kind of e.
func Key[E model.Entity](s Serializer, e E) string {
	switch v := any(e).(type) {
	case model.Node:
		return s.Node(v)
	case model.Edge:
		return s.Edge(v)
	}
	panic(fmt.Sprintf("serialize: unsupported entity %T", e))
}

// ID keys a node by its id and an edge by its endpoints. The edge's own id is
// left out, so edges between the same nodes match whatever id they were given.
type ID struct{}

func (ID) Node(n model.Node) string { return n.ID }
func (ID) Edge(e model.Edge) string { return e.SourceID + e.TargetID }

// IDLabel appends the label to the ID key.
type IDLabel struct{}

func (IDLabel) Node(n model.Node) string { return ID{}.Node(n) + n.Label }
func (IDLabel) Edge(e model.Edge) string { return ID{}.Edge(e) + e.Label }

// All appends the canonical properties to the IDLabel key. Only literal
// duplicates share a key.
type All struct{}

func (All) Node(n model.Node) string { return IDLabel{}.Node(n) + n.Properties.Canonical() }
func (All) Edge(e model.Edge) string { return IDLabel{}.Edge(e) + e.Properties.Canonical() }

// ByKind uses one serializer for nodes and another for edges.
type ByKind struct {
	Nodes Serializer
	Edges Serializer
}

func (b ByKind) Node(n model.Node) string { return b.Nodes.Node(n) }
func (b ByKind) Edge(e model.Edge) string { return b.Edges.Edge(e) }

// Names lists the serializers ByName knows.
var Names = []string{"id", "idlabel", "all"}

// ByName returns the built-in serializer called name.
func ByName(name string) (Serializer, error) {
	switch strings.ToLower(name) {
	case "", "id":
		return ID{}, nil
	case "idlabel", "id_label":
		return IDLabel{}, nil
	case "all":
		return All{}, nil
	default:
		return nil, gwerrors.NewConfigError("serializer",
			fmt.Sprintf("`%s` is not one of %s", name, strings.Join(Names, ", ")), nil)
	}
}
