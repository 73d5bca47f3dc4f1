package serialize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

var (
	node = model.Node{ID: "1:source", Label: "source", Properties: model.Properties{"b": "2", "a": "1"}}
	edge = model.Edge{ID: "e1", SourceID: "1:source", TargetID: "A:target", Label: "link", Properties: model.Properties{"w": "3"}}
)

func TestBuiltins(t *testing.T) {
	cases := []struct {
		name     string
		s        Serializer
		wantNode string
		wantEdge string
	}{
		{"id", ID{}, "1:source", "1:sourceA:target"},
		{"idlabel", IDLabel{}, "1:sourcesource", "1:sourceA:targetlink"},
		{"all", All{}, `1:sourcesource{"a":"1","b":"2"}`, `1:sourceA:targetlink{"w":"3"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.wantNode, tc.s.Node(node))
			assert.Equal(t, tc.wantEdge, tc.s.Edge(edge))
			assert.Equal(t, tc.wantNode, Key(tc.s, node))
			assert.Equal(t, tc.wantEdge, Key(tc.s, edge))
		})
	}
}

func TestEdgeIDIgnoresOwnID(t *testing.T) {
	other := edge
	other.ID = "(1:source)--[link]->(A:target)"
	assert.Equal(t, ID{}.Edge(edge), ID{}.Edge(other))
}

func TestAllIsOrderIndependent(t *testing.T) {
	a := model.Node{ID: "x", Label: "t", Properties: model.Properties{"p": "1", "q": "2"}}
	b := model.Node{ID: "x", Label: "t", Properties: model.Properties{"q": "2", "p": "1"}}
	assert.Equal(t, All{}.Node(a), All{}.Node(b))
}

func TestByKind(t *testing.T) {
	s := ByKind{Nodes: All{}, Edges: ID{}}
	assert.Equal(t, All{}.Node(node), s.Node(node))
	assert.Equal(t, "1:sourceA:target", s.Edge(edge))
}

func TestByName(t *testing.T) {
	for _, name := range []string{"", "id", "IDLabel", "all"} {
		s, err := ByName(name)
		require.NoError(t, err, name)
		assert.NotNil(t, s)
	}
	_, err := ByName("everything")
	assert.ErrorIs(t, err, gwerrors.ErrConfig)
}
