package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphweave/internal/config"
	"github.com/agenthands/graphweave/internal/core/extraction"
	"github.com/agenthands/graphweave/internal/core/fuse"
	"github.com/agenthands/graphweave/internal/core/merge"
	"github.com/agenthands/graphweave/internal/core/model"
	"github.com/agenthands/graphweave/internal/core/serialize"
	"github.com/agenthands/graphweave/internal/core/transform"
	"github.com/agenthands/graphweave/internal/driver"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
	"github.com/agenthands/graphweave/internal/metrics"
	"github.com/agenthands/graphweave/internal/ontology"
)

func newWeaver(t *testing.T, cfg *config.Config, h *ontology.Hierarchy) *Weaver {
	t.Helper()
	w, err := NewWeaver(cfg, h)
	require.NoError(t, err)
	w.Logger = logging.Nop
	return w
}

func sourceTargetMapping(t *testing.T) (*transform.Transformer, []*transform.Transformer) {
	t.Helper()
	reg := transform.NewRegistry()
	subject, err := reg.New(transform.Spec{
		Kind:    "map",
		Columns: []string{"subject"},
		Labels:  transform.Static{Branch: transform.Branch{Target: "source"}},
		Logger:  &logging.Nop,
	})
	require.NoError(t, err)
	target, err := reg.New(transform.Spec{
		Kind:    "map",
		Columns: []string{"target"},
		Labels:  transform.Static{Branch: transform.Branch{Edge: "link", Target: "target"}},
		Logger:  &logging.Nop,
	})
	require.NoError(t, err)
	return subject, []*transform.Transformer{target}
}

func nodeIDs(nodes []model.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}
	return out
}

func TestExtractThenReconciliate(t *testing.T) {
	w := newWeaver(t, nil, nil)
	subject, targets := sourceTargetMapping(t)

	out, err := w.Extract(extraction.Records{
		{"subject": 0, "target": "A"},
		{"subject": 0, "target": "A"},
		{"subject": 1, "target": "B"},
	}, subject, targets)
	require.NoError(t, err)
	assert.Len(t, out.Nodes, 6)
	assert.Len(t, out.Edges, 3)

	g, err := w.Reconciliate(model.Graph{Nodes: out.Nodes, Edges: out.Edges})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"0:source", "A:target", "1:source", "B:target"}, nodeIDs(g.Nodes))
	require.Len(t, g.Edges, 2)
	assert.Equal(t, "0:source", g.Edges[0].SourceID)
	assert.Equal(t, "A:target", g.Edges[0].TargetID)
	assert.Equal(t, "1:source", g.Edges[1].SourceID)
	assert.Equal(t, "B:target", g.Edges[1].TargetID)
}

func TestReconciliateIsIdempotent(t *testing.T) {
	w := newWeaver(t, nil, nil)
	in := model.Graph{
		Nodes: []model.Node{
			{ID: "a", Label: "x", Properties: model.Properties{"p": "1"}},
			{ID: "a", Label: "y", Properties: model.Properties{"p": "2"}},
			{ID: "b", Label: "x"},
		},
		Edges: []model.Edge{
			{ID: "e1", SourceID: "a", TargetID: "b", Label: "l", Properties: model.Properties{"w": "1"}},
			{ID: "e2", SourceID: "a", TargetID: "b", Label: "l"},
		},
	}
	once, err := w.Reconciliate(in)
	require.NoError(t, err)
	twice, err := w.Reconciliate(*once)
	require.NoError(t, err)

	assert.Equal(t, once.Nodes, twice.Nodes)
	assert.Equal(t, once.Edges, twice.Edges)
	assert.Equal(t, model.Properties{"p": "1;2"}, once.Nodes[0].Properties)
	assert.Equal(t, "x;y", once.Nodes[0].Label)
	assert.Equal(t, "e1;e2", once.Edges[0].ID)
}

type byLabel struct{}

func (byLabel) Node(n model.Node) string { return n.Label }
func (byLabel) Edge(e model.Edge) string { return e.SourceID + e.TargetID + e.Label }

func TestReconciliatePropagatesRemap(t *testing.T) {
	nodes := []model.Node{
		{ID: "A", Label: "gene"},
		{ID: "A-old", Label: "gene"},
		{ID: "B", Label: "protein"},
	}
	edges := []model.Edge{
		{ID: "e1", SourceID: "A", TargetID: "B", Label: "codes"},
		{ID: "e2", SourceID: "A-old", TargetID: "B", Label: "codes"},
	}
	nodeFuser := &fuse.Nodes{ID: &merge.UseFirst[string]{}, Label: &merge.UseFirst[string]{}, Properties: &merge.Append{Separator: ";"}}
	edgeFuser, err := fuse.NewEdges(fuse.EdgeMergers{}, merge.Options{Separator: ";"})
	require.NoError(t, err)

	outNodes, outEdges, err := Reconciliate(nodes, edges, byLabel{}, nodeFuser, edgeFuser)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, nodeIDs(outNodes))
	require.Len(t, outEdges, 1, "edges whose endpoints became equal collapse")
	assert.Equal(t, "A", outEdges[0].SourceID)
	assert.Equal(t, "B", outEdges[0].TargetID)
	assert.Equal(t, "e1;e2", outEdges[0].ID)
}

func TestReconciliateEmpty(t *testing.T) {
	w := newWeaver(t, nil, nil)
	g, err := w.Reconciliate(model.Graph{})
	require.NoError(t, err)
	assert.Empty(t, g.Nodes)
	assert.Empty(t, g.Edges)
}

func TestParallelAndSequentialReconcileAlike(t *testing.T) {
	var recs extraction.Records
	for i := range 300 {
		recs = append(recs, model.Record{"subject": i % 11, "target": fmt.Sprintf("T%d", i%5)})
	}

	reconciled := func(workers int) *model.Graph {
		cfg := config.Default()
		cfg.Extraction.Workers = workers
		w := newWeaver(t, cfg, nil)
		subject, targets := sourceTargetMapping(t)
		out, err := w.Extract(recs, subject, targets)
		require.NoError(t, err)
		g, err := w.Reconciliate(model.Graph{Nodes: out.Nodes, Edges: out.Edges})
		require.NoError(t, err)
		return g
	}

	seq, par := reconciled(0), reconciled(8)
	assert.ElementsMatch(t, seq.Nodes, par.Nodes)
	assert.ElementsMatch(t, seq.Edges, par.Edges)
	assert.Len(t, seq.Nodes, 16)
}

func TestReconciliateSurfacesMergeErrors(t *testing.T) {
	cfg := config.Default()
	cfg.Reconciliation.Nodes.Label = "ensure_identical"
	m := metrics.New(prometheus.NewRegistry())
	w := newWeaver(t, cfg, nil)
	w.Metrics = m

	_, err := w.Reconciliate(model.Graph{Nodes: []model.Node{
		{ID: "a", Label: "x"},
		{ID: "a", Label: "y"},
	}})
	assert.ErrorIs(t, err, gwerrors.ErrMerge)
	assert.Equal(t, gwerrors.ExitMerge, gwerrors.ExitCode(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Errors.WithLabelValues("merge")))
}

func TestReconciliateWithTypeHierarchy(t *testing.T) {
	h := ontology.New()
	require.NoError(t, h.Add("patient", "person"))
	require.NoError(t, h.Add("doctor", "person"))

	cfg := config.Default()
	cfg.Ontology.File = "types.yaml"
	cfg.Reconciliation.Nodes.Label = "common_super_type"
	w := newWeaver(t, cfg, h)

	g, err := w.Reconciliate(model.Graph{Nodes: []model.Node{
		{ID: "alice", Label: "patient"},
		{ID: "alice", Label: "doctor"},
	}})
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	assert.Equal(t, "person", g.Nodes[0].Label)

	_, err = NewWeaver(cfg, nil)
	assert.ErrorIs(t, err, gwerrors.ErrConfig)
}

func TestReconciliateWithSerializers(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Label: "x", Properties: model.Properties{"p": "1"}},
		{ID: "a", Label: "y"},
		{ID: "b", Label: "x"},
	}
	edges := []model.Edge{{ID: "e", SourceID: "a", TargetID: "b", Label: "link"}}
	for name, want := range map[string][]string{
		"id":      {"a", "b"},
		"idlabel": {"a", "a", "b"},
		"all":     {"a", "a", "b"},
	} {
		t.Run(name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Reconciliation.Serializer = name
			if name != "id" {
				cfg.Reconciliation.Nodes.ID = "use_first"
			}
			w := newWeaver(t, cfg, nil)

			once, err := w.Reconciliate(model.Graph{Nodes: nodes, Edges: edges})
			require.NoError(t, err)
			assert.ElementsMatch(t, want, nodeIDs(once.Nodes))
			require.Len(t, once.Edges, 1)
			assert.Equal(t, "a", once.Edges[0].SourceID)
			assert.Equal(t, "b", once.Edges[0].TargetID)

			twice, err := w.Reconciliate(*once)
			require.NoError(t, err)
			assert.Equal(t, once, twice)
		})
	}
}

func TestNewWeaverRejectsUseKeyWithoutIDSerializer(t *testing.T) {
	for _, name := range []string{"idlabel", "all"} {
		cfg := config.Default()
		cfg.Reconciliation.Serializer = name
		_, err := NewWeaver(cfg, nil)
		assert.ErrorIs(t, err, gwerrors.ErrConfig, name)
	}
}

func TestLoadHierarchy(t *testing.T) {
	ctx := context.Background()

	h, err := LoadHierarchy(ctx, config.Default(), nil)
	require.NoError(t, err)
	assert.Nil(t, h)

	path := filepath.Join(t.TempDir(), "types.yaml")
	require.NoError(t, os.WriteFile(path, []byte("patient:\n  is_a: person\n"), 0o600))
	cfg := config.Default()
	cfg.Ontology.File = path
	h, err = LoadHierarchy(ctx, cfg, nil)
	require.NoError(t, err)
	assert.True(t, h.IsAncestor("person", "patient"))

	cfg = config.Default()
	cfg.Ontology.Source = "memgraph"
	_, err = LoadHierarchy(ctx, cfg, nil)
	assert.ErrorIs(t, err, gwerrors.ErrConfig)

	d := &MockDriver{MockResult: neo4j.EagerResult{Records: []*neo4j.Record{
		{Keys: []string{"child", "parent"}, Values: []any{"drug", "compound"}},
	}}}
	h, err = LoadHierarchy(ctx, cfg, d)
	require.NoError(t, err)
	assert.Equal(t, driver.LoadTypeHierarchyQuery, d.QueryExecuted)
	assert.Equal(t, []string{"compound"}, h.Parents("drug"))
}
