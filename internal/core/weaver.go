// Package core ties extraction and reconciliation together.
package core

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/agenthands/graphweave/internal/config"
	"github.com/agenthands/graphweave/internal/core/congregate"
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

// Report counts what a reconciliation folded.
type Report struct {
	NodesIn    int
	NodesOut   int
	EdgesIn    int
	EdgesOut   int
	NodeGroups int
	EdgeGroups int
	// Folded is the number of node ids rewritten to another id.
	Folded int
}

// Reconciliate deduplicates nodes, rewrites the edges pointing at folded node
// ids, then deduplicates edges.
func Reconciliate(nodes []model.Node, edges []model.Edge, s serialize.Serializer,
	nodeFuser merge.Merger[model.Node], edgeFuser merge.Merger[model.Edge]) ([]model.Node, []model.Edge, error) {
	g, _, err := reconciliate(nodes, edges, s, nodeFuser, edgeFuser)
	if err != nil {
		return nil, nil, err
	}
	return g.Nodes, g.Edges, nil
}

func reconciliate(nodes []model.Node, edges []model.Edge, s serialize.Serializer,
	nodeFuser merge.Merger[model.Node], edgeFuser merge.Merger[model.Edge]) (*model.Graph, Report, error) {
	report := Report{NodesIn: len(nodes), EdgesIn: len(edges)}

	nodeGroups := congregate.Congregate(nodes, s)
	report.NodeGroups = nodeGroups.Duplicates()
	fusedNodes, mapping, err := fuse.Reduce[model.Node](nodeGroups, nodeFuser)
	if err != nil {
		return nil, report, fmt.Errorf("failed to fuse nodes: %w", err)
	}
	report.Folded = len(mapping)

	remapped := make([]model.Edge, len(edges))
	for i, e := range edges {
		e.SourceID = mapping.Resolve(e.SourceID)
		e.TargetID = mapping.Resolve(e.TargetID)
		remapped[i] = e
	}

	edgeGroups := congregate.Congregate(remapped, s)
	report.EdgeGroups = edgeGroups.Duplicates()
	fusedEdges, _, err := fuse.Reduce[model.Edge](edgeGroups, edgeFuser)
	if err != nil {
		return nil, report, fmt.Errorf("failed to fuse edges: %w", err)
	}

	report.NodesOut, report.EdgesOut = len(fusedNodes), len(fusedEdges)
	return &model.Graph{Nodes: fusedNodes, Edges: fusedEdges}, report, nil
}

// Weaver runs extractions and reconciliations configured by one Config.
type Weaver struct {
	Config    *config.Config
	Hierarchy *ontology.Hierarchy
	Metrics   *metrics.Metrics
	Logger    zerolog.Logger
}

// NewWeaver validates cfg. hierarchy may be nil when no type merger is used.
func NewWeaver(cfg *config.Config, hierarchy *ontology.Hierarchy) (*Weaver, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &Weaver{Config: cfg, Hierarchy: hierarchy, Logger: logging.Default()}
	// Build the fusers once so missing hierarchies fail here.
	if _, _, err := w.fusers(); err != nil {
		return nil, err
	}
	return w, nil
}

// LoadHierarchy loads the type hierarchy named by the ontology section, or
// returns nil when none is configured. d is only used for the memgraph source.
func LoadHierarchy(ctx context.Context, cfg *config.Config, d driver.GraphDriver) (*ontology.Hierarchy, error) {
	switch {
	case cfg.Ontology.Source == "memgraph":
		if d == nil {
			return nil, gwerrors.NewConfigError("ontology", "source `memgraph` needs a graph driver", nil)
		}
		return ontology.LoadFromGraph(ctx, d)
	case cfg.Ontology.File != "":
		return ontology.LoadYAMLFile(cfg.Ontology.File)
	default:
		return nil, nil
	}
}

func (w *Weaver) mergeOptions() merge.Options {
	opts := merge.Options{Separator: w.Config.Reconciliation.Separator}
	if w.Hierarchy != nil {
		opts.Hierarchy = w.Hierarchy
	}
	return opts
}

func (w *Weaver) fusers() (*fuse.Nodes, *fuse.Edges, error) {
	opts := w.mergeOptions()
	nodes, err := fuse.NewNodes(w.Config.Reconciliation.Nodes, opts)
	if err != nil {
		return nil, nil, err
	}
	edges, err := fuse.NewEdges(w.Config.Reconciliation.Edges, opts)
	if err != nil {
		return nil, nil, err
	}
	return nodes, edges, nil
}

// Pipeline builds an extraction pipeline with the configured options.
func (w *Weaver) Pipeline(subject *transform.Transformer, targets []*transform.Transformer) (*extraction.Pipeline, error) {
	ids, err := w.Config.IDFormatter()
	if err != nil {
		return nil, err
	}
	ext := w.Config.Extraction
	return extraction.NewPipeline(subject, targets, extraction.Options{
		IDs:                   ids,
		RaiseErrors:           ext.RaiseErrors,
		NoMatch:               transform.NoMatchPolicy(ext.OnNoMatch),
		Metadata:              w.Config.Metadata(),
		SourceColumnsProperty: ext.SourceColumnsProperty,
		ListSeparator:         ext.ListSeparator,
		Logger:                &w.Logger,
	})
}

// Extract runs one mapping over src.
func (w *Weaver) Extract(src extraction.Source, subject *transform.Transformer, targets []*transform.Transformer) (*extraction.Output, error) {
	p, err := w.Pipeline(subject, targets)
	if err != nil {
		return nil, err
	}
	r, err := extraction.NewRunner(p, extraction.RunnerOptions{
		Workers: w.Config.Extraction.Workers,
		Metrics: w.Metrics,
		Logger:  &w.Logger,
	})
	if err != nil {
		return nil, err
	}
	return r.Run(src)
}

// Reconciliate deduplicates g with the configured serializer and mergers. It
// is safe for concurrent use: every call gets its own mergers.
func (w *Weaver) Reconciliate(g model.Graph) (*model.Graph, error) {
	start := time.Now()
	s, err := serialize.ByName(w.Config.Reconciliation.Serializer)
	if err != nil {
		return nil, err
	}
	nodeFuser, edgeFuser, err := w.fusers()
	if err != nil {
		return nil, err
	}

	out, report, err := reconciliate(g.Nodes, g.Edges, s, nodeFuser, edgeFuser)
	if err != nil {
		w.Metrics.ObserveErrors([]error{err})
		return nil, err
	}

	elapsed := time.Since(start)
	w.Metrics.ObserveReconciliation(report.NodeGroups, report.EdgeGroups, report.Folded, elapsed)
	w.Logger.Info().
		Int("nodes_in", report.NodesIn).
		Int("nodes_out", report.NodesOut).
		Int("edges_in", report.EdgesIn).
		Int("edges_out", report.EdgesOut).
		Int("folded_ids", report.Folded).
		Dur("elapsed", elapsed).
		Msg("performed reconciliation")
	return out, nil
}
