// Package extraction turns records into node and edge declarations, one record at
// a time, and drives that work sequentially or over a bounded worker pool.
package extraction

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agenthands/graphweave/internal/core/model"
	"github.com/agenthands/graphweave/internal/core/transform"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
)

// Options configures how a Pipeline builds ids and handles errors.
type Options struct {
	IDs model.IDFormatter
	// RaiseErrors aborts on the first data error instead of accumulating it.
	RaiseErrors bool
	// NoMatch applies to transformers that do not set their own policy.
	NoMatch transform.NoMatchPolicy
	// Metadata adds static properties to every element of the keyed type.
	Metadata map[string]model.Properties
	// SourceColumnsProperty, when set, names a node property listing the
	// columns the node was extracted from.
	SourceColumnsProperty string
	// ListSeparator joins the values of a property that yields several.
	ListSeparator string
	Logger        *zerolog.Logger
}

// Result is the contribution of one record. It is built without shared state.
type Result struct {
	Index           int
	Nodes           []model.Node
	Edges           []model.Edge
	Errors          []error
	Rows            int
	Transformations int
	NodeCount       int
	// Viable is false when the record produced no subject.
	Viable bool
}

// Pipeline holds the subject transformer and the ordered target transformers.
type Pipeline struct {
	Subject *transform.Transformer
	Targets []*transform.Transformer

	opts   Options
	logger zerolog.Logger
}

// NewPipeline checks the mapping and returns a pipeline. Configuration problems
// are reported here, before any record is read.
func NewPipeline(subject *transform.Transformer, targets []*transform.Transformer, opts Options) (*Pipeline, error) {
	if subject == nil {
		return nil, gwerrors.NewConfigError("pipeline", "a subject transformer is required", nil)
	}
	if _, err := model.ParseAffix(string(opts.IDs.Affix)); err != nil {
		return nil, err
	}
	if opts.IDs == (model.IDFormatter{}) {
		opts.IDs = model.DefaultIDFormatter()
	}
	if opts.ListSeparator == "" {
		opts.ListSeparator = ";"
	}
	policy, err := transform.ParseNoMatchPolicy(string(opts.NoMatch))
	if err != nil {
		return nil, err
	}

	logger := logging.Default()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	p := &Pipeline{Subject: subject, Targets: targets, opts: opts, logger: logger}

	for _, t := range p.all() {
		if t.NoMatch == "" {
			t.NoMatch = policy
		}
		if t.Logger == nil {
			t.Logger = &p.logger
		}
	}

	for j, t := range targets {
		if t == nil {
			return nil, gwerrors.NewConfigError("pipeline", fmt.Sprintf("target transformer #%d is nil", j), nil)
		}
		if t.FromSubject == "" {
			continue
		}
		if subject.Produces(t.FromSubject) {
			return nil, gwerrors.NewConfigError(t.String(),
				fmt.Sprintf("`from_subject` type `%s` must differ from the default subject type", t.FromSubject), nil)
		}
		found := false
		for _, other := range targets {
			if other != t && other.Produces(t.FromSubject) {
				found = true
				break
			}
		}
		if !found {
			return nil, gwerrors.NewConfigError(t.String(),
				fmt.Sprintf("no transformer produces the `from_subject` type `%s`", t.FromSubject), nil)
		}
	}
	return p, nil
}

// all returns every transformer of the mapping, property transformers included.
func (p *Pipeline) all() []*transform.Transformer {
	seen := map[*transform.Transformer]bool{}
	var out []*transform.Transformer
	var walk func(t *transform.Transformer)
	walk = func(t *transform.Transformer) {
		if t == nil || seen[t] {
			return
		}
		seen[t] = true
		out = append(out, t)
		for _, props := range t.PropertiesOf {
			for _, prop := range props {
				walk(prop.Transformer)
			}
		}
	}
	walk(p.Subject)
	for _, t := range p.Targets {
		walk(t)
	}
	return out
}

// fail records err in res, or returns it when the run raises errors.
func (p *Pipeline) fail(res *Result, err error) error {
	p.logger.Debug().Err(err).Int("row", res.Index).Msg("extraction error")
	if p.opts.RaiseErrors {
		return err
	}
	res.Errors = append(res.Errors, err)
	return nil
}

func locate(err error, index int) error {
	var de *gwerrors.DataError
	if gwerrors.As(err, &de) {
		de.Index = index
	}
	return err
}

func (p *Pipeline) makeID(typeName, value string) (string, error) {
	if strings.ContainsAny(value, "[]") {
		p.logger.Warn().Str("type", typeName).
			Msgf("identifier `%s` contains brackets, maybe a `split` transformer should be used for this column", value)
	}
	return p.opts.IDs.Make(typeName, value)
}

// Process builds the nodes and edges of one record. The returned error is only
// non-nil when the pipeline raises errors.
func (p *Pipeline) Process(index int, rec model.Record) (*Result, error) {
	res := &Result{Index: index, Rows: 1}

	subjects, err := p.subjects(index, rec, res)
	if err != nil {
		return nil, err
	}
	if len(subjects) == 0 {
		return res, nil
	}
	res.Viable = true

	for _, subjectID := range subjects {
		for j, t := range p.Targets {
			res.Transformations++
			if err := p.target(index, rec, j, t, subjectID, res); err != nil {
				return nil, err
			}
		}
	}
	return res, nil
}

func (p *Pipeline) subjects(index int, rec model.Record, res *Result) ([]string, error) {
	var ids []string
	for out, err := range p.Subject.Apply(rec, index) {
		if err != nil {
			if ferr := p.fail(res, err); ferr != nil {
				return nil, ferr
			}
			continue
		}
		nodeType := out.NodeType()
		if nodeType == "" {
			ierr := gwerrors.NewInterfaceError(p.Subject.String(), "subject transformer yielded a value without a type")
			if ferr := p.fail(res, ierr); ferr != nil {
				return nil, ferr
			}
			continue
		}
		id, err := p.makeID(nodeType, out.Value)
		if err != nil {
			if ferr := p.fail(res, err); ferr != nil {
				return nil, ferr
			}
			continue
		}
		props, err := p.properties(index, rec, p.Subject, res, out.Target, out.Final)
		if err != nil {
			return nil, err
		}
		p.addNodeMetadata(props, nodeType, p.Subject)
		res.Nodes = append(res.Nodes, model.Node{ID: id, Label: nodeType, Properties: props})
		res.NodeCount++
		ids = append(ids, id)
		p.logger.Debug().Int("row", index).Str("id", id).Msg("declared subject")
	}
	return ids, nil
}

func (p *Pipeline) target(index int, rec model.Record, j int, t *transform.Transformer, subjectID string, res *Result) error {
	for out, err := range t.Apply(rec, index) {
		if err != nil {
			if ferr := p.fail(res, locate(err, j)); ferr != nil {
				return ferr
			}
			continue
		}
		nodeType := out.NodeType()
		if out.Edge == "" || nodeType == "" {
			derr := gwerrors.NewDataError(index, t.String(), j,
				fmt.Sprintf("no valid target type for value `%s`", out.Value))
			if ferr := p.fail(res, derr); ferr != nil {
				return ferr
			}
			continue
		}

		targetID, err := p.makeID(nodeType, out.Value)
		if err != nil {
			if ferr := p.fail(res, err); ferr != nil {
				return ferr
			}
			continue
		}
		props, err := p.properties(index, rec, t, res, out.Target, out.Final)
		if err != nil {
			return err
		}
		p.addNodeMetadata(props, nodeType, t)
		res.Nodes = append(res.Nodes, model.Node{ID: targetID, Label: nodeType, Properties: props})
		res.NodeCount++

		sources := []string{subjectID}
		if t.FromSubject != "" {
			sources, err = p.alternateSources(index, rec, j, t, res)
			if err != nil {
				return err
			}
		}
		for _, sourceID := range sources {
			if err := p.link(index, rec, t, res, out.Edge, sourceID, targetID); err != nil {
				return err
			}
			if out.Reverse != "" {
				if err := p.link(index, rec, t, res, out.Reverse, targetID, sourceID); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// alternateSources re-evaluates the transformers producing t.FromSubject to find
// the ids edges of t must start from.
func (p *Pipeline) alternateSources(index int, rec model.Record, j int, t *transform.Transformer, res *Result) ([]string, error) {
	var ids []string
	for _, other := range p.Targets {
		if other == t || !other.Produces(t.FromSubject) {
			continue
		}
		for out, err := range other.Apply(rec, index) {
			if err != nil {
				if ferr := p.fail(res, locate(err, j)); ferr != nil {
					return nil, ferr
				}
				continue
			}
			if out.NodeType() != t.FromSubject {
				continue
			}
			id, err := p.makeID(t.FromSubject, out.Value)
			if err != nil {
				if ferr := p.fail(res, err); ferr != nil {
					return nil, ferr
				}
				continue
			}
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		derr := gwerrors.NewDataError(index, t.String(), j,
			fmt.Sprintf("no valid `%s` identifier to link from", t.FromSubject))
		if ferr := p.fail(res, derr); ferr != nil {
			return nil, ferr
		}
	}
	return ids, nil
}

func (p *Pipeline) link(index int, rec model.Record, t *transform.Transformer, res *Result, label, sourceID, targetID string) error {
	props, err := p.properties(index, rec, t, res, label)
	if err != nil {
		return err
	}
	for k, v := range p.opts.Metadata[label] {
		props[k] = v
	}
	p.logger.Debug().Int("row", index).Str("label", label).Str("source", sourceID).Str("target", targetID).Msg("declared edge")
	res.Edges = append(res.Edges, model.Edge{
		ID:         model.DefaultEdgeID(sourceID, label, targetID),
		SourceID:   sourceID,
		TargetID:   targetID,
		Label:      label,
		Properties: props,
	})
	return nil
}

func (p *Pipeline) addNodeMetadata(props model.Properties, nodeType string, t *transform.Transformer) {
	for k, v := range p.opts.Metadata[nodeType] {
		props[k] = v
	}
	if p.opts.SourceColumnsProperty != "" && len(t.Columns) > 0 {
		props[p.opts.SourceColumnsProperty] = strings.Join(t.Columns, ", ")
	}
}

// properties runs every property transformer registered for typeNames. A
// property with no value is omitted, one value is kept as is, several are joined.
func (p *Pipeline) properties(index int, rec model.Record, t *transform.Transformer, res *Result, typeNames ...string) (model.Properties, error) {
	props := model.Properties{}
	for _, prop := range t.PropertiesFor(typeNames...) {
		var values []string
		for out, err := range prop.Transformer.Apply(rec, index) {
			if err != nil {
				if ferr := p.fail(res, err); ferr != nil {
					return nil, ferr
				}
				continue
			}
			values = append(values, out.Value)
		}
		switch len(values) {
		case 0:
		case 1:
			props[prop.Name] = values[0]
		default:
			props[prop.Name] = strings.Join(values, p.opts.ListSeparator)
		}
	}
	return props, nil
}
