// Package transform implements the transformer contract: pulling values out of a
// record, validating them and resolving the node and edge types they map to.
package transform

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/logging"
)

// NoMatchPolicy decides what an unmatched branch means.
type NoMatchPolicy string

const (
	// NoMatchSkip drops the value and logs at info level.
	NoMatchSkip NoMatchPolicy = "skip"
	// NoMatchError reports a DataError.
	NoMatchError NoMatchPolicy = "error"
)

// ParseNoMatchPolicy validates a policy name; empty means skip.
func ParseNoMatchPolicy(s string) (NoMatchPolicy, error) {
	switch p := NoMatchPolicy(strings.ToLower(s)); p {
	case "", NoMatchSkip:
		return NoMatchSkip, nil
	case NoMatchError:
		return p, nil
	default:
		return "", gwerrors.NewConfigError("on_no_match", fmt.Sprintf("`%s` is not one of skip, error", s), nil)
	}
}

// Output is one element produced by a transformer.
type Output struct {
	Value   string
	Edge    string
	Target  string
	Reverse string
	Final   string
}

// NodeType is the type of the node built from this output.
func (o Output) NodeType() string {
	if o.Final != "" {
		return o.Final
	}
	return o.Target
}

// Property binds a sub-transformer to the property name it fills.
type Property struct {
	Name        string
	Transformer *Transformer
}

// Transformer maps one record to zero or more typed values. It is safe for
// concurrent use once configured.
type Transformer struct {
	Kind    string
	Columns []string
	Values  ValueMaker
	Labels  LabelResolver

	// Validator defaults to NotEmpty.
	Validator Validator
	// StrictValidation turns rejected values into DataErrors instead of skipping them.
	StrictValidation bool
	NoMatch          NoMatchPolicy

	// PropertiesOf lists the property sub-transformers registered per type name.
	PropertiesOf map[string][]Property

	// FromSubject names the type of the node edges should start from, instead of
	// the record subject.
	FromSubject string

	Logger *zerolog.Logger

	finalType string
	rejected  atomic.Int64
	unmatched atomic.Int64
}

func (t *Transformer) log() *zerolog.Logger {
	if t.Logger != nil {
		return t.Logger
	}
	l := logging.Default()
	return &l
}

func (t *Transformer) String() string {
	if len(t.Columns) == 0 {
		return t.Kind
	}
	return fmt.Sprintf("%s(%s)", t.Kind, strings.Join(t.Columns, ","))
}

// Override sets the final type of every node this transformer produces. It must
// be called before the transformer is used by a run.
func (t *Transformer) Override(finalType string) {
	t.finalType = finalType
}

// FinalType returns the override set by Override.
func (t *Transformer) FinalType() string { return t.finalType }

// TargetTypes lists every node type this transformer can produce.
func (t *Transformer) TargetTypes() []string {
	if t.finalType != "" {
		return []string{t.finalType}
	}
	var types []string
	if t.Labels == nil {
		return nil
	}
	for _, b := range t.Labels.Branches() {
		if nt := b.NodeType(); nt != "" && !slices.Contains(types, nt) {
			types = append(types, nt)
		}
	}
	return types
}

// Produces reports whether typeName is one of TargetTypes.
func (t *Transformer) Produces(typeName string) bool {
	return slices.Contains(t.TargetTypes(), typeName)
}

// PropertiesFor gathers the properties registered for any of typeNames, in
// registration order and without repeating a property name.
func (t *Transformer) PropertiesFor(typeNames ...string) []Property {
	var out []Property
	seen := map[string]bool{}
	for _, name := range typeNames {
		if name == "" {
			continue
		}
		for _, p := range t.PropertiesOf[name] {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			out = append(out, p)
		}
	}
	return out
}

// Rejected counts values refused by the validator.
func (t *Transformer) Rejected() int64 { return t.rejected.Load() }

// Unmatched counts values no branch matched.
func (t *Transformer) Unmatched() int64 { return t.unmatched.Load() }

func (t *Transformer) dataError(index int, msg string, err error) error {
	de := gwerrors.NewDataError(index, t.String(), -1, msg)
	de.Err = err
	return de
}

// Apply runs the transformer on rec. Values that fail validation or match no
// branch are not yielded, unless the transformer is configured to report them.
func (t *Transformer) Apply(rec model.Record, index int) iter.Seq2[Output, error] {
	validator := t.Validator
	if validator == nil {
		validator = NotEmpty{}
	}
	labels := t.Labels
	if labels == nil {
		labels = Static{}
	}

	return func(yield func(Output, error) bool) {
		for value, err := range t.Values.Values(rec, index) {
			if err != nil {
				if !yield(Output{}, t.dataError(index, "cannot extract value", err)) {
					return
				}
				continue
			}

			if !validator.Validate(value) {
				t.rejected.Add(1)
				if t.StrictValidation {
					if !yield(Output{}, t.dataError(index, fmt.Sprintf("invalid value `%s`", value), nil)) {
						return
					}
				}
				continue
			}

			branch, ok, err := labels.Resolve(value, rec)
			if err != nil {
				if !yield(Output{}, t.dataError(index, "cannot resolve branch", err)) {
					return
				}
				continue
			}
			if !ok {
				t.unmatched.Add(1)
				if t.NoMatch == NoMatchError {
					if !yield(Output{}, t.dataError(index, fmt.Sprintf("no branch matches value `%s`", value), nil)) {
						return
					}
					continue
				}
				t.log().Info().Str("transformer", t.String()).Int("row", index).
					Msgf("no branching rule matches value `%s`", value)
				continue
			}

			out := Output{
				Value:   value,
				Edge:    branch.Edge,
				Target:  branch.Target,
				Reverse: branch.Reverse,
				Final:   branch.FinalType,
			}
			if t.finalType != "" {
				out.Final = t.finalType
			}
			if !yield(out, nil) {
				return
			}
		}
	}
}
