package transform

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/rs/zerolog"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Spec is the resolved declaration of one transformer.
type Spec struct {
	Kind             string
	Columns          []string
	Options          map[string]string
	Labels           LabelResolver
	Validator        Validator
	StrictValidation bool
	NoMatch          NoMatchPolicy
	PropertiesOf     map[string][]Property
	FromSubject      string
	FinalType        string
	Logger           *zerolog.Logger
}

// Registry maps kind names to factories. New kinds register here instead of
// extending a base type.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in kinds.
func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.factories["map"] = newMap
	r.factories["split"] = newSplit
	r.factories["cat"] = newCat
	r.factories["cat_format"] = newCatFormat
	r.factories["row_index"] = newRowIndex
	r.factories["constant"] = newConstant
	return r
}

// Register adds a kind. Registering a name twice is a ConfigError.
func (r *Registry) Register(kind string, f Factory) error {
	if kind == "" || f == nil {
		return gwerrors.NewConfigError("registry", "kind name and factory are required", nil)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[kind]; exists {
		return gwerrors.NewConfigError("registry", fmt.Sprintf("transformer kind `%s` already registered", kind), nil)
	}
	r.factories[kind] = f
	return nil
}

// Kinds lists the registered kind names, sorted.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}

// New builds a transformer from spec.
func (r *Registry) New(spec Spec) (*Transformer, error) {
	r.mu.RLock()
	f, ok := r.factories[spec.Kind]
	r.mu.RUnlock()
	if !ok {
		return nil, gwerrors.NewConfigError("registry", fmt.Sprintf("cannot find a transformer kind named `%s`", spec.Kind), nil)
	}

	values, err := f(spec.Columns, spec.Options)
	if err != nil {
		return nil, err
	}
	if values == nil {
		return nil, gwerrors.NewInterfaceError(spec.Kind, "factory returned no value maker")
	}

	// An empty policy is left unset so the pipeline default can apply.
	var policy NoMatchPolicy
	if spec.NoMatch != "" {
		if policy, err = ParseNoMatchPolicy(string(spec.NoMatch)); err != nil {
			return nil, err
		}
	}

	t := &Transformer{
		Kind:             spec.Kind,
		Columns:          slices.Clone(spec.Columns),
		Values:           values,
		Labels:           spec.Labels,
		Validator:        spec.Validator,
		StrictValidation: spec.StrictValidation,
		NoMatch:          policy,
		PropertiesOf:     spec.PropertiesOf,
		FromSubject:      spec.FromSubject,
		Logger:           spec.Logger,
	}
	if spec.FinalType != "" {
		t.Override(spec.FinalType)
	}
	return t, nil
}
