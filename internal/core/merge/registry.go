package merge

import (
	"fmt"
	"strings"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Options parameterizes mergers built by name.
type Options struct {
	Separator string
	// Hierarchy is required by the type mergers.
	Hierarchy Hierarchy
}

// StringNames lists the mergers StringByName knows.
var StringNames = []string{"use_key", "use_first", "use_last", "ensure_identical", "ordered_set", "common_sub_type", "common_super_type"}

// PropertiesNames lists the mergers PropertiesByName knows.
var PropertiesNames = []string{"append", "use_first", "use_last", "ensure_identical"}

// StringByName builds a fresh string merger.
func StringByName(name string, opts Options) (Merger[string], error) {
	switch strings.ToLower(name) {
	case "use_key":
		return &UseKey{}, nil
	case "use_first":
		return &UseFirst[string]{}, nil
	case "use_last":
		return &UseLast[string]{}, nil
	case "ensure_identical":
		return &EnsureIdentical{}, nil
	case "ordered_set":
		return &OrderedSet{Separator: opts.Separator}, nil
	case "common_sub_type", "common_super_type":
		if opts.Hierarchy == nil {
			return nil, gwerrors.NewConfigError("merger", fmt.Sprintf("`%s` needs a type hierarchy", name), nil)
		}
		if strings.ToLower(name) == "common_sub_type" {
			return &CommonSubType{Hierarchy: opts.Hierarchy}, nil
		}
		return &CommonSuperType{Hierarchy: opts.Hierarchy}, nil
	default:
		return nil, gwerrors.NewConfigError("merger",
			fmt.Sprintf("`%s` is not one of %s", name, strings.Join(StringNames, ", ")), nil)
	}
}

// PropertiesByName builds a fresh property bag merger.
func PropertiesByName(name string, opts Options) (Merger[model.Properties], error) {
	switch strings.ToLower(name) {
	case "append":
		return &Append{Separator: opts.Separator}, nil
	case "use_first":
		return &UseFirst[model.Properties]{}, nil
	case "use_last":
		return &UseLast[model.Properties]{}, nil
	case "ensure_identical":
		return &IdenticalProperties{}, nil
	default:
		return nil, gwerrors.NewConfigError("merger",
			fmt.Sprintf("`%s` is not one of %s", name, strings.Join(PropertiesNames, ", ")), nil)
	}
}
