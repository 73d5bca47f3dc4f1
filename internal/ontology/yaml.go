package ontology

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// parentList accepts either a single parent or a list of parents.
type parentList []string

func (p *parentList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*p = parentList{node.Value}
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := node.Decode(&list); err != nil {
			return err
		}
		*p = list
		return nil
	default:
		return fmt.Errorf("line %d: is_a must be a type name or a list of type names", node.Line)
	}
}

type entry struct {
	IsA parentList `yaml:"is_a"`
}

// LoadYAML reads a hierarchy written as
//
//	patient:
//	  is_a: person
//	person:
//	  is_a: [agent, entity]
//	entity: {}
func LoadYAML(r io.Reader) (*Hierarchy, error) {
	var doc map[string]*entry
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, gwerrors.NewConfigError("ontology", "failed to parse hierarchy", err)
	}

	h := New()
	for _, name := range slices.Sorted(maps.Keys(doc)) {
		var parents []string
		if e := doc[name]; e != nil {
			parents = e.IsA
		}
		if err := h.Add(name, parents...); err != nil {
			return nil, err
		}
	}
	return h, nil
}

// LoadYAMLFile reads the hierarchy stored at path.
func LoadYAMLFile(path string) (*Hierarchy, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, gwerrors.NewConfigError("ontology", fmt.Sprintf("failed to open %s", path), err)
	}
	defer f.Close()
	return LoadYAML(f)
}
