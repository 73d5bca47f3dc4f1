package merge

import (
	"maps"
	"slices"
	"strings"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Append unions property bags. Values of a shared property are joined with
// Separator, each distinct value kept once in order of appearance.
type Append struct {
	Separator string
	names     []string
	values    map[string][]string
}

func (m *Append) add(props model.Properties) {
	if m.values == nil {
		m.values = map[string][]string{}
	}
	for _, name := range slices.Sorted(maps.Keys(props)) {
		if _, ok := m.values[name]; !ok {
			m.names = append(m.names, name)
		}
		m.values[name] = splitSet(m.values[name], props[name], m.Separator)
	}
}

func (m *Append) Merge(_ string, lhs, rhs model.Properties) error {
	m.add(lhs)
	m.add(rhs)
	return nil
}

func (m *Append) Get() model.Properties {
	out := make(model.Properties, len(m.names))
	for _, name := range m.names {
		out[name] = strings.Join(m.values[name], m.Separator)
	}
	return out
}

func (m *Append) Reset() {
	m.names = nil
	m.values = nil
}

// IdenticalProperties fails when two bags of a group differ.
type IdenticalProperties struct {
	value model.Properties
	set   bool
}

func (m *IdenticalProperties) Merge(key string, lhs, rhs model.Properties) error {
	if !m.set {
		m.value, m.set = lhs.Clone(), true
	}
	for _, v := range []model.Properties{lhs, rhs} {
		if !maps.Equal(v, m.value) {
			return gwerrors.NewMergeError("IdenticalProperties", key, []string{m.value.Canonical(), v.Canonical()}, nil)
		}
	}
	return nil
}

func (m *IdenticalProperties) Get() model.Properties { return m.value }

func (m *IdenticalProperties) Reset() {
	m.value, m.set = nil, false
}
