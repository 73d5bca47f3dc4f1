package merge

import (
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// CommonSuperType resolves the labels of a group to their lowest common
// ancestor in the hierarchy.
type CommonSuperType struct {
	Hierarchy Hierarchy
	current   string
}

func (m *CommonSuperType) Merge(key string, lhs, rhs string) error {
	if m.current == "" {
		m.current = lhs
	}
	if rhs == m.current {
		return nil
	}
	lca, ok := m.Hierarchy.LowestCommonAncestor(m.current, rhs)
	if !ok {
		return gwerrors.NewMergeError("CommonSuperType", key, []string{m.current, rhs}, gwerrors.New("no common ancestor"))
	}
	m.current = lca
	return nil
}

func (m *CommonSuperType) Get() string { return m.current }
func (m *CommonSuperType) Reset()      { m.current = "" }

// CommonSubType resolves the labels of a group to the most specific one. Labels
// must lie on a single is-a chain.
type CommonSubType struct {
	Hierarchy Hierarchy
	current   string
}

func (m *CommonSubType) Merge(key string, lhs, rhs string) error {
	if m.current == "" {
		m.current = lhs
	}
	switch {
	case rhs == m.current:
	case m.Hierarchy.IsAncestor(m.current, rhs):
		m.current = rhs
	case m.Hierarchy.IsAncestor(rhs, m.current):
	default:
		return gwerrors.NewMergeError("CommonSubType", key, []string{m.current, rhs}, gwerrors.New("types are not on one is-a chain"))
	}
	return nil
}

func (m *CommonSubType) Get() string { return m.current }
func (m *CommonSubType) Reset()      { m.current = "" }
