package merge

import (
	"slices"
	"strings"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// UseKey adopts the duplicate key. It only makes sense for identifier fields.
type UseKey struct {
	key string
}

func (m *UseKey) Merge(key string, _, _ string) error {
	m.key = key
	return nil
}

func (m *UseKey) Get() string { return m.key }
func (m *UseKey) Reset()      { m.key = "" }

// UseFirst keeps the first value seen.
type UseFirst[T any] struct {
	value T
	set   bool
}

func (m *UseFirst[T]) Merge(_ string, lhs, _ T) error {
	if !m.set {
		m.value = lhs
		m.set = true
	}
	return nil
}

func (m *UseFirst[T]) Get() T { return m.value }

func (m *UseFirst[T]) Reset() {
	var zero T
	m.value, m.set = zero, false
}

// UseLast keeps the last value seen.
type UseLast[T any] struct {
	value T
}

func (m *UseLast[T]) Merge(_ string, _, rhs T) error {
	m.value = rhs
	return nil
}

func (m *UseLast[T]) Get() T { return m.value }

func (m *UseLast[T]) Reset() {
	var zero T
	m.value = zero
}

// EnsureIdentical fails as soon as two values of a group differ.
type EnsureIdentical struct {
	value string
	set   bool
}

func (m *EnsureIdentical) Merge(key string, lhs, rhs string) error {
	if !m.set {
		m.value, m.set = lhs, true
	}
	for _, v := range []string{lhs, rhs} {
		if v != m.value {
			return gwerrors.NewMergeError("EnsureIdentical", key, []string{m.value, v}, nil)
		}
	}
	return nil
}

func (m *EnsureIdentical) Get() string { return m.value }
func (m *EnsureIdentical) Reset()      { m.value, m.set = "", false }

// OrderedSet collects every distinct value, splitting already merged values on
// Separator, and returns them sorted and joined.
type OrderedSet struct {
	Separator string
	values    []string
}

func (m *OrderedSet) Merge(_ string, lhs, rhs string) error {
	m.values = splitSet(m.values, lhs, m.Separator)
	m.values = splitSet(m.values, rhs, m.Separator)
	return nil
}

func (m *OrderedSet) Get() string {
	sorted := slices.Clone(m.values)
	slices.Sort(sorted)
	return strings.Join(sorted, m.Separator)
}

func (m *OrderedSet) Reset() { m.values = nil }
