package merge

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
	"github.com/agenthands/graphweave/internal/ontology"
)

// reduce feeds values the way a fuser walks a group.
func reduce[T any](t *testing.T, m Merger[T], key string, values ...T) (T, error) {
	t.Helper()
	m.Reset()
	first := values[0]
	if err := m.Merge(key, first, first); err != nil {
		return m.Get(), err
	}
	for _, v := range values[1:] {
		if err := m.Merge(key, first, v); err != nil {
			return m.Get(), err
		}
	}
	return m.Get(), nil
}

func TestStringMergers(t *testing.T) {
	cases := []struct {
		name   string
		merger Merger[string]
		values []string
		want   string
	}{
		{"use_key", &UseKey{}, []string{"a", "b"}, "KEY"},
		{"use_first", &UseFirst[string]{}, []string{"a", "b", "c"}, "a"},
		{"use_last", &UseLast[string]{}, []string{"a", "b", "c"}, "c"},
		{"identical", &EnsureIdentical{}, []string{"a", "a"}, "a"},
		{"ordered_set", &OrderedSet{Separator: ";"}, []string{"c", "a", "c", "b"}, "a;b;c"},
		{"ordered_set splits merged values", &OrderedSet{Separator: ";"}, []string{"b;a", "c", "a"}, "a;b;c"},
		{"ordered_set skips empty", &OrderedSet{Separator: ";"}, []string{"", "a"}, "a"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := reduce(t, tc.merger, "KEY", tc.values...)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestEnsureIdenticalMismatch(t *testing.T) {
	_, err := reduce[string](t, &EnsureIdentical{}, "k", "a", "a", "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, gwerrors.ErrMerge)

	var me *gwerrors.MergeError
	require.ErrorAs(t, err, &me)
	assert.Equal(t, "k", me.Key)
	assert.Equal(t, []string{"a", "b"}, me.Values)
}

func TestResetClearsState(t *testing.T) {
	m := &OrderedSet{Separator: ";"}
	_, err := reduce[string](t, m, "k", "a", "b")
	require.NoError(t, err)
	got, err := reduce[string](t, m, "k", "c")
	require.NoError(t, err)
	assert.Equal(t, "c", got)

	first := &UseFirst[string]{}
	_, _ = reduce[string](t, first, "k", "x")
	got, _ = reduce[string](t, first, "k", "y")
	assert.Equal(t, "y", got)
}

func TestAppendDisjointKeys(t *testing.T) {
	got, err := reduce[model.Properties](t, &Append{Separator: ";"}, "k",
		model.Properties{"p1": "x"},
		model.Properties{"p2": "y"},
	)
	require.NoError(t, err)
	assert.Equal(t, model.Properties{"p1": "x", "p2": "y"}, got)
}

func TestAppendSharedKey(t *testing.T) {
	got, err := reduce[model.Properties](t, &Append{Separator: ";"}, "k",
		model.Properties{"p1": "x"},
		model.Properties{"p1": "y"},
	)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"x", "y"}, strings.Split(got["p1"], ";"))
}

func TestAppendDeduplicates(t *testing.T) {
	got, err := reduce[model.Properties](t, &Append{Separator: ";"}, "k",
		model.Properties{"p1": "x", "p2": "z"},
		model.Properties{"p1": "x;y"},
		model.Properties{"p1": "y", "p2": "z"},
	)
	require.NoError(t, err)
	assert.Equal(t, model.Properties{"p1": "x;y", "p2": "z"}, got)
}

func TestAppendEmpty(t *testing.T) {
	got, err := reduce[model.Properties](t, &Append{Separator: ";"}, "k", model.Properties{}, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestIdenticalProperties(t *testing.T) {
	_, err := reduce[model.Properties](t, &IdenticalProperties{}, "k",
		model.Properties{"a": "1"}, model.Properties{"a": "1"})
	require.NoError(t, err)

	_, err = reduce[model.Properties](t, &IdenticalProperties{}, "k",
		model.Properties{"a": "1"}, model.Properties{"a": "2"})
	assert.ErrorIs(t, err, gwerrors.ErrMerge)
}

func hierarchy(t *testing.T) *ontology.Hierarchy {
	t.Helper()
	h := ontology.New()
	require.NoError(t, h.Add("entity"))
	require.NoError(t, h.Add("person", "entity"))
	require.NoError(t, h.Add("patient", "person"))
	require.NoError(t, h.Add("doctor", "person"))
	require.NoError(t, h.Add("drug", "entity"))
	require.NoError(t, h.Add("island"))
	return h
}

func TestCommonSuperType(t *testing.T) {
	h := hierarchy(t)

	got, err := reduce[string](t, &CommonSuperType{Hierarchy: h}, "k", "patient", "doctor")
	require.NoError(t, err)
	assert.Equal(t, "person", got)

	got, err = reduce[string](t, &CommonSuperType{Hierarchy: h}, "k", "patient", "doctor", "drug")
	require.NoError(t, err)
	assert.Equal(t, "entity", got)

	got, err = reduce[string](t, &CommonSuperType{Hierarchy: h}, "k", "patient", "patient")
	require.NoError(t, err)
	assert.Equal(t, "patient", got)

	_, err = reduce[string](t, &CommonSuperType{Hierarchy: h}, "k", "patient", "island")
	assert.ErrorIs(t, err, gwerrors.ErrMerge)
}

func TestCommonSubType(t *testing.T) {
	h := hierarchy(t)

	got, err := reduce[string](t, &CommonSubType{Hierarchy: h}, "k", "person", "patient", "entity")
	require.NoError(t, err)
	assert.Equal(t, "patient", got)

	_, err = reduce[string](t, &CommonSubType{Hierarchy: h}, "k", "patient", "doctor")
	assert.ErrorIs(t, err, gwerrors.ErrMerge)
}

func TestByName(t *testing.T) {
	for _, name := range StringNames {
		m, err := StringByName(name, Options{Separator: ";", Hierarchy: hierarchy(t)})
		require.NoError(t, err, name)
		assert.NotNil(t, m)
	}
	for _, name := range PropertiesNames {
		m, err := PropertiesByName(name, Options{Separator: ";"})
		require.NoError(t, err, name)
		assert.NotNil(t, m)
	}

	_, err := StringByName("common_super_type", Options{})
	assert.ErrorIs(t, err, gwerrors.ErrConfig)
	_, err = StringByName("average", Options{})
	assert.ErrorIs(t, err, gwerrors.ErrConfig)
	_, err = PropertiesByName("ordered_set", Options{})
	assert.ErrorIs(t, err, gwerrors.ErrConfig)
}
