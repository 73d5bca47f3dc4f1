package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Category
	}{
		{"nil", nil, ""},
		{"config", NewConfigError("split", "missing separator", nil), CategoryConfig},
		{"data", NewDataError(3, "transformers", 1, "column absent"), CategoryData},
		{"interface", NewInterfaceError("merger", "wrong arity"), CategoryInterface},
		{"merge", NewMergeError("EnsureIdentical", "k", []string{"a", "b"}, nil), CategoryMerge},
		{"run", NewRunError("extraction", nil), CategoryRun},
		{"wrapped data in run", NewRunError("extraction", NewDataError(1, "subject", -1, "x")), CategoryData},
		{"fmt wrapped", fmt.Errorf("failed to fuse: %w", NewMergeError("m", "k", nil, nil)), CategoryMerge},
		{"foreign", New("boom"), CategoryUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CategoryOf(tc.err))
		})
	}
}

func TestExitCodesAreDistinct(t *testing.T) {
	errs := []error{
		NewConfigError("c", "m", nil),
		NewDataError(0, "", -1, "m"),
		NewInterfaceError("c", "m"),
		NewMergeError("m", "k", nil, nil),
		NewRunError("op", nil),
		New("other"),
	}
	seen := map[int]bool{}
	for _, err := range errs {
		code := ExitCode(err)
		assert.NotZero(t, code)
		assert.False(t, seen[code], "duplicate exit code %d", code)
		seen[code] = true
	}
	assert.Equal(t, ExitOK, ExitCode(nil))
}

func TestSummary(t *testing.T) {
	s := Summarize([]error{
		NewDataError(1, "", -1, "a"),
		NewDataError(2, "", -1, "b"),
		NewMergeError("m", "k", nil, nil),
		nil,
	})
	assert.Equal(t, 3, s.Total())
	assert.Equal(t, "3 errors: data=2, merge=1", s.String())
	assert.Equal(t, "no errors", Summarize(nil).String())
}

func TestDataErrorMessage(t *testing.T) {
	err := NewDataError(4, "transformers", 2, "column `x` not found")
	assert.Equal(t, "data error [for transformers #2] at row 4: column `x` not found", err.Error())

	subj := NewDataError(4, "subject", -1, "no value")
	assert.Equal(t, "data error [for subject] at row 4: no value", subj.Error())
}
