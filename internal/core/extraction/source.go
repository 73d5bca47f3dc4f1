package extraction

import (
	"iter"

	"github.com/agenthands/graphweave/internal/core/model"
)

// Source yields records with their row index.
type Source interface {
	Records() iter.Seq2[int, model.Record]
}

// Records is an in-memory Source.
type Records []model.Record

// Records implements Source.
func (r Records) Records() iter.Seq2[int, model.Record] {
	return func(yield func(int, model.Record) bool) {
		for i, rec := range r {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// SourceFunc adapts a sequence to the Source interface.
type SourceFunc func() iter.Seq2[int, model.Record]

// Records implements Source.
func (f SourceFunc) Records() iter.Seq2[int, model.Record] { return f() }
