package model

import (
	"github.com/spf13/cast"
)

// Record is one row of a record source: column name to raw cell value.
type Record map[string]any

// Lookup returns the cell of column as a string. ok is false when the column is
// absent from the record.
func (r Record) Lookup(column string) (value string, ok bool, err error) {
	raw, ok := r[column]
	if !ok {
		return "", false, nil
	}
	value, err = cast.ToStringE(raw)
	if err != nil {
		return "", true, err
	}
	return value, true, nil
}

// Batch is the contribution of one record to an extraction run.
type Batch struct {
	Index int    `json:"index"`
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Graph is a flat collection of nodes and edges.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}
