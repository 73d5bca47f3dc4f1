package transform

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// ValueMaker pulls raw values out of a record. Each call returns a fresh sequence.
type ValueMaker interface {
	Values(rec model.Record, index int) iter.Seq2[string, error]
}

// ValueFunc adapts a function to ValueMaker.
type ValueFunc func(rec model.Record, index int) iter.Seq2[string, error]

func (f ValueFunc) Values(rec model.Record, index int) iter.Seq2[string, error] { return f(rec, index) }

// Factory builds the ValueMaker of a transformer kind from its columns and options.
type Factory func(columns []string, options map[string]string) (ValueMaker, error)

func lookup(rec model.Record, column string) (string, error) {
	v, ok, err := rec.Lookup(column)
	if err != nil {
		return "", fmt.Errorf("failed to read column `%s`: %w", column, err)
	}
	if !ok {
		return "", fmt.Errorf("column `%s` not found in record", column)
	}
	return v, nil
}

func requireColumns(kind string, columns []string) error {
	if len(columns) == 0 {
		return gwerrors.NewConfigError(kind, "at least one column is required", nil)
	}
	return nil
}

func requireOption(kind string, options map[string]string, name string) (string, error) {
	v, ok := options[name]
	if !ok || v == "" {
		return "", gwerrors.NewConfigError(kind, fmt.Sprintf("missing required option `%s`", name), nil)
	}
	return v, nil
}

// mapValues yields the cell of each column.
type mapValues struct {
	columns []string
}

func newMap(columns []string, _ map[string]string) (ValueMaker, error) {
	if err := requireColumns("map", columns); err != nil {
		return nil, err
	}
	return mapValues{columns: columns}, nil
}

func (m mapValues) Values(rec model.Record, _ int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, col := range m.columns {
			if !yield(lookup(rec, col)) {
				return
			}
		}
	}
}

// splitValues splits each cell at a separator and yields every item.
type splitValues struct {
	columns   []string
	separator string
}

func newSplit(columns []string, options map[string]string) (ValueMaker, error) {
	if err := requireColumns("split", columns); err != nil {
		return nil, err
	}
	sep, err := requireOption("split", options, "separator")
	if err != nil {
		return nil, err
	}
	return splitValues{columns: columns, separator: sep}, nil
}

func (s splitValues) Values(rec model.Record, _ int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for _, col := range s.columns {
			v, err := lookup(rec, col)
			if err != nil {
				if !yield("", err) {
					return
				}
				continue
			}
			for _, item := range strings.Split(v, s.separator) {
				if !yield(item, nil) {
					return
				}
			}
		}
	}
}

// catValues concatenates the cells of all columns into one value.
type catValues struct {
	columns []string
}

func newCat(columns []string, _ map[string]string) (ValueMaker, error) {
	if err := requireColumns("cat", columns); err != nil {
		return nil, err
	}
	return catValues{columns: columns}, nil
}

func (c catValues) Values(rec model.Record, _ int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var b strings.Builder
		for _, col := range c.columns {
			v, err := lookup(rec, col)
			if err != nil {
				yield("", err)
				return
			}
			if !(NotEmpty{}).Validate(v) {
				continue
			}
			b.WriteString(v)
		}
		yield(b.String(), nil)
	}
}

var placeholder = regexp.MustCompile(`\{([^{}]+)\}`)

// formatValues fills the {column} placeholders of a format string.
type formatValues struct {
	format string
}

func newCatFormat(_ []string, options map[string]string) (ValueMaker, error) {
	format, err := requireOption("cat_format", options, "format_string")
	if err != nil {
		return nil, err
	}
	if !placeholder.MatchString(format) {
		return nil, gwerrors.NewConfigError("cat_format",
			fmt.Sprintf("format string `%s` references no column", format), nil)
	}
	return formatValues{format: format}, nil
}

func (f formatValues) Values(rec model.Record, _ int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		var firstErr error
		out := placeholder.ReplaceAllStringFunc(f.format, func(m string) string {
			v, err := lookup(rec, m[1:len(m)-1])
			if err != nil && firstErr == nil {
				firstErr = err
			}
			if !(NotEmpty{}).Validate(v) {
				return ""
			}
			return v
		})
		if firstErr != nil {
			yield("", firstErr)
			return
		}
		yield(out, nil)
	}
}

// rowIndexValues yields the index of the record.
type rowIndexValues struct{}

func newRowIndex(_ []string, _ map[string]string) (ValueMaker, error) {
	return rowIndexValues{}, nil
}

func (rowIndexValues) Values(_ model.Record, index int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(strconv.Itoa(index), nil)
	}
}

// constantValues yields the same static value for every record.
type constantValues struct {
	value string
}

func newConstant(_ []string, options map[string]string) (ValueMaker, error) {
	v, err := requireOption("constant", options, "value")
	if err != nil {
		return nil, err
	}
	return constantValues{value: v}, nil
}

func (c constantValues) Values(model.Record, int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		yield(c.value, nil)
	}
}
