package transform

import (
	"regexp"
	"strings"
)

// Validator accepts or rejects an extracted value before it is used.
type Validator interface {
	Validate(value string) bool
}

// NotEmpty rejects empty and NaN-like cells.
type NotEmpty struct{}

func (NotEmpty) Validate(value string) bool {
	v := strings.TrimSpace(value)
	return v != "" && !strings.EqualFold(v, "nan")
}

// MatchValidator additionally requires the value to match Pattern.
type MatchValidator struct {
	Pattern *regexp.Regexp
}

func (m MatchValidator) Validate(value string) bool {
	return NotEmpty{}.Validate(value) && m.Pattern.MatchString(value)
}
