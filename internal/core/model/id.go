package model

import (
	"fmt"
	"strings"

	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Affix tells where the type name goes in a node id.
type Affix string

const (
	AffixPrefix Affix = "prefix"
	AffixSuffix Affix = "suffix"
	AffixNone   Affix = "none"
)

// ParseAffix validates an affix name.
func ParseAffix(s string) (Affix, error) {
	switch a := Affix(strings.ToLower(strings.TrimSpace(s))); a {
	case AffixPrefix, AffixSuffix, AffixNone:
		return a, nil
	case "":
		return AffixSuffix, nil
	default:
		return "", gwerrors.NewConfigError("type_affix",
			fmt.Sprintf("`%s` is not one of prefix, suffix, none", s), nil)
	}
}

// IDFormatter builds node ids from a type name and an extracted value. The result
// only depends on its inputs, which is what makes id-based deduplication work.
type IDFormatter struct {
	Affix     Affix
	Separator string
}

// DefaultIDFormatter suffixes the type with ":".
func DefaultIDFormatter() IDFormatter {
	return IDFormatter{Affix: AffixSuffix, Separator: ":"}
}

// Make formats the id of a value of the given type.
func (f IDFormatter) Make(typeName, value string) (string, error) {
	if typeName == "" {
		return "", gwerrors.NewInterfaceError("id formatter", fmt.Sprintf("no type given for value `%s`", value))
	}
	if value == "" {
		return "", gwerrors.NewInterfaceError("id formatter", fmt.Sprintf("empty value for type `%s`", typeName))
	}
	switch f.Affix {
	case AffixPrefix:
		return typeName + f.Separator + value, nil
	case AffixSuffix, "":
		return value + f.Separator + typeName, nil
	case AffixNone:
		return value, nil
	default:
		return "", gwerrors.NewConfigError("type_affix", fmt.Sprintf("unknown affix `%s`", f.Affix), nil)
	}
}
