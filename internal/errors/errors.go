// Package errors defines the error taxonomy shared by extraction and reconciliation.
// Every error carries a category that a tool layered on top can map to a process
// exit status, and that the run summary counts.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Standard library aliases so callers only need one errors import.
var (
	New  = errors.New
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors, one per category.
var (
	// ErrConfig indicates a malformed or missing transformer or merger configuration.
	ErrConfig = errors.New("configuration error")

	// ErrData indicates a record that lacks a required column or holds an invalid value.
	ErrData = errors.New("data error")

	// ErrInterface indicates a transformer or merger used against its contract.
	ErrInterface = errors.New("interface error")

	// ErrMerge indicates irreconcilable values under a strict or ontology-based merger.
	ErrMerge = errors.New("merge error")

	// ErrRun is the catch-all for pipeline-level failures.
	ErrRun = errors.New("run error")
)

// Category names an error class of the taxonomy.
type Category string

const (
	CategoryConfig    Category = "config"
	CategoryData      Category = "data"
	CategoryInterface Category = "interface"
	CategoryMerge     Category = "merge"
	CategoryRun       Category = "run"
	CategoryUnknown   Category = "unknown"
)

// Exit statuses per category.
const (
	ExitOK        = 0
	ExitUnknown   = 1
	ExitData      = 65
	ExitRun       = 70
	ExitConfig    = 78
	ExitMerge     = 79
	ExitInterface = 205
)

// ConfigError is raised at construction time and never accumulated.
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	msg := fmt.Sprintf("config error in %s: %s", e.Component, e.Message)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *ConfigError) Is(target error) bool { return target == ErrConfig }

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{Component: component, Message: message, Err: err}
}

// DataError locates a problem in one record. Section and Index point at the
// transformer that hit it (Index is -1 for the subject).
type DataError struct {
	Row     int
	Section string
	Index   int
	Message string
	Err     error
}

// Error implements the error interface
func (e *DataError) Error() string {
	var b strings.Builder
	b.WriteString("data error")
	if e.Section != "" {
		fmt.Fprintf(&b, " [for %s", e.Section)
		if e.Index >= 0 {
			fmt.Fprintf(&b, " #%d", e.Index)
		}
		b.WriteString("]")
	}
	fmt.Fprintf(&b, " at row %d: %s", e.Row, e.Message)
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

// Unwrap implements errors.Unwrap
func (e *DataError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *DataError) Is(target error) bool { return target == ErrData }

// NewDataError creates a new DataError
func NewDataError(row int, section string, index int, message string) *DataError {
	return &DataError{Row: row, Section: section, Index: index, Message: message}
}

// InterfaceError reports a contract violation by a transformer or merger.
type InterfaceError struct {
	Component string
	Message   string
}

// Error implements the error interface
func (e *InterfaceError) Error() string {
	return fmt.Sprintf("interface error in %s: %s", e.Component, e.Message)
}

// Is implements errors.Is support
func (e *InterfaceError) Is(target error) bool { return target == ErrInterface }

// NewInterfaceError creates a new InterfaceError
func NewInterfaceError(component, message string) *InterfaceError {
	return &InterfaceError{Component: component, Message: message}
}

// MergeError reports values that cannot be reconciled for one duplicate key.
type MergeError struct {
	Merger string
	Key    string
	Values []string
	Err    error
}

// Error implements the error interface
func (e *MergeError) Error() string {
	msg := fmt.Sprintf("merge error in %s for key %q: cannot reconcile %s",
		e.Merger, e.Key, strings.Join(quoteAll(e.Values), ", "))
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements errors.Unwrap
func (e *MergeError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *MergeError) Is(target error) bool { return target == ErrMerge }

// NewMergeError creates a new MergeError
func NewMergeError(merger, key string, values []string, err error) *MergeError {
	return &MergeError{Merger: merger, Key: key, Values: values, Err: err}
}

// RunError wraps a pipeline-level failure.
type RunError struct {
	Operation string
	Err       error
}

// Error implements the error interface
func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("run error during %s: %s", e.Operation, e.Err.Error())
	}
	return fmt.Sprintf("run error during %s", e.Operation)
}

// Unwrap implements errors.Unwrap
func (e *RunError) Unwrap() error { return e.Err }

// Is implements errors.Is support
func (e *RunError) Is(target error) bool { return target == ErrRun }

// NewRunError creates a new RunError
func NewRunError(operation string, err error) *RunError {
	return &RunError{Operation: operation, Err: err}
}

// CategoryOf classifies err. The most specific category found in the chain wins,
// so a DataError wrapped in a RunError still reports as data.
func CategoryOf(err error) Category {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfig):
		return CategoryConfig
	case errors.Is(err, ErrMerge):
		return CategoryMerge
	case errors.Is(err, ErrInterface):
		return CategoryInterface
	case errors.Is(err, ErrData):
		return CategoryData
	case errors.Is(err, ErrRun):
		return CategoryRun
	default:
		return CategoryUnknown
	}
}

// ExitCode maps err to a distinct process exit status.
func ExitCode(err error) int {
	switch CategoryOf(err) {
	case "":
		return ExitOK
	case CategoryConfig:
		return ExitConfig
	case CategoryData:
		return ExitData
	case CategoryInterface:
		return ExitInterface
	case CategoryMerge:
		return ExitMerge
	case CategoryRun:
		return ExitRun
	default:
		return ExitUnknown
	}
}

// Summary counts errors by category.
type Summary map[Category]int

// Summarize counts errs by category.
func Summarize(errs []error) Summary {
	s := Summary{}
	for _, err := range errs {
		if err == nil {
			continue
		}
		s[CategoryOf(err)]++
	}
	return s
}

// Total returns the number of counted errors.
func (s Summary) Total() int {
	n := 0
	for _, c := range s {
		n += c
	}
	return n
}

// String renders the one-line report, e.g. "3 errors: data=2, merge=1".
func (s Summary) String() string {
	total := s.Total()
	if total == 0 {
		return "no errors"
	}
	cats := make([]string, 0, len(s))
	for c := range s {
		cats = append(cats, string(c))
	}
	sort.Strings(cats)
	parts := make([]string, 0, len(cats))
	for _, c := range cats {
		parts = append(parts, fmt.Sprintf("%s=%d", c, s[Category(c)]))
	}
	noun := "errors"
	if total == 1 {
		noun = "error"
	}
	return fmt.Sprintf("%d %s: %s", total, noun, strings.Join(parts, ", "))
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%q", v)
	}
	return out
}
