package transform

import (
	"fmt"
	"regexp"

	"github.com/agenthands/graphweave/internal/core/model"
	gwerrors "github.com/agenthands/graphweave/internal/errors"
)

// Branch is the type triple a value resolves to. FinalType, when set, replaces
// Target as the type of the produced node.
type Branch struct {
	Edge      string `json:"via_relation,omitempty" toml:"via_relation"`
	Target    string `json:"to_object,omitempty" toml:"to_object"`
	Reverse   string `json:"reverse_relation,omitempty" toml:"reverse_relation"`
	FinalType string `json:"final_type,omitempty" toml:"final_type"`
}

// NodeType is the type given to nodes produced through this branch.
func (b Branch) NodeType() string {
	if b.FinalType != "" {
		return b.FinalType
	}
	return b.Target
}

// LabelResolver decides which branch applies to an extracted value.
// ok is false when no branch matches.
type LabelResolver interface {
	Resolve(value string, rec model.Record) (branch Branch, ok bool, err error)
	Branches() []Branch
}

// Static is the no-branch policy: every value takes the same branch. A zero
// Static is used by property transformers, which only produce values.
type Static struct {
	Branch Branch
}

func (s Static) Resolve(string, model.Record) (Branch, bool, error) { return s.Branch, true, nil }

func (s Static) Branches() []Branch {
	if s.Branch == (Branch{}) {
		return nil
	}
	return []Branch{s.Branch}
}

// Rule pairs a regular expression with the branch it selects.
type Rule struct {
	Pattern *regexp.Regexp
	Branch  Branch
}

// Match compiles a rule.
func Match(pattern string, branch Branch) (Rule, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Rule{}, gwerrors.NewConfigError("match", fmt.Sprintf("invalid pattern `%s`", pattern), err)
	}
	return Rule{Pattern: re, Branch: branch}, nil
}

// MustMatch is Match for static rule tables; it panics on a bad pattern.
func MustMatch(pattern string, branch Branch) Rule {
	r, err := Match(pattern, branch)
	if err != nil {
		panic(err)
	}
	return r
}

func firstMatch(rules []Rule, s string) (Branch, bool) {
	for _, r := range rules {
		if r.Pattern.MatchString(s) {
			return r.Branch, true
		}
	}
	return Branch{}, false
}

func branchesOf(rules []Rule) []Branch {
	out := make([]Branch, 0, len(rules))
	for _, r := range rules {
		out = append(out, r.Branch)
	}
	return out
}

// OnValue matches the extracted value against ordered rules; first match wins.
type OnValue struct {
	Rules []Rule
}

func (o OnValue) Resolve(value string, _ model.Record) (Branch, bool, error) {
	b, ok := firstMatch(o.Rules, value)
	return b, ok, nil
}

func (o OnValue) Branches() []Branch { return branchesOf(o.Rules) }

// OnColumn matches the raw value of another column against ordered rules.
type OnColumn struct {
	Column string
	Rules  []Rule
}

func (o OnColumn) Resolve(_ string, rec model.Record) (Branch, bool, error) {
	raw, ok, err := rec.Lookup(o.Column)
	if err != nil {
		return Branch{}, false, fmt.Errorf("failed to read branching column `%s`: %w", o.Column, err)
	}
	if !ok {
		return Branch{}, false, fmt.Errorf("branching column `%s` not found in record", o.Column)
	}
	b, ok := firstMatch(o.Rules, raw)
	return b, ok, nil
}

func (o OnColumn) Branches() []Branch { return branchesOf(o.Rules) }
