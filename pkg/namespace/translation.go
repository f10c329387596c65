// Package namespace implements the glas lexically-scoped namespace:
// translation tables, the tagged-variant AST, lazy definition evaluation
// with caching, and the background prefetcher.
package namespace

import (
	"fmt"
	"strings"

	"github.com/dmbarbour/glas/pkg/value"
)

// TLRule is one {lhs, rhs} pair of a translation table. RHSUndefined
// marks a rule whose rhs is null: a name matching it is undefined
// rather than rewritten.
type TLRule struct {
	LHS          string
	RHS          string
	RHSUndefined bool
}

// TranslationTable maps a name to a rewritten name, or reports the name
// undefined. rules is an ordered rule list terminated by an implicit
// {null,null}; ns_tl_apply's "compose TL atop the current namespace"
// composes two of these without requiring the composition be flattened
// back into a single rule list.
type TranslationTable interface {
	step(name string) (string, bool)
}

// rules is an ordered list of TLRule. A name that no rule matches
// passes through unchanged; only an explicit Undefine rule makes a name
// undefined.
type rules []TLRule

// NewTranslationTable builds a translation table from explicit rules.
// The rule with the longest LHS that is a prefix of the augmented name
// wins, whatever its position in the list; among rules with equally
// long LHS values the earlier one wins. A name matching no rule passes
// through unchanged.
func NewTranslationTable(rs ...TLRule) TranslationTable {
	return rules(append([]TLRule(nil), rs...))
}

// normalizeLHS ensures a non-empty LHS ends in "." so it only ever
// matches at a path-component boundary: combined with step's implicit
// ".." suffix on the name being matched, a rule for "foo." matches the
// exact name "foo" (via the padding alone supplying the boundary) and
// every "foo.rest" (via the rule's own trailing dot), while never
// matching "foobar". The empty LHS is left alone, since it is the
// deliberate catch-all that is a prefix of every augmented name.
func normalizeLHS(lhs string) string {
	if lhs == "" || strings.HasSuffix(lhs, ".") {
		return lhs
	}
	return lhs + "."
}

// Rule constructs a defined rewrite rule lhs -> rhs. rhs is normalized
// the same way lhs is: step glues it directly against the unmatched
// remainder of the augmented name, so a multi-component replacement
// needs the same trailing "." to stay boundary-safe.
func Rule(lhs, rhs string) TLRule { return TLRule{LHS: normalizeLHS(lhs), RHS: normalizeLHS(rhs)} }

// Undefine constructs a rule that marks every name matching lhs as
// undefined.
func Undefine(lhs string) TLRule { return TLRule{LHS: normalizeLHS(lhs), RHSUndefined: true} }

// Identity is the empty translation table: every name passes through
// unchanged. Used as the root namespace's table and as the default
// argument to definition ops whose TL parameter is optional.
var Identity TranslationTable = rules(nil)

// step applies one round of translation to name, as a four-step
// algorithm: (1) append the implicit ".." suffix so a rule's LHS only
// ever matches at a namespace path-component boundary rather than in
// the middle of a component; (2) find the longest LHS that prefixes the
// augmented name; (3) an undefined match ends lookup; (4) otherwise
// splice rhs in place of the matched prefix. No rule matching at all
// (an empty table, or a non-matching name against a non-empty one)
// means the name passes through unchanged, since the empty-LHS rule —
// which always matches — is only required to exist when the table
// author actually wants a catch-all.
func (rs rules) step(name string) (string, bool) {
	augmented := name + ".."
	bestIdx, bestLen := -1, -1
	for i, r := range rs {
		if len(r.LHS) > bestLen && strings.HasPrefix(augmented, r.LHS) {
			bestIdx, bestLen = i, len(r.LHS)
		}
	}
	if bestIdx == -1 {
		return name, true
	}
	rule := rs[bestIdx]
	if rule.RHSUndefined {
		return "", false
	}
	result := rule.RHS + augmented[bestLen:]
	return strings.TrimSuffix(result, ".."), true
}

// On-the-wire TL rule tags: a rule's rhs is either a string ("s") or
// the null marker ("u", undefined).
const (
	rhsDefined   = "s"
	rhsUndefined = "u"
)

// EncodeTL renders a TranslationTable built by NewTranslationTable as a
// glas list value: each rule is Pair(lhsBinary, rhsVariant), in order.
// This is this implementation's own on-the-wire shape for a value AST's
// TL payload; DecodeTL is its inverse.
func EncodeTL(tl TranslationTable) *value.Value {
	rs, ok := tl.(rules)
	if !ok {
		return value.Leaf()
	}
	items := make([]*value.Value, 0, len(rs))
	for _, r := range rs {
		lhs := value.NewBinary([]byte(r.LHS))
		var rhs *value.Value
		if r.RHSUndefined {
			rhs = Tag(rhsUndefined, value.Leaf())
		} else {
			rhs = Tag(rhsDefined, value.NewBinary([]byte(r.RHS)))
		}
		items = append(items, value.Pair(lhs, rhs))
	}
	return value.NewArray(items)
}

// DecodeTL parses a value built by EncodeTL back into a
// TranslationTable.
func DecodeTL(v *value.Value) (TranslationTable, error) {
	items := value.ToSlice(v)
	rs := make(rules, 0, len(items))
	for _, item := range items {
		lhsV, rhsV, ok := value.Un(item)
		if !ok {
			return nil, fmt.Errorf("namespace: malformed TL rule")
		}
		lhsBytes, ok := value.ToBytes(lhsV)
		if !ok {
			return nil, fmt.Errorf("namespace: TL rule lhs is not a string")
		}
		tag, payload, ok := decodeTag(rhsV)
		if !ok {
			return nil, fmt.Errorf("namespace: malformed TL rule rhs")
		}
		switch tag {
		case rhsUndefined:
			rs = append(rs, Undefine(string(lhsBytes)))
		case rhsDefined:
			rhsBytes, ok := value.ToBytes(payload)
			if !ok {
				return nil, fmt.Errorf("namespace: TL rule rhs is not a string")
			}
			rs = append(rs, Rule(string(lhsBytes), string(rhsBytes)))
		default:
			return nil, fmt.Errorf("namespace: unrecognized TL rhs tag %q", tag)
		}
	}
	return rs, nil
}

// composed chains two translation tables: step first rewrites through
// outer, then feeds the result through inner.
type composed struct {
	outer, inner TranslationTable
}

// Compose layers outer atop inner, matching ns_tl_apply's "compose TL
// atop the current namespace": a name is first rewritten by outer, and
// the result is resolved through whatever inner already does.
func Compose(outer, inner TranslationTable) TranslationTable {
	return composed{outer: outer, inner: inner}
}

func (c composed) step(name string) (string, bool) {
	mid, ok := c.outer.step(name)
	if !ok {
		return "", false
	}
	return c.inner.step(mid)
}
