// Optimizer fast paths: rewrites applied before naive evaluation when
// provably equivalent to the naive result, since they are direct
// projections of indexes store.Snapshot already maintains.
package qry

import (
	"regexp"
	"strings"

	"github.com/sebitommy123/SA/value"
)

var metaCharPattern = regexp.MustCompile(`[.+*?()\[\]{}^$|\\]`)

// OptimizeRoot inspects chain's first step and, if it matches a fast-path
// shape applied to the root ObjectList, evaluates it directly against
// snap's indexes, returning the replacement value and true. Callers fall
// back to naive per-step evaluation when ok is false.
//
// Only the chain's very first filter step is eligible — it must be the
// very first filter acting on the root ObjectList, not after another
// reducing step — so this is called once, before Eval's loop, never
// mid-chain.
func OptimizeRoot(ev *Evaluator, chain *value.Chain) (value.Value, []*value.Step, bool) {
	if len(chain.Steps) == 0 {
		return nil, chain.Steps, false
	}
	first := chain.Steps[0]
	if first.Op != "filter" || len(first.Args) != 1 {
		return nil, chain.Steps, false
	}
	pred := first.Args[0]

	if t, ok := typeIndexShape(pred); ok {
		ev.noteFastPath("filter → type_index", "type_index")
		return ev.Snap.ByType(t), chain.Steps[1:], true
	}
	if id, ok := idIndexShape(pred); ok {
		ev.noteFastPath("filter → id_index", "id_index")
		return ev.Snap.ByID(id), chain.Steps[1:], true
	}
	if t, rest, ok := typePreFilterShape(pred); ok {
		ev.noteFastPath("filter → type_prefilter", "type_prefilter")
		candidates := ev.Snap.ByType(t)
		result, err := filterOp(ev, candidates, []*value.Chain{rest}, first.Pos)
		if err != nil {
			return nil, chain.Steps, false
		}
		return result, chain.Steps[1:], true
	}
	return nil, chain.Steps, false
}

// typeIndexShape recognizes filter(get_field('__types__').contains('T')),
// the type-filter desugaring the parser produces for a bare identifier.
func typeIndexShape(pred *value.Chain) (string, bool) {
	if len(pred.Steps) != 2 {
		return "", false
	}
	if !isGetFieldOf(pred.Steps[0], value.FieldTypes) {
		return "", false
	}
	if pred.Steps[1].Op != "contains" || len(pred.Steps[1].Args) != 1 {
		return "", false
	}
	return literalString(pred.Steps[1].Args[0])
}

// idIndexShape recognizes filter(get_field('__id__') =~ '^literal$') where
// the pattern is a pure anchored literal with no regex metacharacters,
// the shape the parser's "#id" desugaring produces.
func idIndexShape(pred *value.Chain) (string, bool) {
	if len(pred.Steps) != 2 {
		return "", false
	}
	if !isGetFieldOf(pred.Steps[0], value.FieldID) {
		return "", false
	}
	if pred.Steps[1].Op != "regex_match" || len(pred.Steps[1].Args) != 1 {
		return "", false
	}
	pat, ok := literalString(pred.Steps[1].Args[0])
	if !ok {
		return "", false
	}
	if !strings.HasPrefix(pat, "^") || !strings.HasSuffix(pat, "$") {
		return "", false
	}
	inner := pat[1 : len(pat)-1]
	if metaCharPattern.MatchString(unescapeLiteral(inner)) {
		return "", false
	}
	return unescapeLiteral(inner), true
}

// typePreFilterShape recognizes a complex predicate whose outermost step
// is "and(typeFilterChain, rest)", letting the type index narrow the
// candidate set before rest is applied naively.
func typePreFilterShape(pred *value.Chain) (string, *value.Chain, bool) {
	if len(pred.Steps) != 1 || pred.Steps[0].Op != "and" {
		return "", nil, false
	}
	left := pred.Steps[0].Args[0]
	right := pred.Steps[0].Args[1]
	if t, ok := typeIndexShape(left); ok {
		return t, right, true
	}
	return "", nil, false
}

func isGetFieldOf(step *value.Step, field string) bool {
	if step.Op != "get_field" || len(step.Args) != 1 {
		return false
	}
	s, ok := literalString(step.Args[0])
	return ok && s == field
}

func literalString(c *value.Chain) (string, bool) {
	if len(c.Steps) != 1 || c.Steps[0].Op != value.OpLiteral {
		return "", false
	}
	s, ok := c.Steps[0].Lit.(value.String)
	return string(s), ok
}

// unescapeLiteral reverses the parser's regex escaping of a plain literal
// id so the recovered string matches by_id's raw keys.
func unescapeLiteral(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
