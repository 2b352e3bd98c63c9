// Package qry implements the operator runtime: a name→handler registry,
// a left-to-right chain evaluator, link resolution, and the optimizer's
// fast-path rewrites (qry/optimize.go).
package qry

import (
	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/value"
)

// handler is one operator's implementation. ctx is the step's input value;
// args are the unevaluated argument chains exactly as parsed — the handler
// decides itself when and against what context to evaluate each one.
type handler func(ev *Evaluator, ctx value.Value, args []*value.Chain, pos int) (value.Value, error)

// arity describes an operator's expected argument count, checked by
// Validate before evaluation.
type arity struct {
	min, max int // max < 0 means variadic (no upper bound)
}

type opEntry struct {
	fn  handler
	ar  arity
	doc string
}

// Registry is the name→operator table consulted by the evaluator for
// every non-literal step.
var Registry map[string]opEntry

// Populated in init() rather than a var initializer: several handlers call
// back into the evaluator (evalArg -> Eval -> evalSteps -> Registry lookup),
// and a map literal referencing them directly creates a package
// initialization cycle at compile time even though nothing actually runs
// during initialization.
func init() {
	Registry = map[string]opEntry{
		"get_field":      {getField, arity{1, 1}, "field access"},
		"filter":         {filterOp, arity{1, 1}, "predicate filter"},
		"select":         {selectOp, arity{1, -1}, "field projection"},
		"count":          {countOp, arity{0, 0}, "length"},
		"equals":         {equalsOp, arity{2, 2}, "value equality"},
		"and":            {andOp, arity{2, 2}, "short-circuit conjunction"},
		"or":             {orOp, arity{2, 2}, "short-circuit disjunction"},
		"not":            {notOp, arity{1, 1}, "boolean negation"},
		"contains":       {containsOp, arity{1, 1}, "membership"},
		"regex_match":    {regexMatchOp, arity{1, 1}, "regex search"},
		"lowest":         {lowestOp, arity{1, 1}, "minimizing element"},
		"grouped_lowest": {groupedLowestOp, arity{2, 2}, "per-group lowest"},
		"grouped_filter": {groupedFilterOp, arity{2, 2}, "per-group filter"},
		"single":         {singleOp, arity{0, 0}, "uniform-value reduction"},
		"value":          {valueOp, arity{0, 0}, "unwrap single-element container"},
		"index":          {indexOp, arity{1, 1}, "bounds-checked index"},
		"flatten":        {flattenOp, arity{0, 0}, "flatten one level"},
		"unique":         {uniqueOp, arity{0, 0}, "de-duplicate by value"},
		"any":            {anyOp, arity{0, 1}, "non-empty / predicate-any"},
		"to_json":        {toJSONOp, arity{0, 0}, "JSON-safe projection"},
		"describe":       {describeOp, arity{0, 0}, "ObjectList schema summary"},
	}
}

// Validate walks chain and every nested argument chain, checking that each
// non-literal step names a registered operator invoked with an arity it
// accepts, catching unknown-operator and wrong-arity mistakes as a single
// pass against Registry rather than duplicating the check into the parser.
func Validate(chain *value.Chain) error {
	if chain == nil {
		return nil
	}
	for _, step := range chain.Steps {
		if step.Op == value.OpLiteral {
			continue
		}
		entry, ok := Registry[step.Op]
		if !ok {
			return errs.NewParseError("", step.Pos, "unknown operator %q", step.Op)
		}
		n := len(step.Args)
		if n < entry.ar.min || (entry.ar.max >= 0 && n > entry.ar.max) {
			return &errs.ArityError{Operator: step.Op, Want: entry.ar.min, Got: n, Pos: step.Pos}
		}
		for _, a := range step.Args {
			if err := Validate(a); err != nil {
				return err
			}
		}
	}
	return nil
}
