package qry

import (
	"time"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/parse"
	"github.com/sebitommy123/SA/store"
	"github.com/sebitommy123/SA/value"
)

// Evaluator walks chains against a single store.Snapshot, resolving links
// lazily by re-entering itself, and optionally records per-operator timing
// to a Trace and/or a MetricsSink.
type Evaluator struct {
	Snap    *store.Snapshot
	Trace   *Trace
	Metrics MetricsSink

	linkDepth int
}

const maxLinkDepth = 16

// New returns an Evaluator bound to snap. Pass a non-nil Trace to collect
// per-operator timing (see qry/trace.go); pass nil to disable tracing.
func New(snap *store.Snapshot, trace *Trace) *Evaluator {
	return &Evaluator{Snap: snap, Trace: trace}
}

// Query parses, validates and evaluates a query string against the store's
// root ObjectList in one call — the shell's primary entry point.
func Query(snap *store.Snapshot, query string) (value.Value, error) {
	chain, err := parse.Parse(query)
	if err != nil {
		return nil, err
	}
	if err := Validate(chain); err != nil {
		return nil, err
	}
	ev := New(snap, nil)
	return ev.EvalFromRoot(chain)
}

// EvalFromRoot evaluates chain against the store's full root ObjectList,
// first giving the optimizer (qry/optimize.go) a chance to replace the
// chain's leading filter step with a direct index lookup.
func (ev *Evaluator) EvalFromRoot(chain *value.Chain) (value.Value, error) {
	ctx := value.Value(ev.Snap.All())
	steps := chain.Steps
	if replacement, rest, ok := OptimizeRoot(ev, chain); ok {
		ctx, steps = replacement, rest
	}
	return ev.evalSteps(steps, ctx)
}

// Eval runs chain left to right starting from ctx, dispatching each
// non-literal step through Registry. AbsorbingNone short-circuits: once
// the running value becomes AbsorbingNone, remaining steps are skipped.
// Every operator is required to pass AbsorbingNone through unchanged, so
// skipping here is observably identical and avoids duplicating the check
// in every handler.
func (ev *Evaluator) Eval(chain *value.Chain, ctx value.Value) (value.Value, error) {
	return ev.evalSteps(chain.Steps, ctx)
}

func (ev *Evaluator) evalSteps(steps []*value.Step, ctx value.Value) (value.Value, error) {
	cur := ctx
	for _, step := range steps {
		if step.Op == value.OpLiteral {
			cur = step.Lit
			continue
		}
		if value.IsAbsorbingNone(cur) {
			continue
		}
		entry, ok := Registry[step.Op]
		if !ok {
			return nil, errs.NewParseError("", step.Pos, "unknown operator %q", step.Op)
		}
		var result value.Value
		var err error
		if ev.Trace != nil || ev.Metrics != nil {
			start := time.Now()
			result, err = entry.fn(ev, cur, step.Args, step.Pos)
			elapsed := time.Since(start)
			if ev.Trace != nil {
				ev.Trace.add(step.Op, elapsed)
			}
			if ev.Metrics != nil {
				ev.Metrics.ObserveOperator(step.Op, elapsed)
			}
		} else {
			result, err = entry.fn(ev, cur, step.Args, step.Pos)
		}
		if err != nil {
			return nil, err
		}
		cur = result
	}
	return cur, nil
}

// noteFastPath records that the optimizer took a named fast path, both in
// the textual Trace (note) and as a metrics counter (kind), whichever of
// the two sinks is attached.
func (ev *Evaluator) noteFastPath(note, kind string) {
	if ev.Trace != nil {
		ev.Trace.NoteFastPath(note)
	}
	if ev.Metrics != nil {
		ev.Metrics.ObserveFastPath(kind)
	}
}

// evalArg evaluates one operator argument against ctx — the "evaluate
// against current context" behavior most operator contracts call for
// (equals, and/or, contains, regex_match's pattern, ...).
func (ev *Evaluator) evalArg(c *value.Chain, ctx value.Value) (value.Value, error) {
	return ev.Eval(c, ctx)
}

// resolveLink runs a link's query against the whole store, the behavior
// get_field uses when a field's value is a link. Cycle/depth protection: a chain of links nested past maxLinkDepth
// fails closed rather than recursing forever.
func (ev *Evaluator) resolveLink(link value.Link) (value.Value, error) {
	if ev.linkDepth >= maxLinkDepth {
		return nil, errs.NewLinkResolutionError(link.Query, errLinkTooDeep)
	}
	chain, err := parse.Parse(link.Query)
	if err != nil {
		return nil, errs.NewLinkResolutionError(link.Query, err)
	}
	if err := Validate(chain); err != nil {
		return nil, errs.NewLinkResolutionError(link.Query, err)
	}
	sub := &Evaluator{Snap: ev.Snap, Trace: ev.Trace, Metrics: ev.Metrics, linkDepth: ev.linkDepth + 1}
	result, err := sub.EvalFromRoot(chain)
	if err != nil {
		return nil, errs.NewLinkResolutionError(link.Query, err)
	}
	return result, nil
}

type linkTooDeepErr struct{}

func (linkTooDeepErr) Error() string { return "link resolution exceeded max depth" }

var errLinkTooDeep error = linkTooDeepErr{}
