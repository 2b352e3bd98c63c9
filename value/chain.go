package value

import "strings"

// Step is one link of a Chain: either a literal (Op == OpLiteral) carrying a
// constant Value, or an operator invocation carrying its unevaluated
// argument chains. Predicate-taking operators (filter, grouped_filter,
// lowest, ...) receive their predicate argument as an Arg and decide
// themselves when, and against what context, to evaluate it — the runtime
// never evaluates an Arg eagerly.
type Step struct {
	Op   string
	Lit  Value // populated when Op == OpLiteral
	Args []*Chain
	Pos  int // byte offset into the original query, for error reporting
}

// OpLiteral marks a Step that yields a constant value regardless of context.
const OpLiteral = ""

func (s *Step) String() string {
	if s.Op == OpLiteral {
		if str, ok := s.Lit.(String); ok {
			return "'" + string(str) + "'"
		}
		return s.Lit.String()
	}
	parts := make([]string, len(s.Args))
	for i, a := range s.Args {
		parts[i] = a.String()
	}
	return s.Op + "(" + strings.Join(parts, ", ") + ")"
}

// Chain is an ordered, unevaluated sequence of steps: a value in its own
// right (operators like filter and lowest accept whole chains as arguments).
type Chain struct {
	Steps []*Step
}

func (*Chain) Kind() Kind { return KindChain }

func (c *Chain) String() string {
	if c == nil || len(c.Steps) == 0 {
		return "."
	}
	var b strings.Builder
	for i, s := range c.Steps {
		if i > 0 || s.Op != OpLiteral {
			b.WriteByte('.')
		}
		b.WriteString(s.String())
	}
	return b.String()
}

// Literal builds a single-step Chain that ignores its context and always
// evaluates to v.
func Literal(v Value) *Chain {
	return &Chain{Steps: []*Step{{Op: OpLiteral, Lit: v}}}
}

// Identity is the chain produced by the bare "." primary: zero steps, so
// evaluating it against any context returns that context unchanged.
func Identity() *Chain {
	return &Chain{}
}

// Call appends an operator-call step to a copy of c's steps, returning the
// extended chain. The original chain is left untouched.
func (c *Chain) Call(op string, pos int, args ...*Chain) *Chain {
	steps := make([]*Step, len(c.Steps), len(c.Steps)+1)
	copy(steps, c.Steps)
	steps = append(steps, &Step{Op: op, Args: args, Pos: pos})
	return &Chain{Steps: steps}
}
