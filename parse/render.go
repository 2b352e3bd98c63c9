package parse

import (
	"strings"

	"github.com/sebitommy123/SA/value"
)

// RenderChain renders a Chain back to surface query syntax, the inverse of
// Parse for chains Parse itself produced. It is used by the parser's
// round-trip property test (parse(render(parse(q))) == parse(q)).
func RenderChain(c *value.Chain) string {
	if c == nil || len(c.Steps) == 0 {
		return "."
	}
	var b strings.Builder
	for i := 0; i < len(c.Steps); i++ {
		s := c.Steps[i]
		switch s.Op {
		case value.OpLiteral:
			b.WriteString(renderLiteral(s.Lit))
		case "get_field":
			b.WriteByte('.')
			b.WriteString(literalString(s.Args[0]))
		case "equals":
			b.WriteString(RenderChain(s.Args[0]))
			b.WriteString(" == ")
			b.WriteString(RenderChain(s.Args[1]))
		case "regex_match":
			b.WriteString(" =~ ")
			b.WriteString(RenderChain(s.Args[0]))
		case "and":
			b.WriteString(RenderChain(s.Args[0]))
			b.WriteString(" AND ")
			b.WriteString(RenderChain(s.Args[1]))
		case "or":
			b.WriteString(RenderChain(s.Args[0]))
			b.WriteString(" OR ")
			b.WriteString(RenderChain(s.Args[1]))
		case "not":
			b.WriteByte('!')
			b.WriteString(RenderChain(s.Args[0]))
		case "filter":
			b.WriteByte('[')
			b.WriteString(RenderChain(s.Args[0]))
			b.WriteByte(']')
		case "index":
			b.WriteByte('[')
			b.WriteString(literalString(s.Args[0]))
			b.WriteByte(']')
		case "select":
			b.WriteByte('{')
			parts := make([]string, len(s.Args))
			for j, a := range s.Args {
				parts[j] = RenderChain(a)
			}
			b.WriteString(strings.Join(parts, ", "))
			b.WriteByte('}')
		default:
			b.WriteByte('.')
			b.WriteString(s.Op)
			b.WriteByte('(')
			parts := make([]string, len(s.Args))
			for j, a := range s.Args {
				parts[j] = RenderChain(a)
			}
			b.WriteString(strings.Join(parts, ", "))
			b.WriteByte(')')
		}
	}
	return b.String()
}

func renderLiteral(v value.Value) string {
	switch lv := v.(type) {
	case value.String:
		return "'" + strings.ReplaceAll(string(lv), "'", "\\'") + "'"
	case value.Null:
		return "null"
	default:
		return v.String()
	}
}

func literalString(c *value.Chain) string {
	if len(c.Steps) != 1 || c.Steps[0].Op != value.OpLiteral {
		return RenderChain(c)
	}
	if s, ok := c.Steps[0].Lit.(value.String); ok {
		return string(s)
	}
	return c.Steps[0].Lit.String()
}
