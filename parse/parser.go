package parse

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sebitommy123/SA/errs"
	"github.com/sebitommy123/SA/value"
)

// lexErr is a bare positional error raised by the lexer before a query
// string is available to decorate an errs.ParseError with; Parse wraps it.
type lexErr struct {
	pos int
	msg string
}

func (e *lexErr) Error() string { return e.msg }

func newLexErr(pos int, format string, args ...interface{}) error {
	return &lexErr{pos: pos, msg: fmt.Sprintf(format, args...)}
}

// Parse parses a query string into a value.Chain. The
// returned error is always an *errs.ParseError when non-nil.
func Parse(query string) (*value.Chain, error) {
	p := &parser{lex: newLexer(query), query: query}
	chain, err := p.parseOr()
	if err != nil {
		return nil, p.wrap(err)
	}
	tok, err := p.lex.peekTok()
	if err != nil {
		return nil, p.wrap(err)
	}
	if tok.kind != tokEOF {
		return nil, p.wrap(newLexErr(tok.pos, "unexpected trailing input %q", tok.text))
	}
	return chain, nil
}

type parser struct {
	lex   *lexer
	query string
}

func (p *parser) wrap(err error) *errs.ParseError {
	if pe, ok := err.(*errs.ParseError); ok {
		return pe
	}
	if le, ok := err.(*lexErr); ok {
		return errs.NewParseError(p.query, le.pos, le.msg)
	}
	return errs.NewParseError(p.query, 0, err.Error())
}

// parseOr handles the lowest-precedence infix: OR / ||.
func (p *parser) parseOr() (*value.Chain, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		ok, pos, err := p.matchKeywordOrPunct("OR", "||")
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = value.Identity().Call("or", pos, left, right)
	}
}

// parseAnd handles AND / &&.
func (p *parser) parseAnd() (*value.Chain, error) {
	left, err := p.parseCompare()
	if err != nil {
		return nil, err
	}
	for {
		ok, pos, err := p.matchKeywordOrPunct("AND", "&&")
		if err != nil {
			return nil, err
		}
		if !ok {
			return left, nil
		}
		right, err := p.parseCompare()
		if err != nil {
			return nil, err
		}
		left = value.Identity().Call("and", pos, left, right)
	}
}

// parseCompare handles == and =~, binding tighter than AND/OR but looser
// than unary ! and postfix access. "==" is
// a standalone equals(left,right) node (both sides evaluated against the
// ambient context); "=~" extends the left chain with a regex_match step
// (its Input is the string the left chain produces).
func (p *parser) parseCompare() (*value.Chain, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peekTok()
		if err != nil {
			return nil, err
		}
		if tok.kind != tokPunct || tok.text != "=" {
			return left, nil
		}
		save, savePeek := p.lex.pos, p.lex.peek
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		second, err := p.lex.peekTok()
		if err != nil {
			return nil, err
		}
		switch {
		case second.kind == tokPunct && second.text == "=":
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = value.Identity().Call("equals", tok.pos, left, right)
		case second.kind == tokPunct && second.text == "~":
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			right, err := p.parseNot()
			if err != nil {
				return nil, err
			}
			left = left.Call("regex_match", tok.pos, right)
		default:
			p.lex.pos, p.lex.peek = save, savePeek
			return left, nil
		}
	}
}

// matchKeywordOrPunct consumes a keyword identifier (case-insensitive) or a
// two-character punctuation operator if it is next, returning its position.
func (p *parser) matchKeywordOrPunct(keyword, punct string) (bool, int, error) {
	tok, err := p.lex.peekTok()
	if err != nil {
		return false, 0, err
	}
	if tok.kind == tokIdent && strings.EqualFold(tok.text, keyword) {
		if _, err := p.lex.next(); err != nil {
			return false, 0, err
		}
		return true, tok.pos, nil
	}
	if tok.kind == tokPunct && len(punct) == 2 && tok.text == punct[:1] {
		save := p.lex.pos
		savePeek := p.lex.peek
		if _, err := p.lex.next(); err != nil {
			return false, 0, err
		}
		second, err := p.lex.peekTok()
		if err != nil {
			return false, 0, err
		}
		if second.kind == tokPunct && second.text == punct[1:2] {
			if _, err := p.lex.next(); err != nil {
				return false, 0, err
			}
			return true, tok.pos, nil
		}
		p.lex.pos = save
		p.lex.peek = savePeek
	}
	return false, 0, nil
}

// parseNot handles prefix ! / NOT.
func (p *parser) parseNot() (*value.Chain, error) {
	tok, err := p.lex.peekTok()
	if err != nil {
		return nil, err
	}
	if (tok.kind == tokPunct && tok.text == "!") || (tok.kind == tokIdent && strings.EqualFold(tok.text, "NOT")) {
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return value.Identity().Call("not", tok.pos, operand), nil
	}
	return p.parsePostfix()
}

// parsePostfix parses a primary followed by zero or more postfix operators:
// .name, .name(args), [expr], {expr, ...}.
func (p *parser) parsePostfix() (*value.Chain, error) {
	chain, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		tok, err := p.lex.peekTok()
		if err != nil {
			return nil, err
		}
		switch {
		case tok.kind == tokPunct && tok.text == ".":
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			name, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			nextTok, err := p.lex.peekTok()
			if err != nil {
				return nil, err
			}
			if nextTok.kind == tokPunct && nextTok.text == "(" {
				args, err := p.parseArgs()
				if err != nil {
					return nil, err
				}
				chain = chain.Call(name.text, name.pos, args...)
			} else {
				chain = chain.Call("get_field", name.pos, value.Literal(value.String(name.text)))
			}
		case tok.kind == tokPunct && tok.text == "[":
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			inner, err := p.parseOr()
			if err != nil {
				return nil, err
			}
			if err := p.expectPunct("]"); err != nil {
				return nil, err
			}
			if idx, ok := asIntLiteral(inner); ok {
				chain = chain.Call("index", tok.pos, value.Literal(value.Int(idx)))
			} else {
				chain = chain.Call("filter", tok.pos, inner)
			}
		case tok.kind == tokPunct && tok.text == "{":
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			var fields []*value.Chain
			for {
				peek, err := p.lex.peekTok()
				if err != nil {
					return nil, err
				}
				if peek.kind == tokPunct && peek.text == "}" {
					break
				}
				f, err := p.parseOr()
				if err != nil {
					return nil, err
				}
				if len(f.Steps) == 0 || f.Steps[0].Op != "get_field" {
					return nil, newLexErr(tok.pos, "select {} entries must start with a field access")
				}
				fields = append(fields, f)
				more, err := p.lex.peekTok()
				if err != nil {
					return nil, err
				}
				if more.kind == tokPunct && more.text == "," {
					if _, err := p.lex.next(); err != nil {
						return nil, err
					}
					continue
				}
				break
			}
			if err := p.expectPunct("}"); err != nil {
				return nil, err
			}
			chain = chain.Call("select", tok.pos, fields...)
		default:
			return chain, nil
		}
	}
}

// asIntLiteral reports whether chain is exactly a single integer literal
// step — the shape that desugars [n] to an index step rather than a filter.
func asIntLiteral(chain *value.Chain) (int, bool) {
	if len(chain.Steps) != 1 || chain.Steps[0].Op != value.OpLiteral {
		return 0, false
	}
	iv, ok := chain.Steps[0].Lit.(value.Int)
	return int(iv), ok
}

// parsePrimary parses one of: bare identity (a lookahead '.', '[' or '{'
// belonging to the enclosing postfix loop), identifier type filter, #id,
// @source, * (wildcard/current context), literal, or parenthesized
// expression.
func (p *parser) parsePrimary() (*value.Chain, error) {
	tok, err := p.lex.peekTok()
	if err != nil {
		return nil, err
	}
	switch {
	case tok.kind == tokPunct && (tok.text == "." || tok.text == "[" || tok.text == "{"):
		return value.Identity(), nil
	case tok.kind == tokPunct && tok.text == "*":
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		return value.Identity(), nil
	case tok.kind == tokPunct && tok.text == "(":
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if err := p.expectPunct(")"); err != nil {
			return nil, err
		}
		return inner, nil
	case tok.kind == tokPunct && tok.text == "#":
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		id, err := p.expectIdentOrNumber()
		if err != nil {
			return nil, err
		}
		pred := value.Identity().
			Call("get_field", tok.pos, value.Literal(value.String(value.FieldID))).
			Call("regex_match", tok.pos, value.Literal(value.String("^"+regexEscape(id)+"$")))
		return value.Identity().Call("filter", tok.pos, pred), nil
	case tok.kind == tokPunct && tok.text == "@":
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		src, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		pred := value.Identity().Call("equals", tok.pos,
			value.Identity().Call("get_field", tok.pos, value.Literal(value.String(value.FieldSource))),
			value.Literal(value.String(src.text)))
		return value.Identity().Call("filter", tok.pos, pred), nil
	case tok.kind == tokString:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		return value.Literal(value.String(tok.text)), nil
	case tok.kind == tokInt:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(tok.text, 10, 64)
		if err != nil {
			return nil, newLexErr(tok.pos, "invalid integer literal %q", tok.text)
		}
		return value.Literal(value.Int(n)), nil
	case tok.kind == tokFloat:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return nil, newLexErr(tok.pos, "invalid float literal %q", tok.text)
		}
		return value.Literal(value.Float(f)), nil
	case tok.kind == tokIdent:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		switch {
		case strings.EqualFold(tok.text, "true"):
			return value.Literal(value.Bool(true)), nil
		case strings.EqualFold(tok.text, "false"):
			return value.Literal(value.Bool(false)), nil
		case strings.EqualFold(tok.text, "null"):
			return value.Literal(value.Null{}), nil
		default:
			pred := value.Identity().
				Call("get_field", tok.pos, value.Literal(value.String(value.FieldTypes))).
				Call("contains", tok.pos, value.Literal(value.String(tok.text)))
			return value.Identity().Call("filter", tok.pos, pred), nil
		}
	default:
		return nil, newLexErr(tok.pos, "unexpected token %q", tok.text)
	}
}

func (p *parser) parseArgs() ([]*value.Chain, error) {
	if err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []*value.Chain
	for {
		tok, err := p.lex.peekTok()
		if err != nil {
			return nil, err
		}
		if tok.kind == tokPunct && tok.text == ")" {
			break
		}
		a, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		more, err := p.lex.peekTok()
		if err != nil {
			return nil, err
		}
		if more.kind == tokPunct && more.text == "," {
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			continue
		}
		break
	}
	if err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	return args, nil
}

func (p *parser) expectPunct(s string) error {
	tok, err := p.lex.next()
	if err != nil {
		return err
	}
	if tok.kind != tokPunct || tok.text != s {
		return newLexErr(tok.pos, "expected %q, got %q", s, tok.text)
	}
	return nil
}

func (p *parser) expectIdent() (token, error) {
	tok, err := p.lex.next()
	if err != nil {
		return token{}, err
	}
	if tok.kind != tokIdent {
		return token{}, newLexErr(tok.pos, "expected identifier, got %q", tok.text)
	}
	return tok, nil
}

func (p *parser) expectIdentOrNumber() (string, error) {
	tok, err := p.lex.next()
	if err != nil {
		return "", err
	}
	switch tok.kind {
	case tokIdent, tokInt, tokFloat:
		return tok.text, nil
	default:
		return "", newLexErr(tok.pos, "expected id, got %q", tok.text)
	}
}

// regexEscape escapes characters with special meaning in RE2 syntax so
// literal #id lookups can't be altered by an id containing them.
func regexEscape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch c {
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}
	return b.String()
}
