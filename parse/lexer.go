// Package parse implements the query language's lexer and recursive-descent
// parser, producing a value.Chain. The lexer tracks byte offsets so parse
// errors can report an exact position and highlight the offending span.
// The parser resolves one grammar production per function rather than
// through a generated parser.
package parse

import (
	"strings"
)

type tokenKind uint8

const (
	tokEOF   tokenKind = iota
	tokIdent           // letters/digits/_/- run, or keywords AND/OR/NOT/true/false/null
	tokInt
	tokFloat
	tokString
	tokPunct // single-character punctuation: . # @ * ( ) [ ] { } , ! = ~ &
)

type token struct {
	kind tokenKind
	text string
	pos  int // byte offset of the token's first byte
}

// lexer scans a query string into tokens on demand. Whitespace is skipped
// between tokens; strings are scanned whole (including escapes) by next().
type lexer struct {
	src  string
	pos  int
	peek *token
}

func newLexer(src string) *lexer { return &lexer{src: src} }

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

func isIdentCont(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9') || b == '-'
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (l *lexer) skipSpace() {
	for l.pos < len(l.src) && isSpace(l.src[l.pos]) {
		l.pos++
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// peekTok returns, without consuming, the next token.
func (l *lexer) peekTok() (token, error) {
	if l.peek != nil {
		return *l.peek, nil
	}
	t, err := l.scan()
	if err != nil {
		return token{}, err
	}
	l.peek = &t
	return t, nil
}

// next consumes and returns the next token.
func (l *lexer) next() (token, error) {
	if l.peek != nil {
		t := *l.peek
		l.peek = nil
		return t, nil
	}
	return l.scan()
}

func (l *lexer) scan() (token, error) {
	l.skipSpace()
	start := l.pos
	if l.pos >= len(l.src) {
		return token{kind: tokEOF, pos: start}, nil
	}
	b := l.src[l.pos]

	switch {
	case b == '\'' || b == '"':
		return l.scanString(b)
	case isDigit(b):
		return l.scanNumber()
	case b == '-' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]):
		return l.scanNumber()
	case isIdentStart(b):
		return l.scanIdent()
	default:
		l.pos++
		return token{kind: tokPunct, text: string(b), pos: start}, nil
	}
}

func (l *lexer) scanIdent() (token, error) {
	start := l.pos
	for l.pos < len(l.src) && isIdentCont(l.src[l.pos]) {
		l.pos++
	}
	return token{kind: tokIdent, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) scanNumber() (token, error) {
	start := l.pos
	if l.src[l.pos] == '-' {
		l.pos++
	}
	for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
		l.pos++
	}
	isFloat := false
	if l.pos < len(l.src) && l.src[l.pos] == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1]) {
		isFloat = true
		l.pos++
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.pos++
		}
	}
	kind := tokInt
	if isFloat {
		kind = tokFloat
	}
	return token{kind: kind, text: l.src[start:l.pos], pos: start}, nil
}

func (l *lexer) scanString(quote byte) (token, error) {
	start := l.pos
	l.pos++ // opening quote
	var b strings.Builder
	for {
		if l.pos >= len(l.src) {
			return token{}, newLexErr(start, "unterminated string literal")
		}
		c := l.src[l.pos]
		if c == quote {
			l.pos++
			break
		}
		if c == '\\' && l.pos+1 < len(l.src) {
			next := l.src[l.pos+1]
			switch next {
			case '\\':
				b.WriteByte('\\')
			case '\'':
				b.WriteByte('\'')
			case '"':
				b.WriteByte('"')
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			default:
				b.WriteByte('\\')
				b.WriteByte(next)
			}
			l.pos += 2
			continue
		}
		b.WriteByte(c)
		l.pos++
	}
	return token{kind: tokString, text: b.String(), pos: start}, nil
}
