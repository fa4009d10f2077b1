// Package lexer converts ember source bytes into a token.Token slice.
// It is single-pass, deterministic, and never backtracks more than the
// two characters of lookahead `//`, `/*` and character literals
// require.
package lexer

import (
	"fmt"

	"github.com/ember-lang/emberc/compiler/token"
)

// Error is returned for any byte the lexer can't classify. Its Error()
// text is the fixed "Invalid token" diagnostic; Char and Line are
// exposed for callers that want more detail without it leaking into
// the message text itself.
type Error struct {
	Char byte
	Line int
}

func (e *Error) Error() string { return "Invalid token" }

// Lexer scans one source buffer into tokens.
type Lexer struct {
	src  []byte
	pos  int
	line int
}

// New constructs a Lexer over src. Line numbering starts at 1.
func New(src []byte) *Lexer {
	return &Lexer{src: src, line: 1}
}

// Tokenize runs the lexer to completion and returns every token, or the
// first InvalidCharacter error encountered.
func Tokenize(src []byte) ([]token.Token, error) {
	return New(src).Tokenize()
}

// Tokenize is the single entry point: it consumes l's source once and
// returns the resulting token slice.
func (l *Lexer) Tokenize() ([]token.Token, error) {
	var toks []token.Token

	for {
		l.skipSpaceAndComments()
		if l.atEnd() {
			return toks, nil
		}

		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, tok)
	}
}

func (l *Lexer) atEnd() bool { return l.pos >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.atEnd() {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) peekAt(off int) byte {
	if l.pos+off >= len(l.src) {
		return 0
	}
	return l.src[l.pos+off]
}

func (l *Lexer) advance() byte {
	c := l.src[l.pos]
	l.pos++
	if c == '\n' {
		l.line++
	}
	return c
}

func isAlpha(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isAlnum(c byte) bool { return isAlpha(c) || isDigit(c) }

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\r' || c == '\n' || c == '\v' || c == '\f'
}

// skipSpaceAndComments consumes whitespace, `//` line comments and `/*
// */` block comments. It does not itself emit a `fslash` token; next()
// handles the case where `/` was not followed by `/` or `*`.
func (l *Lexer) skipSpaceAndComments() {
	for !l.atEnd() {
		c := l.peek()
		switch {
		case isSpace(c):
			l.advance()
		case c == '/' && l.peekAt(1) == '/':
			for !l.atEnd() && l.peek() != '\n' {
				l.advance()
			}
		case c == '/' && l.peekAt(1) == '*':
			l.advance()
			l.advance()
			for !l.atEnd() && !(l.peek() == '*' && l.peekAt(1) == '/') {
				l.advance()
			}
			if !l.atEnd() {
				l.advance()
				l.advance()
			}
		default:
			return
		}
	}
}

// next classifies and consumes exactly one token. Callers must have
// already skipped whitespace/comments.
func (l *Lexer) next() (token.Token, error) {
	line := l.line
	c := l.peek()

	switch {
	case isAlpha(c):
		return l.lexIdent(line), nil
	case isDigit(c) || c == '.':
		return l.lexNumber(line), nil
	case c == '\'':
		return l.lexChar(line)
	}

	if kind, ok := singleCharKinds[c]; ok {
		l.advance()
		return token.Token{Kind: kind, Line: line}, nil
	}

	if c == '/' {
		l.advance()
		return token.Token{Kind: token.FSlash, Line: line}, nil
	}

	l.advance()
	return token.Token{}, &Error{Char: c, Line: line}
}

var singleCharKinds = map[byte]token.Kind{
	'=': token.Eq,
	'(': token.OpenParen,
	')': token.CloseParen,
	';': token.Semi,
	'+': token.Plus,
	'*': token.Star,
	'-': token.Minus,
	'%': token.Percent,
	'{': token.OpenCurly,
	'}': token.CloseCurly,
	',': token.Comma,
}

func (l *Lexer) lexIdent(line int) token.Token {
	start := l.pos
	l.advance()
	for !l.atEnd() && isAlnum(l.peek()) {
		l.advance()
	}
	text := string(l.src[start:l.pos])

	if kind, ok := token.Lookup(text); ok {
		return token.Token{Kind: kind, Line: line}
	}
	return token.Token{Kind: token.Ident, Line: line, Lexeme: text}
}

// lexNumber applies the numeric rule: a leading digit or `.` starts a
// number; the presence of a `.` anywhere makes it a float_lit (with an
// implicit leading zero for a bare leading `.`), otherwise it's an
// int_lit. The lexeme preserves the textual form exactly as scanned —
// no synthesized "0" is inserted, only the classification is affected.
func (l *Lexer) lexNumber(line int) token.Token {
	start := l.pos
	isFloat := false

	for !l.atEnd() && isDigit(l.peek()) {
		l.advance()
	}
	if !l.atEnd() && l.peek() == '.' {
		isFloat = true
		l.advance()
		for !l.atEnd() && isDigit(l.peek()) {
			l.advance()
		}
	}

	text := string(l.src[start:l.pos])
	kind := token.IntLit
	if isFloat {
		kind = token.FloatLit
	}
	return token.Token{Kind: kind, Line: line, Lexeme: text}
}

// lexChar applies the character-literal rule: `'` then zero or one
// byte then `'`, no escapes. Empty (`''`) yields an empty lexeme; the
// one-byte form's lexeme is the decimal code point of that byte.
func (l *Lexer) lexChar(line int) (token.Token, error) {
	l.advance() // opening '

	if l.peek() == '\'' {
		l.advance()
		return token.Token{Kind: token.CharLit, Line: line, Lexeme: ""}, nil
	}

	if l.atEnd() {
		return token.Token{}, &Error{Char: '\'', Line: line}
	}

	c := l.advance()

	if l.peek() != '\'' {
		return token.Token{}, &Error{Char: c, Line: line}
	}
	l.advance()

	return token.Token{Kind: token.CharLit, Line: line, Lexeme: fmt.Sprintf("%d", c)}, nil
}
