// Package parser builds ember's AST from a token.Token slice using
// recursive descent for statements and precedence climbing for
// expressions. Every node below the root *ast.Prog is allocated in a
// private arena.Arena owned by the Parser and released when the Parser
// is dropped.
package parser

import (
	"fmt"

	"tlog.app/go/tlog"

	"github.com/ember-lang/emberc/compiler/arena"
	"github.com/ember-lang/emberc/compiler/ast"
	"github.com/ember-lang/emberc/compiler/token"
)

// Error is the parser's one error shape: "[Parse error] Expected <what>
// on line <N>". Line is the *previous* token's line — the missing
// element was due immediately after it.
type Error struct {
	Want string
	Line int
}

func (e *Error) Error() string {
	return fmt.Sprintf("[Parse error] Expected %s on line %d", e.Want, e.Line)
}

// Parser consumes a fixed token slice and produces an *ast.Prog. It
// never recovers: the first error terminates parsing.
type Parser struct {
	toks  []token.Token
	pos   int
	arena *arena.Arena
}

// New constructs a Parser over toks with a freshly reserved arena of
// arena.DefaultSize bytes.
func New(toks []token.Token) *Parser {
	return &Parser{toks: toks, arena: arena.New(arena.DefaultSize)}
}

// ParseProgram parses a sequence of statements until the token stream
// is exhausted and returns the resulting program. The result is always
// a non-nil *ast.Prog on success, never an optional wrapping one.
func ParseProgram(toks []token.Token) (*ast.Prog, error) {
	return New(toks).ParseProgram()
}

func (p *Parser) ParseProgram() (*ast.Prog, error) {
	prog := &ast.Prog{}

	for !p.atEnd() {
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		prog.Stmts = append(prog.Stmts, stmt)
	}

	tlog.Printw("parsed program", "stmts", len(prog.Stmts), "arena_used", p.arena.Used())

	return prog, nil
}

// --- token cursor ---

func (p *Parser) atEnd() bool { return p.pos >= len(p.toks) }

func (p *Parser) peek() (token.Token, bool) {
	if p.atEnd() {
		return token.Token{}, false
	}
	return p.toks[p.pos], true
}

func (p *Parser) peekAt(off int) (token.Token, bool) {
	if p.pos+off >= len(p.toks) {
		return token.Token{}, false
	}
	return p.toks[p.pos+off], true
}

func (p *Parser) consume() token.Token {
	t := p.toks[p.pos]
	p.pos++
	return t
}

// prevLine is the line of the last consumed token — what errExpected
// reports against.
func (p *Parser) prevLine() int {
	if p.pos == 0 {
		return 1
	}
	return p.toks[p.pos-1].Line
}

func (p *Parser) errExpected(want string) error {
	return &Error{Want: want, Line: p.prevLine()}
}

func (p *Parser) tryConsume(k token.Kind) (token.Token, bool) {
	t, ok := p.peek()
	if !ok || t.Kind != k {
		return token.Token{}, false
	}
	return p.consume(), true
}

func (p *Parser) expect(k token.Kind) (token.Token, error) {
	if t, ok := p.tryConsume(k); ok {
		return t, nil
	}
	return token.Token{}, p.errExpected(k.String())
}

// --- expressions ---

// parseTerm parses one of: int/char/float literal, identifier, or a
// parenthesized expression. Returns (nil, nil) if the current token
// isn't the start of a term.
func (p *Parser) parseTerm() (ast.Term, error) {
	if t, ok := p.tryConsume(token.IntLit); ok {
		return arena.Emplace(p.arena, ast.IntLit{Tok: t})
	}
	if t, ok := p.tryConsume(token.CharLit); ok {
		return arena.Emplace(p.arena, ast.CharLit{Tok: t})
	}
	if t, ok := p.tryConsume(token.FloatLit); ok {
		return arena.Emplace(p.arena, ast.FloatLit{Tok: t})
	}
	if t, ok := p.tryConsume(token.Ident); ok {
		return arena.Emplace(p.arena, ast.Ident{Tok: t})
	}
	if _, ok := p.tryConsume(token.OpenParen); ok {
		expr, err := p.parseExpr(0)
		if err != nil {
			return nil, err
		}
		if expr == nil {
			return nil, p.errExpected("expression")
		}
		if _, err := p.expect(token.CloseParen); err != nil {
			return nil, err
		}
		return arena.Emplace(p.arena, ast.Paren{Inner: expr})
	}
	return nil, nil
}

func binOpFor(k token.Kind) ast.BinOp {
	switch k {
	case token.Plus:
		return ast.Add
	case token.Minus:
		return ast.Sub
	case token.Star:
		return ast.Mul
	case token.FSlash:
		return ast.Div
	case token.Percent:
		return ast.Mod
	default:
		panic(fmt.Sprintf("binOpFor: not a binary operator: %v", k))
	}
}

// parseExpr implements precedence climbing: parse a term as the LHS,
// then while the next token's precedence is >= minPrec, consume the
// operator and recurse into the RHS with minPrec = prec+1, wrapping LHS
// into the corresponding BinExpr. The +1 enforces left-associativity.
// Returns (nil, nil), not an error, if there's no term to start from —
// callers turn that into "expected expression".
func (p *Parser) parseExpr(minPrec int) (ast.Expr, error) {
	lhs, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	if lhs == nil {
		return nil, nil
	}

	var expr ast.Expr = lhs

	for {
		opTok, ok := p.peek()
		if !ok {
			break
		}
		prec, isOp := opTok.Kind.Prec()
		if !isOp || prec < minPrec {
			break
		}

		p.consume()

		rhs, err := p.parseExpr(prec + 1)
		if err != nil {
			return nil, err
		}
		if rhs == nil {
			return nil, p.errExpected("expression")
		}

		bin, err := arena.Emplace(p.arena, ast.BinExpr{
			Op:  binOpFor(opTok.Kind),
			Lhs: expr,
			Rhs: rhs,
		})
		if err != nil {
			return nil, err
		}
		expr = bin
	}

	return expr, nil
}

// --- statements ---

func (p *Parser) parseScope() (*ast.ScopeStmt, error) {
	if _, ok := p.tryConsume(token.OpenCurly); !ok {
		return nil, nil
	}

	scope, err := arena.Alloc[ast.ScopeStmt](p.arena)
	if err != nil {
		return nil, err
	}

	for {
		if t, ok := p.peek(); ok && t.Kind == token.CloseCurly {
			break
		}
		if p.atEnd() {
			break
		}
		stmt, err := p.parseStmt()
		if err != nil {
			return nil, err
		}
		scope.Stmts = append(scope.Stmts, stmt)
	}

	if _, err := p.expect(token.CloseCurly); err != nil {
		return nil, err
	}

	return scope, nil
}

func (p *Parser) requireScope() (*ast.ScopeStmt, error) {
	scope, err := p.parseScope()
	if err != nil {
		return nil, err
	}
	if scope == nil {
		return nil, p.errExpected("scope")
	}
	return scope, nil
}

func (p *Parser) requireExpr() (ast.Expr, error) {
	expr, err := p.parseExpr(0)
	if err != nil {
		return nil, err
	}
	if expr == nil {
		return nil, p.errExpected("expression")
	}
	return expr, nil
}

// parseIfPred parses `elif ( Expr ) Scope IfTail?` or `else Scope`.
// Returns (nil, nil) if neither is present.
func (p *Parser) parseIfPred() (ast.IfPred, error) {
	if _, ok := p.tryConsume(token.Elif); ok {
		if _, err := p.expect(token.OpenParen); err != nil {
			return nil, err
		}
		cond, err := p.requireExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.CloseParen); err != nil {
			return nil, err
		}
		body, err := p.requireScope()
		if err != nil {
			return nil, err
		}
		tail, err := p.parseIfPred()
		if err != nil {
			return nil, err
		}
		return arena.Emplace(p.arena, ast.Elif{Cond: cond, Body: body, Pred: tail})
	}

	if _, ok := p.tryConsume(token.Else); ok {
		body, err := p.requireScope()
		if err != nil {
			return nil, err
		}
		return arena.Emplace(p.arena, ast.Else{Body: body})
	}

	return nil, nil
}

func (p *Parser) parseStmt() (ast.Stmt, error) {
	if _, ok := p.tryConsume(token.Exit); ok {
		return p.parseExitStmt()
	}
	if _, ok := p.tryConsume(token.Let); ok {
		return p.parseLetStmt()
	}
	if scope, err := p.parseScope(); err != nil {
		return nil, err
	} else if scope != nil {
		return scope, nil
	}
	if _, ok := p.tryConsume(token.If); ok {
		return p.parseIfStmt()
	}
	if printTok, ok := p.tryConsume(token.Print); ok {
		return p.parsePrintStmt(printTok)
	}
	if _, ok := p.tryConsume(token.Function); ok {
		return p.parseFunctionStmt()
	}
	if ident, ok := p.tryConsume(token.Ident); ok {
		return p.parseIdentStmt(ident)
	}

	return nil, p.errExpected("statement")
}

func (p *Parser) parseExitStmt() (ast.Stmt, error) {
	if _, err := p.expect(token.OpenParen); err != nil {
		return nil, err
	}
	value, err := p.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return arena.Emplace(p.arena, ast.ExitStmt{Value: value})
}

func (p *Parser) parseLetStmt() (ast.Stmt, error) {
	ident, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Eq); err != nil {
		return nil, err
	}
	value, err := p.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return arena.Emplace(p.arena, ast.LetStmt{Ident: ident, Value: value})
}

func (p *Parser) parseIfStmt() (ast.Stmt, error) {
	if _, err := p.expect(token.OpenParen); err != nil {
		return nil, err
	}
	cond, err := p.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}
	body, err := p.requireScope()
	if err != nil {
		return nil, err
	}
	pred, err := p.parseIfPred()
	if err != nil {
		return nil, err
	}
	return arena.Emplace(p.arena, ast.IfStmt{Cond: cond, Body: body, Pred: pred})
}

func (p *Parser) parsePrintStmt(printTok token.Token) (ast.Stmt, error) {
	if _, err := p.expect(token.OpenParen); err != nil {
		return nil, err
	}
	value, err := p.requireExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}
	if _, err := p.expect(token.Semi); err != nil {
		return nil, err
	}
	return arena.Emplace(p.arena, ast.PrintStmt{Value: value, Line: printTok.Line})
}

func (p *Parser) parseFunctionStmt() (ast.Stmt, error) {
	name, err := p.expect(token.Ident)
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(token.OpenParen); err != nil {
		return nil, err
	}

	var params []ast.Param
	for {
		if t, ok := p.peek(); ok && t.Kind == token.CloseParen {
			break
		}
		ident, err := p.expect(token.Ident)
		if err != nil {
			return nil, err
		}
		params = append(params, ast.Param{Name: ident})

		if t, ok := p.peek(); ok && t.Kind == token.CloseParen {
			break
		}
		if _, err := p.expect(token.Comma); err != nil {
			return nil, err
		}
	}
	if _, err := p.expect(token.CloseParen); err != nil {
		return nil, err
	}

	body, err := p.requireScope()
	if err != nil {
		return nil, err
	}

	return arena.Emplace(p.arena, ast.FunctionStmt{Name: name, Params: params, Body: body})
}

// parseIdentStmt handles the three productions that start with a bare
// identifier: `ident ;` (no-op), `ident = Expr ;` (assign), and
// `ident ( Arg, … ) ;` (function call). ident has already been consumed.
func (p *Parser) parseIdentStmt(ident token.Token) (ast.Stmt, error) {
	if _, ok := p.tryConsume(token.Semi); ok {
		return arena.Emplace(p.arena, ast.NoOpStmt{Ident: ident})
	}

	if _, ok := p.tryConsume(token.Eq); ok {
		value, err := p.requireExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return arena.Emplace(p.arena, ast.AssignStmt{Ident: ident, Value: value})
	}

	if _, ok := p.tryConsume(token.OpenParen); ok {
		var args []ast.Expr
		for {
			if t, ok := p.peek(); ok && t.Kind == token.CloseParen {
				break
			}
			arg, err := p.requireExpr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)

			if t, ok := p.peek(); ok && t.Kind == token.CloseParen {
				break
			}
			if _, err := p.expect(token.Comma); err != nil {
				return nil, err
			}
		}
		if _, err := p.expect(token.CloseParen); err != nil {
			return nil, err
		}
		if _, err := p.expect(token.Semi); err != nil {
			return nil, err
		}
		return arena.Emplace(p.arena, ast.FunctionCallStmt{Name: ident, Args: args})
	}

	return nil, p.errExpected("expression")
}
