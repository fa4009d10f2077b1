// Package format renders an ast.Expr back to ember source text with
// every binary operation explicitly parenthesized. It exists to check
// that parsing an expression and serializing it back out with explicit
// parens yields, when re-parsed, a structurally identical AST — it is
// a test tool, not part of the compilation pipeline, and the compiler
// proper never calls it.
package format

import (
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/ember-lang/emberc/compiler/ast"
)

// Expr renders x with every BinExpr wrapped in parens, e.g. `2 + 3 * 4`
// becomes `(2 + (3 * 4))`.
func Expr(x ast.Expr) (string, error) {
	b, err := appendExpr(nil, x)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func appendExpr(b []byte, x ast.Expr) ([]byte, error) {
	switch x := x.(type) {
	case *ast.IntLit:
		return append(b, x.Tok.Lexeme...), nil
	case *ast.FloatLit:
		return append(b, x.Tok.Lexeme...), nil
	case *ast.CharLit:
		// The lexeme holds the byte's decimal code point; render the byte
		// itself so the output lexes back to the same literal.
		if x.Tok.Lexeme == "" {
			return append(b, "''"...), nil
		}
		n, err := strconv.Atoi(x.Tok.Lexeme)
		if err != nil {
			return nil, errors.Wrap(err, "char literal")
		}
		return append(b, '\'', byte(n), '\''), nil
	case *ast.Ident:
		return append(b, x.Tok.Lexeme...), nil
	case *ast.Paren:
		// A parenthesized BinExpr already gets its parens from
		// appendBinExpr; adding another pair here would double them.
		if _, ok := x.Inner.(*ast.BinExpr); ok {
			return appendExpr(b, x.Inner)
		}
		b = append(b, '(')
		inner, err := appendExpr(b, x.Inner)
		if err != nil {
			return nil, errors.Wrap(err, "paren")
		}
		return append(inner, ')'), nil
	case *ast.BinExpr:
		return appendBinExpr(b, x)
	default:
		return nil, errors.New("unsupported expr: %T", x)
	}
}

func appendBinExpr(b []byte, x *ast.BinExpr) ([]byte, error) {
	op, err := opSymbol(x.Op)
	if err != nil {
		return nil, err
	}

	b = append(b, '(')

	b, err = appendExpr(b, x.Lhs)
	if err != nil {
		return nil, errors.Wrap(err, "lhs")
	}

	b = hfmt.Appendf(b, " %s ", op)

	b, err = appendExpr(b, x.Rhs)
	if err != nil {
		return nil, errors.Wrap(err, "rhs")
	}

	return append(b, ')'), nil
}

func opSymbol(op ast.BinOp) (string, error) {
	switch op {
	case ast.Add:
		return "+", nil
	case ast.Sub:
		return "-", nil
	case ast.Mul:
		return "*", nil
	case ast.Div:
		return "/", nil
	case ast.Mod:
		return "%", nil
	default:
		return "", errors.New("unsupported op: %v", op)
	}
}
