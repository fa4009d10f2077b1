package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/emberc/compiler/ast"
	"github.com/ember-lang/emberc/compiler/format"
	"github.com/ember-lang/emberc/compiler/lexer"
	"github.com/ember-lang/emberc/compiler/parser"
)

func parseSrc(t *testing.T, src string) *ast.Prog {
	t.Helper()

	toks, err := lexer.Tokenize([]byte(src))
	require.NoError(t, err)

	prog, err := parser.ParseProgram(toks)
	require.NoError(t, err)

	return prog
}

func TestParseExit(t *testing.T) {
	prog := parseSrc(t, "exit(0);")

	require.Len(t, prog.Stmts, 1)
	stmt, ok := prog.Stmts[0].(*ast.ExitStmt)
	require.True(t, ok)

	lit, ok := stmt.Value.(*ast.IntLit)
	require.True(t, ok)
	assert.Equal(t, "0", lit.Tok.Lexeme)
}

func TestParseLetAndAssign(t *testing.T) {
	prog := parseSrc(t, "let x = 1; x = 2;")

	require.Len(t, prog.Stmts, 2)

	let, ok := prog.Stmts[0].(*ast.LetStmt)
	require.True(t, ok)
	assert.Equal(t, "x", let.Ident.Lexeme)

	assign, ok := prog.Stmts[1].(*ast.AssignStmt)
	require.True(t, ok)
	assert.Equal(t, "x", assign.Ident.Lexeme)
}

func TestParseNoOpStmt(t *testing.T) {
	prog := parseSrc(t, "x;")

	require.Len(t, prog.Stmts, 1)
	_, ok := prog.Stmts[0].(*ast.NoOpStmt)
	assert.True(t, ok)
}

func TestParsePrecedence(t *testing.T) {
	prog := parseSrc(t, "let x = 2 + 3 * 4;")

	let := prog.Stmts[0].(*ast.LetStmt)
	bin, ok := let.Value.(*ast.BinExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Add, bin.Op)

	// LHS is the literal 2; RHS is the nested (3 * 4).
	_, ok = bin.Lhs.(*ast.IntLit)
	require.True(t, ok)

	rhs, ok := bin.Rhs.(*ast.BinExpr)
	require.True(t, ok)
	assert.Equal(t, ast.Mul, rhs.Op)
}

func TestParseLeftAssociativity(t *testing.T) {
	prog := parseSrc(t, "let x = 1 - 2 - 3;")

	let := prog.Stmts[0].(*ast.LetStmt)
	out, err := format.Expr(let.Value)
	require.NoError(t, err)

	assert.Equal(t, "((1 - 2) - 3)", out)
}

func TestParseIfElifElse(t *testing.T) {
	prog := parseSrc(t, "if (1) { exit(1); } elif (2) { exit(2); } else { exit(3); }")

	ifStmt, ok := prog.Stmts[0].(*ast.IfStmt)
	require.True(t, ok)

	elif, ok := ifStmt.Pred.(*ast.Elif)
	require.True(t, ok)

	_, ok = elif.Pred.(*ast.Else)
	require.True(t, ok)
}

func TestParseNestedScope(t *testing.T) {
	prog := parseSrc(t, "let a = 1; { let a = 2; exit(a); }")

	require.Len(t, prog.Stmts, 2)
	scope, ok := prog.Stmts[1].(*ast.ScopeStmt)
	require.True(t, ok)
	require.Len(t, scope.Stmts, 2)
}

func TestParseFunctionAndCall(t *testing.T) {
	prog := parseSrc(t, "function add(a, b) { exit(a); } add(1, 2);")

	fn, ok := prog.Stmts[0].(*ast.FunctionStmt)
	require.True(t, ok)
	assert.Equal(t, "add", fn.Name.Lexeme)
	require.Len(t, fn.Params, 2)

	call, ok := prog.Stmts[1].(*ast.FunctionCallStmt)
	require.True(t, ok)
	require.Len(t, call.Args, 2)
}

func TestParseMissingExpressionError(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("let x = ;"))
	require.NoError(t, err)

	_, err = parser.ParseProgram(toks)
	require.Error(t, err)

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "[Parse error] Expected expression on line 1", perr.Error())
}

func TestParseMissingSemicolonError(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("exit(0)"))
	require.NoError(t, err)

	_, err = parser.ParseProgram(toks)
	require.Error(t, err)

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
	assert.Contains(t, perr.Error(), "Expected `;`")
}

// TestFormatRoundTrip covers the round-trip property: parsing an
// expression, then serializing it with explicit parens, then
// re-parsing and re-serializing, must yield the same rendered text —
// the observable proxy for "structurally identical AST", since
// format.Expr's rendering is a deterministic function of AST shape.
func TestFormatRoundTrip(t *testing.T) {
	prog := parseSrc(t, "let x = (1 + 2) * 3 - 4 / 5 % 6;")
	let := prog.Stmts[0].(*ast.LetStmt)

	rendered, err := format.Expr(let.Value)
	require.NoError(t, err)
	assert.Equal(t, "(((1 + 2) * 3) - ((4 / 5) % 6))", rendered)

	toks, err := lexer.Tokenize([]byte("let y = " + rendered + ";"))
	require.NoError(t, err)

	reparsed, err := parser.New(toks).ParseProgram()
	require.NoError(t, err)
	require.Len(t, reparsed.Stmts, 1)

	reLet := reparsed.Stmts[0].(*ast.LetStmt)
	rerendered, err := format.Expr(reLet.Value)
	require.NoError(t, err)

	assert.Equal(t, rendered, rerendered)
}
