// Package ast defines ember's abstract syntax tree. Every concrete node
// type except the root Prog is allocated by the parser inside an
// arena.Arena and referenced
// from then on through one of the marker interfaces below (Expr, Term,
// Stmt, IfPred); nothing outside compiler/parser constructs a node
// directly, and nothing walks the tree except through a type switch on
// these interfaces.
package ast

import "github.com/ember-lang/emberc/compiler/token"

// Expr is any node that evaluates to a stack-machine value: a Term or a
// BinExpr.
type Expr interface {
	exprNode()
}

// Term is the leaf-or-parenthesized subset of Expr: literals,
// identifiers, and parenthesized subexpressions.
type Term interface {
	Expr
	termNode()
}

// Stmt is any top-level or scoped statement kind.
type Stmt interface {
	stmtNode()
}

// IfPred is the tail of an if-chain: an Elif or an Else.
type IfPred interface {
	ifPredNode()
}

// --- Terms ---

// IntLit is an integer literal term, e.g. `42`.
type IntLit struct {
	Tok token.Token
}

// CharLit is a character literal term, e.g. `'a'` or `''`.
type CharLit struct {
	Tok token.Token
}

// FloatLit is a float literal term, e.g. `3.14` or `.5`.
type FloatLit struct {
	Tok token.Token
}

// Ident is an identifier reference term.
type Ident struct {
	Tok token.Token
}

// Paren is a parenthesized subexpression term: `(` Expr `)`.
type Paren struct {
	Inner Expr
}

func (*IntLit) exprNode()  {}
func (*IntLit) termNode()  {}
func (*CharLit) exprNode() {}
func (*CharLit) termNode() {}
func (*FloatLit) exprNode() {}
func (*FloatLit) termNode() {}
func (*Ident) exprNode()   {}
func (*Ident) termNode()   {}
func (*Paren) exprNode()   {}
func (*Paren) termNode()   {}

// --- Binary expressions ---

// BinOp is the arithmetic operator a BinExpr applies. It is disjoint
// from any assignment or comparison operator — ember has neither.
type BinOp int8

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Mod
)

// BinExpr is a binary arithmetic expression. Lhs and Rhs are themselves
// Exprs so precedence climbing can nest them arbitrarily.
type BinExpr struct {
	Op       BinOp
	Lhs, Rhs Expr
}

func (*BinExpr) exprNode() {}

// --- Statements ---

// ExitStmt is `exit ( Expr ) ;`.
type ExitStmt struct {
	Value Expr
}

// LetStmt is `let ident = Expr ;`.
type LetStmt struct {
	Ident token.Token
	Value Expr
}

// AssignStmt is `ident = Expr ;`.
type AssignStmt struct {
	Ident token.Token
	Value Expr
}

// NoOpStmt is the accepted-but-inert `ident ;` production: a bare
// identifier followed by a semicolon, parsed but never a use or a
// definition.
type NoOpStmt struct {
	Ident token.Token
}

// PrintStmt is `print ( Expr ) ;`. Line is the `print` keyword's line,
// kept only so codegen's NotImplementedError can report a location.
type PrintStmt struct {
	Value Expr
	Line  int
}

// ScopeStmt is `{` Stmt* `}`, also usable as a bare statement.
type ScopeStmt struct {
	Stmts []Stmt
}

// IfStmt is `if ( Expr ) Scope IfTail?`.
type IfStmt struct {
	Cond  Expr
	Body  *ScopeStmt
	Pred  IfPred // nil when there is no elif/else tail
}

// Elif is `elif ( Expr ) Scope IfTail?`.
type Elif struct {
	Cond Expr
	Body *ScopeStmt
	Pred IfPred // nil when there is no further tail
}

// Else is `else Scope`.
type Else struct {
	Body *ScopeStmt
}

func (*Elif) ifPredNode() {}
func (*Else) ifPredNode() {}

// Param is one formal parameter of a Function definition: a bare
// identifier, no type annotation.
type Param struct {
	Name token.Token
}

// FunctionStmt is `function ident ( ident, … ) Scope`. The syntax is
// reserved but code generation for it is unimplemented: nothing lowers
// its body to code.
type FunctionStmt struct {
	Name   token.Token
	Params []Param
	Body   *ScopeStmt
}

// FunctionCallStmt is `ident ( Arg, … ) ;`. Like FunctionStmt, code
// generation is unimplemented.
type FunctionCallStmt struct {
	Name token.Token
	Args []Expr
}

func (*ExitStmt) stmtNode()         {}
func (*LetStmt) stmtNode()          {}
func (*AssignStmt) stmtNode()       {}
func (*NoOpStmt) stmtNode()         {}
func (*PrintStmt) stmtNode()        {}
func (*ScopeStmt) stmtNode()        {}
func (*IfStmt) stmtNode()           {}
func (*FunctionStmt) stmtNode()     {}
func (*FunctionCallStmt) stmtNode() {}

// Prog is the root node: a sequence of top-level statements.
type Prog struct {
	Stmts []Stmt
}
