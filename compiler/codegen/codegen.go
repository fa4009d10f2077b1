// Package codegen walks an ember AST and emits x86-64 assembly text
// implementing a stack-machine evaluation model directly against the
// hardware stack: every expression leaves exactly one 8-byte slot on
// top of rsp, and named variables are just slots that outlive the
// expression that produced them.
//
// Assembly text is accumulated into a []byte through compiler/asm's
// helpers (hfmt.Appendf underneath) rather than built through an intermediate representation; there is
// no register allocator, since the language never needs more than the
// fixed rax/rbx accumulator pair.
package codegen

import (
	"fmt"

	"tlog.app/go/tlog"

	"github.com/ember-lang/emberc/compiler/asm"
	"github.com/ember-lang/emberc/compiler/ast"
)

// UndeclaredIdentifierError reports an Ident term referencing a name
// with no enclosing `let`.
type UndeclaredIdentifierError struct {
	Name string
}

func (e *UndeclaredIdentifierError) Error() string {
	return fmt.Sprintf("Undeclared identifier: %s", e.Name)
}

// DuplicateIdentifierError reports a `let` re-declaring a name already
// active in the current scope.
type DuplicateIdentifierError struct {
	Name string
}

func (e *DuplicateIdentifierError) Error() string {
	return fmt.Sprintf("Identifier already used: %s", e.Name)
}

// NotImplementedError marks a syntactically valid construct with no
// code generation: print, function definitions, and function calls are
// parsed but left as explicit failures rather than silently accepted.
type NotImplementedError struct {
	What string
	Line int
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("not implemented: %s (line %d)", e.What, e.Line)
}

// variable records a declared name's slot: the stack depth it was
// declared at and the width of its storage. byteSize is always 8 in
// this generator — the stack machine has exactly one slot width — but
// the field is kept as part of the bookkeeping so a future wider type
// wouldn't need a shape change.
type variable struct {
	name     string
	stackLoc int
	byteSize int
}

// Generator holds all codegen bookkeeping for exactly one compilation.
// Nothing here is package-level state: construct one Generator per
// Generate call and discard it afterward.
type Generator struct {
	out []byte

	vars      []variable // active-variable list, innermost-last
	scopes    []int      // scope-boundary list: active-variable count at each begin_scope
	stackSize int        // current logical stack depth in slots
	labelNum  int        // monotonic label counter
}

// New constructs an empty Generator.
func New() *Generator {
	return &Generator{}
}

// Generate lowers prog to a complete assembly text buffer: prologue,
// one emission per top-level statement in order, default exit(0)
// epilogue. It is shorthand for New().Generate(prog); every other
// method on Generator is an unexported lowering helper.
func Generate(prog *ast.Prog) ([]byte, error) {
	g := New()
	return g.Generate(prog)
}

func (g *Generator) Generate(prog *ast.Prog) ([]byte, error) {
	g.out = asm.Global(g.out, "_start")
	g.out = asm.Label(g.out, "_start")

	for _, stmt := range prog.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return nil, err
		}
	}

	// Default epilogue: exit(0) if the program falls off the end
	// without an explicit exit.
	g.out = asm.MovImm(g.out, asm.RAX, "60")
	g.out = asm.MovImm(g.out, asm.RDI, "0")
	g.out = asm.Syscall(g.out)

	tlog.Printw("generated assembly", "bytes", len(g.out), "stack_size", g.stackSize)

	return g.out, nil
}

func (g *Generator) newLabel() string {
	l := fmt.Sprintf("label%d", g.labelNum)
	g.labelNum++
	return l
}

// push/pop mutate g.stackSize alongside emitting the instruction, so
// stackSize is always an accurate slot count for offset arithmetic.
func (g *Generator) push(reg asm.Reg) {
	g.out = asm.Push(g.out, reg)
	g.stackSize++
}

func (g *Generator) pop(reg asm.Reg) {
	g.out = asm.Pop(g.out, reg)
	g.stackSize--
}

// lookup scans the active-variable list innermost-first, implementing
// lexical shadowing.
func (g *Generator) lookup(name string) (variable, bool) {
	for i := len(g.vars) - 1; i >= 0; i-- {
		if g.vars[i].name == name {
			return g.vars[i], true
		}
	}
	return variable{}, false
}

// declaredInScope reports whether name is already active within the
// innermost open scope, searching only from the current scope
// boundary forward.
func (g *Generator) declaredInScope(name string) bool {
	start := 0
	if len(g.scopes) > 0 {
		start = g.scopes[len(g.scopes)-1]
	}
	for i := start; i < len(g.vars); i++ {
		if g.vars[i].name == name {
			return true
		}
	}
	return false
}

func (g *Generator) beginScope() {
	g.scopes = append(g.scopes, len(g.vars))
}

// endScope drops every variable declared since the matching
// beginScope, emitting a single `add rsp, 8*n` rather than n separate
// pops.
func (g *Generator) endScope() {
	snapshot := g.scopes[len(g.scopes)-1]
	g.scopes = g.scopes[:len(g.scopes)-1]

	n := len(g.vars) - snapshot
	if n > 0 {
		g.out = asm.Line(g.out, "    add rsp, %d", 8*n)
		g.stackSize -= n
		g.vars = g.vars[:snapshot]
	}
}

func (g *Generator) genStmt(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.ExitStmt:
		return g.genExit(s)
	case *ast.LetStmt:
		return g.genLet(s)
	case *ast.AssignStmt:
		return g.genAssign(s)
	case *ast.NoOpStmt:
		return nil // `ident ;` is accepted and emits nothing
	case *ast.ScopeStmt:
		return g.genScope(s)
	case *ast.IfStmt:
		return g.genIf(s)
	case *ast.PrintStmt:
		return &NotImplementedError{What: "print", Line: s.Line}
	case *ast.FunctionStmt:
		return &NotImplementedError{What: "function definition: " + s.Name.Lexeme, Line: s.Name.Line}
	case *ast.FunctionCallStmt:
		return &NotImplementedError{What: "function call: " + s.Name.Lexeme, Line: s.Name.Line}
	default:
		return fmt.Errorf("codegen: unhandled statement %T", stmt)
	}
}

// genExit lowers `exit(E)`: emit E, then `mov rax, 60; pop rdi; syscall`
// — the popped value becomes the syscall's exit-status argument
// directly.
func (g *Generator) genExit(s *ast.ExitStmt) error {
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	g.out = asm.MovImm(g.out, asm.RAX, "60")
	g.pop(asm.RDI)
	g.out = asm.Syscall(g.out)
	return nil
}

func (g *Generator) genLet(s *ast.LetStmt) error {
	name := s.Ident.Lexeme
	if g.declaredInScope(name) {
		return &DuplicateIdentifierError{Name: name}
	}
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	// The initializer's push is the variable's storage: register it at
	// the depth it now occupies (immediately after that push, so a
	// reference emitted right away resolves to offset 0 — the top of
	// stack), no extra emission.
	g.vars = append(g.vars, variable{name: name, stackLoc: g.stackSize, byteSize: 8})
	return nil
}

func (g *Generator) genAssign(s *ast.AssignStmt) error {
	name := s.Ident.Lexeme
	v, ok := g.lookup(name)
	if !ok {
		return &UndeclaredIdentifierError{Name: name}
	}
	if err := g.genExpr(s.Value); err != nil {
		return err
	}
	g.pop(asm.RAX)
	offset := 8 * (g.stackSize - v.stackLoc)
	g.out = asm.Line(g.out, "    mov [rsp + %d], rax", offset)
	return nil
}

func (g *Generator) genScope(s *ast.ScopeStmt) error {
	g.beginScope()
	for _, stmt := range s.Stmts {
		if err := g.genStmt(stmt); err != nil {
			return err
		}
	}
	g.endScope()
	return nil
}

func (g *Generator) genIf(s *ast.IfStmt) error {
	if err := g.genExpr(s.Cond); err != nil {
		return err
	}
	g.pop(asm.RAX)
	g.out = asm.Test(g.out, asm.RAX)

	lFalse := g.newLabel()
	g.out = asm.Jz(g.out, lFalse)

	if err := g.genScope(s.Body); err != nil {
		return err
	}

	if s.Pred == nil {
		g.out = asm.Label(g.out, lFalse)
		return nil
	}

	lEnd := g.newLabel()
	g.out = asm.Jmp(g.out, lEnd)
	g.out = asm.Label(g.out, lFalse)

	if err := g.genIfPred(s.Pred, lEnd); err != nil {
		return err
	}

	g.out = asm.Label(g.out, lEnd)
	return nil
}

// genIfPred lowers an Elif or Else tail. lEnd is the label shared by
// the whole if-chain; every elif branch jumps to it after its body,
// and it's finally emitted once by the top-level genIf.
func (g *Generator) genIfPred(pred ast.IfPred, lEnd string) error {
	switch p := pred.(type) {
	case *ast.Elif:
		if err := g.genExpr(p.Cond); err != nil {
			return err
		}
		g.pop(asm.RAX)
		g.out = asm.Test(g.out, asm.RAX)

		lFalse := g.newLabel()
		g.out = asm.Jz(g.out, lFalse)

		if err := g.genScope(p.Body); err != nil {
			return err
		}
		g.out = asm.Jmp(g.out, lEnd)
		g.out = asm.Label(g.out, lFalse)

		if p.Pred != nil {
			return g.genIfPred(p.Pred, lEnd)
		}
		return nil
	case *ast.Else:
		return g.genScope(p.Body)
	default:
		return fmt.Errorf("codegen: unhandled if-tail %T", pred)
	}
}

// genExpr emits code for an expression such that exactly one slot is
// pushed. Binary operators push RHS first, then LHS, so after both
// pushes LHS is on top: `pop rax` yields LHS, `pop rbx` yields RHS.
func (g *Generator) genExpr(expr ast.Expr) error {
	switch e := expr.(type) {
	case *ast.IntLit:
		g.out = asm.MovImm(g.out, asm.RAX, e.Tok.Lexeme)
		g.push(asm.RAX)
		return nil
	case *ast.CharLit:
		if e.Tok.Lexeme == "" {
			return &NotImplementedError{What: "empty character literal ''", Line: e.Tok.Line}
		}
		g.out = asm.MovImm(g.out, asm.RAX, e.Tok.Lexeme)
		g.push(asm.RAX)
		return nil
	case *ast.FloatLit:
		// Rejected rather than silently emitted as an integer mov, per
		// the resolved float-literal open question.
		return &NotImplementedError{What: "float literal " + e.Tok.Lexeme, Line: e.Tok.Line}
	case *ast.Ident:
		v, ok := g.lookup(e.Tok.Lexeme)
		if !ok {
			return &UndeclaredIdentifierError{Name: e.Tok.Lexeme}
		}
		offset := 8 * (g.stackSize - v.stackLoc)
		g.out = asm.Line(g.out, "    push QWORD [rsp + %d]", offset)
		g.stackSize++
		return nil
	case *ast.Paren:
		return g.genExpr(e.Inner)
	case *ast.BinExpr:
		return g.genBinExpr(e)
	default:
		return fmt.Errorf("codegen: unhandled expr %T", expr)
	}
}

func (g *Generator) genBinExpr(e *ast.BinExpr) error {
	if err := g.genExpr(e.Rhs); err != nil {
		return err
	}
	if err := g.genExpr(e.Lhs); err != nil {
		return err
	}

	g.pop(asm.RAX) // LHS
	g.pop(asm.RBX) // RHS

	switch e.Op {
	case ast.Add:
		g.out = asm.Add(g.out, asm.RAX, asm.RBX)
	case ast.Sub:
		g.out = asm.Sub(g.out, asm.RAX, asm.RBX)
	case ast.Mul:
		g.out = asm.Mul(g.out, asm.RBX)
	case ast.Div:
		// Unsigned quotient: div rbx, no rdx clear — matching the
		// original's sequence exactly, including its assumption that
		// rdx is already zero here.
		g.out = asm.Div(g.out, asm.RBX)
	case ast.Mod:
		g.out = asm.Xor(g.out, asm.RDX, asm.RDX)
		g.out = asm.Div(g.out, asm.RBX)
		g.out = asm.Mov(g.out, asm.RAX, asm.RDX)
	default:
		return fmt.Errorf("codegen: unhandled binop %v", e.Op)
	}

	g.push(asm.RAX)
	return nil
}
