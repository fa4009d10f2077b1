// Package asm is a small vocabulary of x86-64 NASM/YASM-syntax
// text-emitting helpers used by compiler/codegen. There is no
// intermediate instruction representation and no separate lowering
// stage: every helper appends finished assembly text directly to a
// byte buffer as the generator walks the AST.
package asm

import "github.com/nikandfor/hacked/hfmt"

// Reg names the general-purpose registers the generator's fixed
// accumulator scheme uses. There is no register allocator: codegen
// only ever touches rax/rbx (operands), rdx (mod remainder), rdi (exit
// status) and the stack pointer.
type Reg string

const (
	RAX Reg = "rax"
	RBX Reg = "rbx"
	RDX Reg = "rdx"
	RDI Reg = "rdi"
	RSP Reg = "rsp"
)

// Line appends one already-formatted assembly line, followed by a
// newline. Every other helper in this package is a thin wrapper around
// Line with a fixed mnemonic.
func Line(b []byte, format string, args ...any) []byte {
	b = hfmt.Appendf(b, format, args...)
	return append(b, '\n')
}

// Label appends a label definition, e.g. "L0:".
func Label(b []byte, name string) []byte {
	return Line(b, "%s:", name)
}

// Push appends `push reg`, the stack machine's "push an 8-byte slot"
// primitive.
func Push(b []byte, reg Reg) []byte {
	return Line(b, "    push %s", reg)
}

// Pop appends `pop reg`.
func Pop(b []byte, reg Reg) []byte {
	return Line(b, "    pop %s", reg)
}

// Mov appends `mov dst, src`.
func Mov(b []byte, dst, src Reg) []byte {
	return Line(b, "    mov %s, %s", dst, src)
}

// MovImm appends `mov dst, imm`.
func MovImm(b []byte, dst Reg, imm string) []byte {
	return Line(b, "    mov %s, %s", dst, imm)
}

// Add appends `add dst, src`.
func Add(b []byte, dst, src Reg) []byte {
	return Line(b, "    add %s, %s", dst, src)
}

// Sub appends `sub dst, src`.
func Sub(b []byte, dst, src Reg) []byte {
	return Line(b, "    sub %s, %s", dst, src)
}

// Mul appends `mul reg`: unsigned 64-bit multiply of rax by reg,
// result in rax (rdx:rax, but the generator only ever wants rax).
func Mul(b []byte, reg Reg) []byte {
	return Line(b, "    mul %s", reg)
}

// Div appends `div reg`: unsigned 64-bit divide of rdx:rax by reg,
// quotient in rax, remainder in rdx.
func Div(b []byte, reg Reg) []byte {
	return Line(b, "    div %s", reg)
}

// Xor appends `xor dst, src`, used to zero rdx ahead of Div for the
// mod sequence.
func Xor(b []byte, dst, src Reg) []byte {
	return Line(b, "    xor %s, %s", dst, src)
}

// Jmp appends `jmp label`.
func Jmp(b []byte, label string) []byte {
	return Line(b, "    jmp %s", label)
}

// Jz appends `jz label`, the conditional branch every `if`/`elif` test
// compiles to: the condition is popped and tested with `test`/`cmp`
// immediately before.
func Jz(b []byte, label string) []byte {
	return Line(b, "    jz %s", label)
}

// Test appends `test a, a`, used to reduce a popped condition value to
// a zero/nonzero flag ahead of Jz.
func Test(b []byte, reg Reg) []byte {
	return Line(b, "    test %s, %s", reg, reg)
}

// Syscall appends a bare `syscall`.
func Syscall(b []byte) []byte {
	return Line(b, "    syscall")
}

// Section appends a NASM `section` directive line.
func Section(b []byte, name string) []byte {
	return Line(b, "section %s", name)
}

// Global appends a NASM `global` directive line.
func Global(b []byte, symbol string) []byte {
	return Line(b, "global %s", symbol)
}
