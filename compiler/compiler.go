// Package compiler wires the lexer, parser and code generator into a
// single linear pipeline: source bytes in, assembly text out. It is
// the package cmd/emberc calls; nothing below it knows about files,
// flags, or the assembler/linker.
package compiler

import (
	"context"
	"os"

	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/ember-lang/emberc/compiler/codegen"
	"github.com/ember-lang/emberc/compiler/lexer"
	"github.com/ember-lang/emberc/compiler/parser"
)

// Compile runs the full lex → parse → codegen pipeline over src and
// returns the resulting assembly text. name is used only for logging —
// the pipeline itself is oblivious to where src came from.
//
// The three pipeline errors (lexer.Error, parser.Error, and codegen's
// UndeclaredIdentifierError/DuplicateIdentifierError/NotImplementedError)
// are returned unwrapped so their Error() text matches their fixed
// diagnostic contracts exactly; anything else is wrapped with
// tlog.app/go/errors for context.
func Compile(ctx context.Context, name string, src []byte) (_ []byte, err error) {
	tr, _ := tlog.SpawnFromContextAndWrap(ctx, "compile", "name", name, "bytes", len(src))
	defer tr.Finish("err", &err)

	toks, err := lexer.Tokenize(src)
	if err != nil {
		return nil, err
	}
	tr.Printw("lexed", "name", name, "tokens", len(toks))

	prog, err := parser.ParseProgram(toks)
	if err != nil {
		return nil, err
	}
	tr.Printw("parsed", "name", name, "stmts", len(prog.Stmts))

	out, err := codegen.Generate(prog)
	if err != nil {
		return nil, err
	}
	tr.Printw("compiled", "name", name, "asm_bytes", len(out))

	return out, nil
}

// CompileFile reads name from disk and compiles it. File I/O errors
// are wrapped; they carry no fixed message contract.
func CompileFile(ctx context.Context, name string) ([]byte, error) {
	src, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read %s", name)
	}
	return Compile(ctx, name, src)
}
