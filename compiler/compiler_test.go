package compiler_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/emberc/compiler"
	"github.com/ember-lang/emberc/compiler/lexer"
	"github.com/ember-lang/emberc/compiler/parser"
)

func TestCompileEndToEnd(t *testing.T) {
	out, err := compiler.Compile(context.Background(), "inline", []byte("let x = 2 + 3 * 4; exit(x);"))
	require.NoError(t, err)
	assert.Contains(t, string(out), "global _start")
}

func TestCompilePropagatesLexerError(t *testing.T) {
	_, err := compiler.Compile(context.Background(), "inline", []byte("exit(@);"))

	var lerr *lexer.Error
	require.ErrorAs(t, err, &lerr)
}

func TestCompilePropagatesParserError(t *testing.T) {
	_, err := compiler.Compile(context.Background(), "inline", []byte("let x = ;"))

	var perr *parser.Error
	require.ErrorAs(t, err, &perr)
}

func TestCompileFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "prog.ember")
	require.NoError(t, os.WriteFile(path, []byte("exit(3);"), 0o644))

	out, err := compiler.CompileFile(context.Background(), path)
	require.NoError(t, err)
	assert.Contains(t, string(out), "mov rax, 3")
}

func TestCompileFileMissing(t *testing.T) {
	_, err := compiler.CompileFile(context.Background(), filepath.Join(t.TempDir(), "missing.ember"))
	assert.Error(t, err)
}
