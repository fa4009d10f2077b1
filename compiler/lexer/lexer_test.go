package lexer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ember-lang/emberc/compiler/lexer"
	"github.com/ember-lang/emberc/compiler/token"
)

func kinds(toks []token.Token) []token.Kind {
	out := make([]token.Kind, len(toks))
	for i, t := range toks {
		out[i] = t.Kind
	}
	return out
}

func TestTokenizeKeywordsAndPunctuation(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("exit(0);"))
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.Exit, token.OpenParen, token.IntLit, token.CloseParen, token.Semi,
	}, kinds(toks))
}

func TestTokenizeIdentVsKeyword(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("let exitcode = 1;"))
	require.NoError(t, err)

	require.Len(t, toks, 5)
	assert.Equal(t, token.Let, toks[0].Kind)
	assert.Equal(t, token.Ident, toks[1].Kind)
	assert.Equal(t, "exitcode", toks[1].Lexeme)
}

func TestTokenizeFloatLiteral(t *testing.T) {
	toks, err := lexer.Tokenize([]byte(".5 3.14 7"))
	require.NoError(t, err)

	require.Len(t, toks, 3)
	assert.Equal(t, token.FloatLit, toks[0].Kind)
	assert.Equal(t, ".5", toks[0].Lexeme)
	assert.Equal(t, token.FloatLit, toks[1].Kind)
	assert.Equal(t, token.IntLit, toks[2].Kind)
}

func TestTokenizeCharLiteral(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("'a' ''"))
	require.NoError(t, err)

	require.Len(t, toks, 2)
	assert.Equal(t, token.CharLit, toks[0].Kind)
	assert.Equal(t, "97", toks[0].Lexeme)
	assert.Equal(t, token.CharLit, toks[1].Kind)
	assert.Equal(t, "", toks[1].Lexeme)
}

func TestTokenizeComments(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("let x = 1; // comment\nlet y /* block */ = 2;"))
	require.NoError(t, err)

	assert.Equal(t, []token.Kind{
		token.Let, token.Ident, token.Eq, token.IntLit, token.Semi,
		token.Let, token.Ident, token.Eq, token.IntLit, token.Semi,
	}, kinds(toks))
}

func TestTokenizeLineTracking(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("let x = 1;\nlet y = 2;\nexit(y);"))
	require.NoError(t, err)

	var exitTok token.Token
	for _, tk := range toks {
		if tk.Kind == token.Exit {
			exitTok = tk
		}
	}
	assert.Equal(t, 3, exitTok.Line)
}

func TestTokenizeInvalidCharacter(t *testing.T) {
	_, err := lexer.Tokenize([]byte("let x = 1 @ 2;"))

	var lexErr *lexer.Error
	require.ErrorAs(t, err, &lexErr)
	assert.Equal(t, "Invalid token", lexErr.Error())
	assert.Equal(t, byte('@'), lexErr.Char)
}

func TestTokenizeDivisionVsComment(t *testing.T) {
	toks, err := lexer.Tokenize([]byte("let x = 4 / 2;"))
	require.NoError(t, err)

	found := false
	for _, tk := range toks {
		if tk.Kind == token.FSlash {
			found = true
		}
	}
	assert.True(t, found)
}
