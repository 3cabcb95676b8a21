package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucylang/golucy/token"
)

func kinds(t *testing.T, source string) []token.Kind {
	t.Helper()

	tokens, err := New(source).Scan()
	require.NoError(t, err)

	out := make([]token.Kind, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, tok.Kind)
	}

	return out
}

func TestSymbols(t *testing.T) {
	assert.Equal(t, []token.Kind{
		token.LeftBrace, token.RightBrace,
		token.LeftBracket, token.RightBracket,
		token.LeftParen, token.RightParen,
		token.Comma, token.Semicolon, token.Colon, token.Dot, token.VBar,
		token.Eof,
	}, kinds(t, "{}[](),;:.|"))

	assert.Equal(t, []token.Kind{
		token.Assign, token.Equal, token.Bang, token.BangEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.Eof,
	}, kinds(t, "= == ! != < <= > >="))

	assert.Equal(t, []token.Kind{
		token.Plus, token.PlusAssign, token.Minus, token.MinusAssign,
		token.Star, token.StarAssign, token.Slash, token.SlashAssign,
		token.Percent, token.PercentAssign,
		token.Eof,
	}, kinds(t, "+ += - -= * *= / /= % %="))
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []token.Kind{
		token.If, token.Else, token.Loop, token.While, token.For, token.In,
		token.Break, token.Continue, token.Goto, token.Return, token.Global,
		token.Is, token.And, token.Or, token.Func,
		token.Null, token.True, token.False,
		token.Eof,
	}, kinds(t, "if else loop while for in break continue goto return global is and or func null true false"))
}

func TestKeywordPrefixesAreIdentifiers(t *testing.T) {
	assert.Equal(t, []token.Kind{
		token.Identifier, token.Identifier, token.Identifier, token.Eof,
	}, kinds(t, "iffy formal looped"))
}

func TestNumbers(t *testing.T) {
	tokens, err := New("42 3.14 0 10.0").Scan()
	require.NoError(t, err)
	require.Len(t, tokens, 5)

	assert.Equal(t, token.Integer, tokens[0].Kind)
	assert.Equal(t, int64(42), tokens[0].Literal)

	assert.Equal(t, token.Float, tokens[1].Kind)
	assert.Equal(t, 3.14, tokens[1].Literal)

	assert.Equal(t, int64(0), tokens[2].Literal)
	assert.Equal(t, 10.0, tokens[3].Literal)
}

func TestMethodCallOnIntegerLiteral(t *testing.T) {
	// the dot only joins a number when a digit follows
	assert.Equal(t, []token.Kind{
		token.Integer, token.Dot, token.Identifier, token.Eof,
	}, kinds(t, "1.foo"))
}

func TestStrings(t *testing.T) {
	tokens, err := New(`"double" 'single'`).Scan()
	require.NoError(t, err)

	assert.Equal(t, token.String, tokens[0].Kind)
	assert.Equal(t, "double", tokens[0].Literal)
	assert.Equal(t, "single", tokens[1].Literal)
}

func TestStringEscapes(t *testing.T) {
	tokens, err := New(`"a\tb\nc\\d\"e" '\q'`).Scan()
	require.NoError(t, err)

	assert.Equal(t, "a\tb\nc\\d\"e", tokens[0].Literal)
	// unknown escapes pass through untouched
	assert.Equal(t, `\q`, tokens[1].Literal)
}

func TestIntegerLiteralRange(t *testing.T) {
	tokens, err := New("9223372036854775807").Scan()
	require.NoError(t, err)
	require.Equal(t, int64(9223372036854775807), tokens[0].Literal)

	_, err = New("x = 99999999999999999999;").Scan()
	require.ErrorContains(t, err, "out of range")
}

func TestUnterminatedString(t *testing.T) {
	_, err := New(`"oops`).Scan()
	require.ErrorContains(t, err, "unterminated string")
}

func TestUnknownCharacter(t *testing.T) {
	_, err := New("a = $;").Scan()
	require.ErrorContains(t, err, "unknown character")
}

func TestCommentsAndWhitespace(t *testing.T) {
	assert.Equal(t, []token.Kind{
		token.Identifier, token.Assign, token.Integer, token.Semicolon,
		token.Identifier, token.Assign, token.String, token.Semicolon,
		token.Eof,
	}, kinds(t, "t = 1; // trailing comment\ns = 'hi';\n// full line\n"))
}

func TestLiteralsForReservedValues(t *testing.T) {
	tokens, err := New("null true false").Scan()
	require.NoError(t, err)

	assert.Nil(t, tokens[0].Literal)
	assert.Equal(t, true, tokens[1].Literal)
	assert.Equal(t, false, tokens[2].Literal)
}

func TestPositions(t *testing.T) {
	tokens, err := New("a = 1;\n  b = 2;").Scan()
	require.NoError(t, err)

	a := tokens[0]
	assert.Equal(t, 1, a.Line)
	assert.Equal(t, 1, a.Column)

	b := tokens[4]
	assert.Equal(t, "b", b.Lexeme)
	assert.Equal(t, 2, b.Line)
	assert.Equal(t, 3, b.Column)
}
